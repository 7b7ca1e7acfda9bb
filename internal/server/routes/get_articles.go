package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lexatlas/lexatlas/internal/server/middleware"
)

func GetArticlesHandler(c echo.Context) error {
	type getArticlesResponse struct {
		Articles []string `json:"articles"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	headers, err := app.Docs.ListArticleHeaders(ctx)
	if err != nil {
		status, resp := statusForError(err)
		return c.JSON(status, resp)
	}

	return c.JSON(http.StatusOK, getArticlesResponse{Articles: headers})
}

func GetParagraphsHandler(c echo.Context) error {
	type getParagraphsParams struct {
		ArticleHeader string `param:"article_header" validate:"required"`
	}

	type getParagraphsResponse struct {
		ArticleHeader string   `json:"article_header"`
		Paragraphs    []string `json:"paragraphs"`
	}

	params := new(getParagraphsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	paragraphs, err := app.Docs.ListParagraphIdentifiers(ctx, params.ArticleHeader)
	if err != nil {
		status, resp := statusForError(err)
		return c.JSON(status, resp)
	}

	return c.JSON(http.StatusOK, getParagraphsResponse{
		ArticleHeader: params.ArticleHeader,
		Paragraphs:    paragraphs,
	})
}
