package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lexatlas/lexatlas/internal/server/middleware"
	"github.com/lexatlas/lexatlas/pkg/common"
)

func GetArticleContentHandler(c echo.Context) error {
	type getArticleContentParams struct {
		ArticleHeader       string `query:"article_header" validate:"required"`
		ParagraphIdentifier string `query:"paragraph_identifier"`
	}

	type getArticleContentResponse struct {
		ArticleHeader       string            `json:"article_header"`
		ParagraphIdentifier string            `json:"paragraph_identifier,omitempty"`
		Results             []common.Document `json:"results"`
	}

	params := new(getArticleContentParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Invalid request params",
			Details: "article_header is required",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	docs, err := app.Docs.GetContent(ctx, params.ArticleHeader, params.ParagraphIdentifier)
	if err != nil {
		status, resp := statusForError(err)
		return c.JSON(status, resp)
	}

	return c.JSON(http.StatusOK, getArticleContentResponse{
		ArticleHeader:       params.ArticleHeader,
		ParagraphIdentifier: params.ParagraphIdentifier,
		Results:             docs,
	})
}
