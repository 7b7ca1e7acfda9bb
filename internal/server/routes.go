package server

import (
	"github.com/labstack/echo/v4"

	"github.com/lexatlas/lexatlas/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Corpus browsing routes
	apiRoutes.GET("/articles", routes.GetArticlesHandler)
	apiRoutes.GET("/articles/:article_header/paragraphs", routes.GetParagraphsHandler)

	// Search routes
	apiRoutes.GET("/search/article-content", routes.GetArticleContentHandler)
	apiRoutes.GET("/search/semantic", routes.GetSemanticSearchHandler)
	apiRoutes.GET("/search/graph", routes.GetGraphSearchHandler)
	apiRoutes.GET("/search/combined", routes.GetCombinedSearchHandler)

	// Graph inspection routes
	apiRoutes.GET("/graph/nodes/:key/edges", routes.GetGraphNodeEdgesHandler)
	apiRoutes.GET("/graph/paths", routes.GetGraphPathsHandler)

	// Index maintenance routes
	apiRoutes.POST("/rebuild", routes.PostRebuildHandler)
}
