package middleware

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/lexatlas/lexatlas/pkg/ai"
	"github.com/lexatlas/lexatlas/pkg/docstore"
	"github.com/lexatlas/lexatlas/pkg/graph"
	"github.com/lexatlas/lexatlas/pkg/graphstore"
	"github.com/lexatlas/lexatlas/pkg/search"
	"github.com/lexatlas/lexatlas/pkg/vector"
)

// App bundles the shared handles every request uses. All of them are
// constructed once at process start and passed by reference; no handler
// creates its own connections or clients.
type App struct {
	DBConn        *pgxpool.Pool
	Queue         *amqp091.Channel
	Encoder       ai.Encoder
	Docs          docstore.Store
	Index         vector.Index
	Graph         graphstore.Store
	Reranker      *search.Reranker
	GraphSearcher *graph.Searcher
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
