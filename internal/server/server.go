package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/lexatlas/lexatlas/internal/queue"
	mid "github.com/lexatlas/lexatlas/internal/server/middleware"
	"github.com/lexatlas/lexatlas/internal/util"
	"github.com/lexatlas/lexatlas/pkg/ai"
	oai "github.com/lexatlas/lexatlas/pkg/ai/ollama"
	gai "github.com/lexatlas/lexatlas/pkg/ai/openai"
	docpgx "github.com/lexatlas/lexatlas/pkg/docstore/pgx"
	"github.com/lexatlas/lexatlas/pkg/graph"
	graphpgx "github.com/lexatlas/lexatlas/pkg/graphstore/pgx"
	"github.com/lexatlas/lexatlas/pkg/logger"
	"github.com/lexatlas/lexatlas/pkg/search"
	vecpgx "github.com/lexatlas/lexatlas/pkg/vector/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runMigrations()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()
	conn.Config().AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, []string{queue.RebuildQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	encoder := newEncoderFromEnv()
	docs := docpgx.NewDocumentDBStore(conn)
	index := vecpgx.NewVectorDBIndex(conn)
	graphStore := graphpgx.NewGraphDBStore(conn)

	app := &mid.App{
		DBConn:        conn,
		Queue:         ch,
		Encoder:       encoder,
		Docs:          docs,
		Index:         index,
		Graph:         graphStore,
		Reranker:      search.NewReranker(encoder, index, docs),
		GraphSearcher: graph.NewSearcher(graphStore, docs),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func newEncoderFromEnv() ai.Encoder {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewEncoderClient(oai.NewEncoderClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			Dimensions:     int(util.GetEnvNumeric("AI_EMBED_DIMENSIONS", 1024)),

			BaseURL: util.GetEnv("AI_EMBED_URL"),
			ApiKey:  util.GetEnv("AI_EMBED_KEY"),

			TokenEncoding:  util.GetEnvString("AI_TOKEN_ENCODING", "cl100k_base"),
			MaxInputTokens: int(util.GetEnvNumeric("AI_MAX_INPUT_TOKENS", 8192)),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 8)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewEncoderClient(gai.NewEncoderClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			Dimensions:     int(util.GetEnvNumeric("AI_EMBED_DIMENSIONS", 1024)),

			BaseURL: util.GetEnv("AI_EMBED_URL"),
			ApiKey:  util.GetEnv("AI_EMBED_KEY"),

			TokenEncoding:  util.GetEnvString("AI_TOKEN_ENCODING", "cl100k_base"),
			MaxInputTokens: int(util.GetEnvNumeric("AI_MAX_INPUT_TOKENS", 8192)),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 8)),
		})
	}
}

func runMigrations() {
	source := util.GetEnvString("MIGRATIONS_URL", "file://migrations")
	m, err := migrate.New(source, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to init migrations", "err", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}
}
