package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lexatlas/lexatlas/internal/server/middleware"
	"github.com/lexatlas/lexatlas/internal/timing"
	"github.com/lexatlas/lexatlas/internal/util"
	"github.com/lexatlas/lexatlas/pkg/common"
	"github.com/lexatlas/lexatlas/pkg/search"
)

type semanticSearchParams struct {
	Q          string   `query:"q" validate:"required"`
	K          *int     `query:"k"`
	Alpha      *float64 `query:"alpha" validate:"omitempty,gte=0,lte=1"`
	KRetrieval *int     `query:"k_retrieval"`
}

type searchParamsEcho struct {
	K          int     `json:"k"`
	Alpha      float64 `json:"alpha,omitempty"`
	KRetrieval int     `json:"k_retrieval,omitempty"`
}

// rerankConfigFromEnv applies deployment overrides to the default rerank
// config. Every endpoint that reranks goes through this so one deployment
// scores the same way everywhere.
func rerankConfigFromEnv() search.RerankConfig {
	cfg := search.DefaultRerankConfig()
	cfg.SingleLow = util.GetEnvNumeric("SEARCH_SINGLE_LOW", cfg.SingleLow)
	cfg.SingleHigh = util.GetEnvNumeric("SEARCH_SINGLE_HIGH", cfg.SingleHigh)
	cfg.SubsumeMatched = util.GetEnvBool("SEARCH_SUBSUME_MATCHED", false)
	return cfg
}

func GetSemanticSearchHandler(c echo.Context) error {
	type semanticSearchResponse struct {
		Query   string                  `json:"query"`
		Params  searchParamsEcho        `json:"params"`
		Results []common.SemanticResult `json:"results"`
		TraceID string                  `json:"trace_id"`
		Timings []timing.Phase          `json:"timings"`
	}

	params := new(semanticSearchParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Invalid request params",
			Details: "q is required, alpha must be in [0,1]",
		})
	}

	cfg := rerankConfigFromEnv()
	if params.K != nil {
		cfg.KFinal = *params.K
	}
	if params.Alpha != nil {
		cfg.Alpha = *params.Alpha
	}
	if params.KRetrieval != nil {
		cfg.KRetrieval = *params.KRetrieval
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	watch := timing.Start()

	results, err := app.Reranker.Search(ctx, params.Q, cfg)
	if err != nil {
		status, resp := statusForError(err)
		return c.JSON(status, resp)
	}
	watch.Mark("semantic_search")

	return c.JSON(http.StatusOK, semanticSearchResponse{
		Query: params.Q,
		Params: searchParamsEcho{
			K:          cfg.KFinal,
			Alpha:      cfg.Alpha,
			KRetrieval: cfg.KRetrieval,
		},
		Results: results,
		TraceID: util.NewTraceID(),
		Timings: watch.Snapshot(),
	})
}
