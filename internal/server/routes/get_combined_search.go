package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/lexatlas/lexatlas/internal/server/middleware"
	"github.com/lexatlas/lexatlas/internal/timing"
	"github.com/lexatlas/lexatlas/internal/util"
	"github.com/lexatlas/lexatlas/pkg/common"
	"github.com/lexatlas/lexatlas/pkg/logger"
	"github.com/lexatlas/lexatlas/pkg/search"
)

const (
	branchSemantic = "semantic"
	branchGraph    = "graph"

	defaultKCandidates = 10
)

func GetCombinedSearchHandler(c echo.Context) error {
	type combinedSearchParams struct {
		Q           string `query:"q" validate:"required"`
		K           *int   `query:"k"`
		KCandidates *int   `query:"k_candidates"`
		RRFK        *int   `query:"rrf_k"`
	}

	type combinedParamsEcho struct {
		K           int `json:"k"`
		KCandidates int `json:"k_candidates"`
		RRFK        int `json:"rrf_k"`
	}

	type combinedSearchResponse struct {
		Query    string               `json:"query"`
		Params   combinedParamsEcho   `json:"params"`
		Results  []common.FusedResult `json:"results"`
		Degraded []string             `json:"degraded_branches,omitempty"`
		TraceID  string               `json:"trace_id"`
		Timings  []timing.Phase       `json:"timings"`
	}

	params := new(combinedSearchParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Invalid request params",
			Details: "q is required",
		})
	}

	k := defaultK
	if params.K != nil {
		k = *params.K
	}
	kCandidates := defaultKCandidates
	if params.KCandidates != nil {
		kCandidates = *params.KCandidates
	}
	rrfK := search.DefaultRRFK
	if params.RRFK != nil {
		rrfK = *params.RRFK
	}

	app := c.(*middleware.AppContext).App
	traceID := util.NewTraceID()
	watch := timing.Start()

	branchTimeout := time.Duration(util.GetEnvNumeric("SEARCH_BRANCH_TIMEOUT_MS", 10000)) * time.Millisecond
	ctx, cancel := context.WithTimeout(c.Request().Context(), branchTimeout)
	defer cancel()

	cfg := rerankConfigFromEnv()
	cfg.KFinal = kCandidates

	// The two branches share no mutable state; a failing branch degrades
	// to empty instead of failing the whole request.
	var (
		semanticDocs, graphDocs []common.Document
		semanticErr, graphErr   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results, err := app.Reranker.Search(gctx, params.Q, cfg)
		if err != nil {
			semanticErr = err
			return nil
		}
		semanticDocs = make([]common.Document, len(results))
		for i, result := range results {
			semanticDocs[i] = result.Document
		}
		return nil
	})
	g.Go(func() error {
		results, err := app.GraphSearcher.Search(gctx, params.Q, kCandidates)
		if err != nil {
			graphErr = err
			return nil
		}
		graphDocs = make([]common.Document, len(results))
		for i, result := range results {
			graphDocs[i] = result.Document
		}
		return nil
	})
	_ = g.Wait()
	watch.Mark("branches")

	degraded := make([]string, 0, 2)
	if semanticErr != nil {
		logger.Warn("[CombinedSearch] Semantic branch degraded",
			"trace_id", traceID, "duration_ms", watch.TotalMs(), "error", semanticErr)
		degraded = append(degraded, branchSemantic)
	}
	if graphErr != nil {
		logger.Warn("[CombinedSearch] Graph branch degraded",
			"trace_id", traceID, "duration_ms", watch.TotalMs(), "error", graphErr)
		degraded = append(degraded, branchGraph)
	}
	if semanticErr != nil && graphErr != nil {
		status, resp := statusForError(semanticErr)
		return c.JSON(status, resp)
	}

	fused := search.FuseRRF([]search.Branch{
		{Tag: branchSemantic, Docs: semanticDocs},
		{Tag: branchGraph, Docs: graphDocs},
	}, rrfK, k)
	watch.Mark("fusion")

	return c.JSON(http.StatusOK, combinedSearchResponse{
		Query: params.Q,
		Params: combinedParamsEcho{
			K:           k,
			KCandidates: kCandidates,
			RRFK:        rrfK,
		},
		Results:  fused,
		Degraded: degraded,
		TraceID:  traceID,
		Timings:  watch.Snapshot(),
	})
}
