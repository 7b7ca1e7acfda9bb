package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lexatlas/lexatlas/internal/server/middleware"
	"github.com/lexatlas/lexatlas/internal/timing"
	"github.com/lexatlas/lexatlas/internal/util"
	"github.com/lexatlas/lexatlas/pkg/common"
)

const defaultK = 5

func GetGraphSearchHandler(c echo.Context) error {
	type graphSearchParams struct {
		Q string `query:"q" validate:"required"`
		K *int   `query:"k"`
	}

	type graphSearchResponse struct {
		Query   string               `json:"query"`
		Params  searchParamsEcho     `json:"params"`
		Results []common.GraphResult `json:"results"`
		TraceID string               `json:"trace_id"`
		Timings []timing.Phase       `json:"timings"`
	}

	params := new(graphSearchParams)
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

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	watch := timing.Start()

	results, err := app.GraphSearcher.Search(ctx, params.Q, k)
	if err != nil {
		status, resp := statusForError(err)
		return c.JSON(status, resp)
	}
	watch.Mark("graph_search")

	return c.JSON(http.StatusOK, graphSearchResponse{
		Query:   params.Q,
		Params:  searchParamsEcho{K: k},
		Results: results,
		TraceID: util.NewTraceID(),
		Timings: watch.Snapshot(),
	})
}
