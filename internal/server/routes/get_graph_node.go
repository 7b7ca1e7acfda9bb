package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lexatlas/lexatlas/internal/server/middleware"
	"github.com/lexatlas/lexatlas/internal/util"
	"github.com/lexatlas/lexatlas/pkg/common"
	"github.com/lexatlas/lexatlas/pkg/graph"
	"github.com/lexatlas/lexatlas/pkg/graphstore"
)

// GetGraphNodeEdgesHandler exposes the stored neighborhood of one node,
// mainly for inspecting what the builder derived for a phrase or entity.
func GetGraphNodeEdgesHandler(c echo.Context) error {
	type graphNodeEdgesParams struct {
		Key string `param:"key" validate:"required"`
	}

	type graphNodeEdgesResponse struct {
		Key      string        `json:"key"`
		Outgoing []common.Edge `json:"outgoing"`
		Incoming []common.Edge `json:"incoming"`
	}

	params := new(graphNodeEdgesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	key := graph.NormalizeKey(params.Key)

	outgoing, err := app.Graph.OutgoingEdges(ctx, key)
	if err != nil {
		status, resp := statusForError(err)
		return c.JSON(status, resp)
	}
	incoming, err := app.Graph.IncomingEdges(ctx, key)
	if err != nil {
		status, resp := statusForError(err)
		return c.JSON(status, resp)
	}

	return c.JSON(http.StatusOK, graphNodeEdgesResponse{
		Key:      key,
		Outgoing: outgoing,
		Incoming: incoming,
	})
}

// GetGraphPathsHandler enumerates loop-free paths between two nodes up to
// a bounded depth.
func GetGraphPathsHandler(c echo.Context) error {
	type graphPathsParams struct {
		Source   string `query:"source" validate:"required"`
		Target   string `query:"target" validate:"required"`
		MaxDepth *int   `query:"max_depth"`
	}

	type graphPathsResponse struct {
		Source   string            `json:"source"`
		Target   string            `json:"target"`
		MaxDepth int               `json:"max_depth"`
		Paths    []graphstore.Path `json:"paths"`
	}

	params := new(graphPathsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Invalid request params",
			Details: "source and target are required",
		})
	}

	maxDepth := util.GetEnvInt("GRAPH_PATHS_MAX_DEPTH", 4)
	if params.MaxDepth != nil && *params.MaxDepth > 0 && *params.MaxDepth < maxDepth {
		maxDepth = *params.MaxDepth
	}
	maxPaths := util.GetEnvInt("GRAPH_PATHS_MAX_RESULTS", 20)

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	paths, err := app.Graph.SimplePaths(ctx,
		graph.NormalizeKey(params.Source), graph.NormalizeKey(params.Target),
		maxDepth, maxPaths)
	if err != nil {
		status, resp := statusForError(err)
		return c.JSON(status, resp)
	}

	return c.JSON(http.StatusOK, graphPathsResponse{
		Source:   graph.NormalizeKey(params.Source),
		Target:   graph.NormalizeKey(params.Target),
		MaxDepth: maxDepth,
		Paths:    paths,
	})
}
