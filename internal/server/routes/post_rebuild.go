package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lexatlas/lexatlas/internal/queue"
	"github.com/lexatlas/lexatlas/internal/server/middleware"
	"github.com/lexatlas/lexatlas/internal/util"
	"github.com/lexatlas/lexatlas/pkg/logger"
)

// PostRebuildHandler enqueues a full offline rebuild of the vector index
// and the knowledge graph. The job runs in the indexer worker; live
// queries keep serving the previous snapshot until the swap commits.
func PostRebuildHandler(c echo.Context) error {
	type rebuildResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id"`
	}

	app := c.(*middleware.AppContext).App
	correlationID := util.NewCorrelationID()

	payload, err := json.Marshal(queue.RebuildMessage{CorrelationID: correlationID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}

	if err := queue.PublishFIFO(app.Queue, queue.RebuildQueue, payload); err != nil {
		logger.Error("Failed to publish rebuild job", "err", err)
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "Failed to enqueue rebuild"})
	}

	logger.Info("Rebuild job enqueued", "correlation_id", correlationID)
	return c.JSON(http.StatusAccepted, rebuildResponse{
		Message:       "Rebuild scheduled",
		CorrelationID: correlationID,
	})
}
