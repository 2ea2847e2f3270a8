package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"FlowScan/internal/domain/models"
	"FlowScan/internal/usecase"
	xhttp "FlowScan/pkg/http"
	xlogger "FlowScan/pkg/logger"
)

// ScanEchoHandler serves the latest cycle snapshots.
type ScanEchoHandler struct {
	logger *xlogger.Logger
	store  *usecase.SnapshotStore
}

func NewScanEchoHandler(logger *xlogger.Logger, store *usecase.SnapshotStore) *ScanEchoHandler {
	return &ScanEchoHandler{logger: logger, store: store}
}

func (h *ScanEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/flow/latest", h.FlowLatest)
	g.GET("/patterns/latest", h.PatternsLatest)
}

// Health reports the outcome of the last cycle. A degraded cycle answers 503.
func (h *ScanEchoHandler) Health(c echo.Context) error {
	health := h.store.Health()
	status := http.StatusOK
	if health.Status == "degraded" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, health)
}

func (h *ScanEchoHandler) FlowLatest(c echo.Context) error {
	req := &models.FlowLatestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.logger.Debug("invalid flow request", xlogger.String("query", c.QueryString()))
		return xhttp.BadRequestResponse(c, verr)
	}

	report, ok := h.store.Flow()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no flow cycle has finished yet"))
	}

	res := models.FlowLatestResponse{
		CycleID:   report.CycleID,
		StartedAt: report.StartedAt,
		Universe:  len(report.Universe),
		Failed:    report.Failed,
	}
	switch req.Side {
	case "short":
		res.Shorts = head(report.Shorts, req.Limit)
	case "long":
		res.Longs = head(report.Longs, req.Limit)
	default:
		res.Shorts = head(report.Shorts, req.Limit)
		res.Longs = head(report.Longs, req.Limit)
		res.Summary = report.Summary
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return xhttp.SuccessResponse(c, res)
}

func (h *ScanEchoHandler) PatternsLatest(c echo.Context) error {
	report, ok := h.store.Pattern()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no pattern cycle has finished yet"))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return xhttp.SuccessResponse(c, report)
}

func head(rows []models.RankedFlow, n int) []models.RankedFlow {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
