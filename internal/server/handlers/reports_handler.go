package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
)

const defaultReportLimit = 20

// ReportLister returns stored periodic reports.
type ReportLister interface {
	ListReports(ctx context.Context, limit int) ([]models.StatisticsReport, error)
}

// ReportsHandler serves GET /api/reports.
type ReportsHandler struct {
	svc    ReportLister
	logger *zap.Logger
}

// NewReportsHandler constructs the HTTP handler adapter.
func NewReportsHandler(svc ReportLister, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{svc: svc, logger: logger}
}

// List returns the latest reports, newest first.
func (h *ReportsHandler) List(c *gin.Context) {
	limit := defaultReportLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	reports, err := h.svc.ListReports(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed listing reports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, reports)
}
