package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
)

// RollService is the inventory surface used by RollsHandler.
type RollService interface {
	AddRoll(ctx context.Context, req models.CreateRollRequest) (models.Roll, error)
	DeleteRoll(ctx context.Context, id int64) (models.Roll, error)
	GetRoll(ctx context.Context, id int64) (models.Roll, error)
	GetRolls(ctx context.Context, f *models.RollFilter) ([]models.Roll, error)
	GetStatistics(ctx context.Context, start, end time.Time) (models.Statistics, error)
	GetDailyBreakdown(ctx context.Context, start, end time.Time) ([]models.DailyStat, error)
}

// RollsHandler serves the /api/rolls endpoints.
type RollsHandler struct {
	svc    RollService
	logger *zap.Logger
}

// NewRollsHandler constructs the HTTP handler adapter.
func NewRollsHandler(svc RollService, logger *zap.Logger) *RollsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RollsHandler{svc: svc, logger: logger}
}

// rollQuery mirrors the optional filter query parameters of GET /api/rolls.
type rollQuery struct {
	IDFrom          *int64   `form:"idFrom"`
	IDTo            *int64   `form:"idTo"`
	LengthFrom      *float64 `form:"lengthFrom"`
	LengthTo        *float64 `form:"lengthTo"`
	WeightFrom      *float64 `form:"weightFrom"`
	WeightTo        *float64 `form:"weightTo"`
	AddedDateFrom   string   `form:"addedDateFrom"`
	AddedDateTo     string   `form:"addedDateTo"`
	DeletedDateFrom string   `form:"deletedDateFrom"`
	DeletedDateTo   string   `form:"deletedDateTo"`
	IsDeleted       *bool    `form:"isDeleted"`
}

type windowQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// Create adds a roll to stock.
func (h *RollsHandler) Create(c *gin.Context) {
	var req models.CreateRollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid roll payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	roll, err := h.svc.AddRoll(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "failed adding roll")
		return
	}

	c.Header("Location", fmt.Sprintf("/api/rolls/%d", roll.ID))
	c.JSON(http.StatusCreated, roll.ToDTO())
}

// Delete soft deletes a roll.
func (h *RollsHandler) Delete(c *gin.Context) {
	id, ok := h.rollID(c)
	if !ok {
		return
	}

	roll, err := h.svc.DeleteRoll(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed deleting roll")
		return
	}

	c.JSON(http.StatusOK, roll.ToDTO())
}

// Get returns a single roll.
func (h *RollsHandler) Get(c *gin.Context) {
	id, ok := h.rollID(c)
	if !ok {
		return
	}

	roll, err := h.svc.GetRoll(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed getting roll")
		return
	}

	c.JSON(http.StatusOK, roll.ToDTO())
}

// List returns the rolls matching the query filter.
func (h *RollsHandler) List(c *gin.Context) {
	var q rollQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter: " + err.Error()})
		return
	}

	f, err := q.toFilter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rolls, err := h.svc.GetRolls(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err, "failed listing rolls")
		return
	}

	c.JSON(http.StatusOK, models.ToDTOs(rolls))
}

// Statistics returns aggregate statistics for a window.
func (h *RollsHandler) Statistics(c *gin.Context) {
	start, end, ok := h.window(c)
	if !ok {
		return
	}

	stats, err := h.svc.GetStatistics(c.Request.Context(), start, end)
	if err != nil {
		h.writeError(c, err, "failed computing statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Daily returns the per-day stock breakdown for a window.
func (h *RollsHandler) Daily(c *gin.Context) {
	start, end, ok := h.window(c)
	if !ok {
		return
	}

	daily, err := h.svc.GetDailyBreakdown(c.Request.Context(), start, end)
	if err != nil {
		h.writeError(c, err, "failed computing daily breakdown")
		return
	}

	c.JSON(http.StatusOK, daily)
}

func (h *RollsHandler) rollID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid roll id"})
		return 0, false
	}
	return id, true
}

func (h *RollsHandler) window(c *gin.Context) (time.Time, time.Time, bool) {
	var q windowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return time.Time{}, time.Time{}, false
	}

	start, err := parseDate("startDate", q.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, time.Time{}, false
	}

	end, err := parseDate("endDate", q.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

func (h *RollsHandler) writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrRollNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidRoll),
		errors.Is(err, models.ErrInvalidRange),
		errors.Is(err, models.ErrRollAlreadyDeleted),
		errors.Is(err, models.ErrDeletedBeforeAdded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (q rollQuery) toFilter() (*models.RollFilter, error) {
	f := &models.RollFilter{
		IDRange:     models.RangeFilter[int64]{From: models.BoundFromPtr(q.IDFrom), To: models.BoundFromPtr(q.IDTo)},
		LengthRange: models.RangeFilter[float64]{From: models.BoundFromPtr(q.LengthFrom), To: models.BoundFromPtr(q.LengthTo)},
		WeightRange: models.RangeFilter[float64]{From: models.BoundFromPtr(q.WeightFrom), To: models.BoundFromPtr(q.WeightTo)},
		IsDeleted:   q.IsDeleted,
	}

	var err error
	if f.AddedDateRange, err = dateRange("addedDate", q.AddedDateFrom, q.AddedDateTo); err != nil {
		return nil, err
	}
	if f.DeletedDateRange, err = dateRange("deletedDate", q.DeletedDateFrom, q.DeletedDateTo); err != nil {
		return nil, err
	}
	return f, nil
}

func dateRange(name, from, to string) (models.RangeFilter[time.Time], error) {
	var rng models.RangeFilter[time.Time]
	if from != "" {
		t, err := parseDate(name+"From", from)
		if err != nil {
			return rng, err
		}
		rng.From = models.Bounded(t)
	}
	if to != "" {
		t, err := parseDate(name+"To", to)
		if err != nil {
			return rng, err
		}
		rng.To = models.Bounded(t)
	}
	return rng, nil
}

// parseDate accepts RFC 3339 timestamps and bare dates. Bare dates are UTC
// midnight. An empty value yields the zero time.
func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s must be an RFC3339 timestamp or YYYY-MM-DD date", name)
}
