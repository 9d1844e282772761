// controllers/analytics_controller.go
package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/katchinsky/reflux-tg-bot/models"
	"github.com/katchinsky/reflux-tg-bot/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Svc *services.AnalyticsService
}

func NewAnalyticsController(svc *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Svc: svc}
}

func (h *AnalyticsController) GetCategoryRollup(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	from, to := rangeParams(c)
	level, err := services.ParseRollupLevel(c.DefaultQuery("category_level", "lowest"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	windowHours, err := intParam(c, "window_hours", services.DefaultWindowHours)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	out, err := h.Svc.CategoryRollup(c.Request.Context(), userID, from, to, level, windowHours)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	for i := range out.Categories {
		out.Categories[i].SharePct = round1(out.Categories[i].SharePct)
		out.Categories[i].SymptomWindowRatePct = round1(out.Categories[i].SymptomWindowRatePct)
	}
	c.JSON(200, out)
}

func (h *AnalyticsController) GetSymptomSeries(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	from, to := rangeParams(c)
	bucketHours, err := intParam(c, "bucket_hours", services.DefaultBucketHours)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	var typeFilter *models.SymptomType
	if v := c.Query("symptom_type"); v != "" {
		st, err := models.ParseSymptomType(v)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		typeFilter = &st
	}

	out, err := h.Svc.SymptomSeries(c.Request.Context(), userID, from, to, bucketHours, typeFilter)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	for i := range out.Daily {
		if out.Daily[i].AvgIntensity != nil {
			r := round1(*out.Daily[i].AvgIntensity)
			out.Daily[i].AvgIntensity = &r
		}
	}
	for i := range out.ByType {
		out.ByType[i].AvgIntensity = round1(out.ByType[i].AvgIntensity)
	}
	c.JSON(200, out)
}

func (h *AnalyticsController) GetMedicationSummary(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	from, to := rangeParams(c)

	out, err := h.Svc.MedicationSummary(c.Request.Context(), userID, from, to)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	for i := range out.ByName {
		out.ByName[i].SharePct = round1(out.ByName[i].SharePct)
	}
	c.JSON(200, out)
}

func (h *AnalyticsController) GetCorrelations(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	from, to := rangeParams(c)
	level, err := services.ParseRollupLevel(c.DefaultQuery("category_level", "lowest"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	windowHours, err := intParam(c, "window_hours", services.DefaultWindowHours)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	minSupport, err := intParam(c, "min_support", services.DefaultMinSupport)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	out, err := h.Svc.Correlations(c.Request.Context(), userID, from, to, level, windowHours, minSupport)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	out.BaselineRatePct = round1(out.BaselineRatePct)
	for i := range out.Features {
		out.Features[i].SymptomRatePct = round1(out.Features[i].SymptomRatePct)
		out.Features[i].DeltaPctPoints = round1(out.Features[i].DeltaPctPoints)
	}
	c.JSON(200, out)
}

func (h *AnalyticsController) GetTimeline(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	from, to := rangeParams(c)

	out, err := h.Svc.Timeline(c.Request.Context(), userID, from, to)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, out)
}

// --- helpers ---

func userIDFromCtx(c *gin.Context) (uint, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	switch id := v.(type) {
	case uint:
		return id, true
	case int:
		return uint(id), true
	case int64:
		return uint(id), true
	default:
		return 0, false
	}
}

// rangeParams reads from/to, defaulting to the last 7 days inclusive.
func rangeParams(c *gin.Context) (string, string) {
	now := time.Now().UTC()
	from := c.DefaultQuery("from", now.AddDate(0, 0, -6).Format("2006-01-02"))
	to := c.DefaultQuery("to", now.Format("2006-01-02"))
	return from, to
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidRange), errors.Is(err, services.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrUpstreamLoad):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Percentages keep full precision through the whole computation and are
// rounded once, here, at the presentation boundary.
func round1(v float64) float64 { return math.Round(v*10) / 10 }
