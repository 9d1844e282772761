package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/katchinsky/reflux-tg-bot/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SymptomController struct {
	Svc *services.SymptomService
}

func NewSymptomController(svc *services.SymptomService) *SymptomController {
	return &SymptomController{Svc: svc}
}

func (h *SymptomController) LogSymptom(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var body services.SymptomInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	sym, err := h.Svc.AddSymptom(c.Request.Context(), userID, body)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, sym)
}

func (h *SymptomController) ResolveSymptom(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := idParam(c)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	var body struct {
		DurationMinutes int `json:"duration_minutes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	sym, err := h.Svc.Resolve(c.Request.Context(), userID, id, body.DurationMinutes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "symptom not found"})
			return
		}
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, sym)
}

func (h *SymptomController) ListSymptoms(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	syms, err := h.Svc.ListRecent(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, syms)
}

func (h *SymptomController) DeleteSymptom(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := idParam(c)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "symptom not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"ok": true})
}
