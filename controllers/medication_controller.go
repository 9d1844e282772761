package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/katchinsky/reflux-tg-bot/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MedicationController struct {
	Svc *services.MedicationService
}

func NewMedicationController(svc *services.MedicationService) *MedicationController {
	return &MedicationController{Svc: svc}
}

func (h *MedicationController) LogMedication(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var body struct {
		Name      string    `json:"name" binding:"required"`
		Dosage    string    `json:"dosage"`
		TakenAt   time.Time `json:"taken_at" binding:"required"`
		Scheduled bool      `json:"scheduled"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	med, err := h.Svc.Add(c.Request.Context(), userID, body.Name, body.Dosage, body.TakenAt, body.Scheduled)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, med)
}

func (h *MedicationController) ListMedications(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	meds, err := h.Svc.List(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, meds)
}

func (h *MedicationController) DeleteMedication(c *gin.Context) {
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
			c.JSON(404, gin.H{"error": "medication not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"ok": true})
}
