package controllers

import (
	"net/http"

	"github.com/katchinsky/reflux-tg-bot/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	Svc *services.CategoryService
}

func NewCategoryController(svc *services.CategoryService) *CategoryController {
	return &CategoryController{Svc: svc}
}

func (h *CategoryController) ListCategories(c *gin.Context) {
	cats, err := h.Svc.List(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, cats)
}

func (h *CategoryController) CreateCategory(c *gin.Context) {
	var body struct {
		Name     string `json:"name" binding:"required"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat, err := h.Svc.Create(c.Request.Context(), body.Name, body.ParentID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(201, cat)
}
