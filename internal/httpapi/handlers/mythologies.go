package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mythchat/mythchat/internal/common"
)

// ListMythologies handles GET /api/mythologies, the public catalog summary.
// Plain array on success, plain error object on failure.
func (h *Handler) ListMythologies(c *gin.Context) {
	summaries, err := h.Myths.ListSummaries(c.Request.Context())
	if err != nil {
		log.Printf("[Mythologies] list failed err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch mythologies"})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// CatalogMythologies handles GET /api/v1/mythologies: full records with
// their gods preloaded.
func (h *Handler) CatalogMythologies(c *gin.Context) {
	myths, err := h.Myths.ListWithGods(c.Request.Context())
	if err != nil {
		log.Printf("[Mythologies] catalog list failed err=%v", err)
		common.Fail(c, http.StatusInternalServerError, 50000, "failed to fetch mythologies")
		return
	}
	common.OK(c, myths)
}

// CatalogMythology handles GET /api/v1/mythologies/:id.
func (h *Handler) CatalogMythology(c *gin.Context) {
	myth, err := h.Myths.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40400, "mythology not found")
			return
		}
		log.Printf("[Mythologies] get failed id=%s err=%v", c.Param("id"), err)
		common.Fail(c, http.StatusInternalServerError, 50000, "failed to fetch mythology")
		return
	}
	common.OK(c, myth)
}

// CatalogGods handles GET /api/v1/mythologies/:id/gods.
func (h *Handler) CatalogGods(c *gin.Context) {
	gods, err := h.Myths.GodsByMythology(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.Printf("[Mythologies] gods list failed mythology=%s err=%v", c.Param("id"), err)
		common.Fail(c, http.StatusInternalServerError, 50000, "failed to fetch gods")
		return
	}
	common.OK(c, gods)
}

// CatalogGod handles GET /api/v1/gods/:id.
func (h *Handler) CatalogGod(c *gin.Context) {
	god, err := h.Myths.GodByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40400, "god not found")
			return
		}
		log.Printf("[Mythologies] god get failed id=%s err=%v", c.Param("id"), err)
		common.Fail(c, http.StatusInternalServerError, 50000, "failed to fetch god")
		return
	}
	common.OK(c, god)
}
