package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mythchat/mythchat/internal/common"
	"github.com/mythchat/mythchat/internal/mythology"
	"github.com/mythchat/mythchat/internal/theme"
)

// iconMaxBytes bounds how much of an upstream icon we will read.
const iconMaxBytes = 1 << 20

// Theme handles GET /api/v1/theme: resolve the accent color for a
// mythology (and optionally one of its gods) and return it with the CSS
// custom properties derived from it.
func (h *Handler) Theme(c *gin.Context) {
	mythID := c.Query("mythologyId")
	if mythID == "" {
		common.Fail(c, http.StatusBadRequest, 40000, "mythologyId is required")
		return
	}

	myth, err := h.Myths.GetByID(c.Request.Context(), mythID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40400, "mythology not found")
			return
		}
		log.Printf("[Theme] mythology fetch failed id=%s err=%v", mythID, err)
		common.Fail(c, http.StatusInternalServerError, 50000, "failed to resolve theme")
		return
	}

	var god *mythology.God
	if godID := c.Query("godId"); godID != "" {
		g, err := h.Myths.GodByID(c.Request.Context(), godID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				common.Fail(c, http.StatusNotFound, 40400, "god not found")
				return
			}
			log.Printf("[Theme] god fetch failed id=%s err=%v", godID, err)
			common.Fail(c, http.StatusInternalServerError, 50000, "failed to resolve theme")
			return
		}
		if g.MythologyID != myth.ID {
			common.Fail(c, http.StatusBadRequest, 40000, "god does not belong to mythology")
			return
		}
		god = g
	}

	accent := theme.Accent(myth, god)
	common.OK(c, gin.H{
		"accent":    accent,
		"variables": theme.CSSVariables(accent),
	})
}

// GodIcon handles GET /api/v1/gods/:id/icon: fetch the persona's source
// SVG, strip its baked-in colors and recolor it with the resolved accent.
func (h *Handler) GodIcon(c *gin.Context) {
	god, err := h.Myths.GodByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40400, "god not found")
			return
		}
		log.Printf("[Theme] god fetch failed id=%s err=%v", c.Param("id"), err)
		common.Fail(c, http.StatusInternalServerError, 50000, "failed to fetch icon")
		return
	}
	if god.IconURL == nil || *god.IconURL == "" {
		common.Fail(c, http.StatusNotFound, 40400, "god has no icon")
		return
	}

	myth, err := h.Myths.GetByID(c.Request.Context(), god.MythologyID)
	if err != nil {
		log.Printf("[Theme] mythology fetch failed id=%s err=%v", god.MythologyID, err)
		common.Fail(c, http.StatusInternalServerError, 50000, "failed to fetch icon")
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, *god.IconURL, nil)
	if err != nil {
		common.Fail(c, http.StatusBadGateway, 50200, "failed to fetch icon")
		return
	}
	resp, err := h.icons.Do(req)
	if err != nil {
		log.Printf("[Theme] icon fetch failed url=%s err=%v", *god.IconURL, err)
		common.Fail(c, http.StatusBadGateway, 50200, "failed to fetch icon")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[Theme] icon fetch status=%d url=%s", resp.StatusCode, *god.IconURL)
		common.Fail(c, http.StatusBadGateway, 50200, "failed to fetch icon")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, iconMaxBytes))
	if err != nil {
		common.Fail(c, http.StatusBadGateway, 50200, "failed to fetch icon")
		return
	}

	recolored := theme.Recolor(string(raw), theme.Accent(myth, god))
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/svg+xml", []byte(recolored))
}
