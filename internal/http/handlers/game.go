package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PlayRequest is the body of POST /api/play
type PlayRequest struct {
	Choice string `json:"choice"`
}

// Play handles one round against the computer
func (h *Handler) Play(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	res, err := h.Game.Play(c.Request.Context(), req.Choice)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Stats returns the current score
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Game.CurrentStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Reset wipes the score and the round history
func (h *Handler) Reset(c *gin.Context) {
	stats, err := h.Game.ResetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Statistics reset successfully",
		"stats":   stats,
	})
}

// History returns the latest rounds, newest first
func (h *Handler) History(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := h.Game.History(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"history": entries,
		"count":   len(entries),
	})
}
