package handlers

import (
	"errors"
	"net/http"

	"rps_webapp/internal/domain"
	"rps_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Game *service.GameService
}

func NewHandler(game *service.GameService) *Handler {
	return &Handler{Game: game}
}

// respondError maps domain errors onto HTTP statuses. Anything that is not
// a validation error is reported as a server-side failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidChoice):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid choice"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
	}
}
