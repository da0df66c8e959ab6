package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizcraft/internal/llm"
	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/service"
)

// writeError maps domain errors to status codes. Unknown errors are 500
// with the message passed through.
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		verr *quiz.ValidationError
		own  *quiz.OwnershipError
		nf   *quiz.NotFoundError
		pe   *llm.ProviderError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Error()})
	case errors.As(err, &own):
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"message": nf.Error()})
	case errors.Is(err, service.ErrSessionClosed):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.As(err, &pe):
		s.log.WarnContext(c.Request.Context(), "provider error", "provider", pe.Provider, "kind", pe.Kind, "error", pe)
		c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to generate AI response", "details": pe.Detail})
	case errors.Is(err, service.ErrGenerationDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": err.Error()})
	default:
		s.log.ErrorContext(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "details": err.Error()})
}
