// ABOUTME: Inbound webhook that creates a person from a scraped profile payload
// ABOUTME: Guards the endpoint with a shared X-TOKEN secret
package web

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harperreed/leadbook/logging"
	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/people"
)

func (s *Server) registerWebhook(rg *gin.RouterGroup) {
	rg.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Webhook endpoint is active"})
	})
	rg.POST("", s.requireToken(), s.receivePerson)
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.webhookToken == "" {
			s.logger.Error("AUTH_X_TOKEN is not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error"})
			return
		}

		token := c.GetHeader("X-TOKEN")
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.webhookToken)) != 1 {
			s.logger.Warn("rejected webhook call", "token", logging.Mask(token), "remote", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Invalid token"})
			return
		}

		c.Next()
	}
}

func (s *Server) receivePerson(c *gin.Context) {
	patch, err := decodePatch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload format", "details": err.Error()})
		return
	}

	if patch.Websites == nil {
		patch.Websites = &[]string{}
	}

	person, err := s.store.Create(c.Request.Context(), patch)
	if errors.Is(err, people.ErrInvalidPatch) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload format", "details": err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("webhook insert failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook data"})
		return
	}

	s.logger.Info("webhook created person", "id", person.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Webhook processed successfully", "data": person})
}

// decodePatch reads a JSON object body. Anything other than an object,
// including null, is rejected.
func decodePatch(c *gin.Context) (models.PersonPatch, error) {
	var patch models.PersonPatch

	raw, err := c.GetRawData()
	if err != nil {
		return patch, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return patch, errors.New("body must be a JSON object")
	}
	if err := json.Unmarshal(trimmed, &patch); err != nil {
		return patch, err
	}
	return patch, nil
}
