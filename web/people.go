// ABOUTME: JSON API over the record store used by the remote client
// ABOUTME: List, get, create, update, delete and batch update of people
package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/people"
	"github.com/harperreed/leadbook/tablestate"
)

// BulkRequest is the body of POST /api/people/bulk.
type BulkRequest struct {
	Records []models.Change `json:"records"`
}

func (s *Server) registerPeople(rg *gin.RouterGroup) {
	rg.GET("", s.listPeople)
	rg.POST("", s.createPerson)
	rg.POST("/bulk", s.bulkUpdate)
	rg.GET("/:id", s.getPerson)
	rg.PATCH("/:id", s.updatePerson)
	rg.DELETE("/:id", s.deletePerson)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, people.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, people.ErrInvalidPatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(code, gin.H{"ok": false, "error": err.Error()})
}

func (s *Server) listPeople(c *gin.Context) {
	all, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if q := c.Query("q"); q != "" {
		all = tablestate.Filter(all, q)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "people": all})
}

func (s *Server) getPerson(c *gin.Context) {
	p, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "person": p})
}

func (s *Server) createPerson(c *gin.Context) {
	patch, err := decodePatch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := s.store.Create(c.Request.Context(), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "person": p})
}

func (s *Server) updatePerson(c *gin.Context) {
	patch, err := decodePatch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := s.store.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "person": p})
}

func (s *Server) deletePerson(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) bulkUpdate(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	updated, err := s.store.BulkUpdate(c.Request.Context(), req.Records)
	if err != nil {
		s.logger.Warn("bulk update failed", "records", len(req.Records), "err", err)
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error(), "people": updated})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "people": updated})
}
