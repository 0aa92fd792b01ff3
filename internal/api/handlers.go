package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/routekeeper/gatewayproxy/internal/registry"
)

func (s *Server) handleHealth(c *gin.Context) {
	status := s.pool.Status()
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"service": "gatewayproxy",
		"version": s.version,
		"keys": gin.H{
			"total":     status.Total,
			"available": status.Available,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListModels(c *gin.Context) {
	if c.Query("refresh") == "true" && s.catalog != nil {
		if err := s.catalog.RefreshIfStale(c.Request.Context(), true); err != nil {
			log.Warnf("api: model catalog refresh failed: %v", err)
		}
	}

	var filter *registry.ProviderTag
	if provider := c.Query("provider"); provider != "" {
		tag := registry.ProviderTag(provider)
		filter = &tag
	}

	entries := s.registry.List(filter)
	data := make([]gin.H, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		seen[entry.ID] = true
		data = append(data, modelToJSON(entry))
	}

	if s.catalog != nil {
		for _, id := range s.catalog.KnownIDs() {
			if seen[id] {
				continue
			}
			provider := s.registry.DetectProvider(id)
			if filter != nil && provider != *filter {
				continue
			}
			data = append(data, gin.H{"id": id, "object": "model", "owned_by": string(provider)})
		}
	}

	c.JSON(http.StatusOK, gin.H{"object": "list", "data": data})
}

func (s *Server) handleGetModel(c *gin.Context) {
	id := c.Param("id")
	entry, ok := s.registry.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"message": "model not found: " + id,
			"type":    "invalid_request_error",
		}})
		return
	}
	c.JSON(http.StatusOK, modelToJSON(entry))
}

func modelToJSON(entry registry.ModelEntry) gin.H {
	return gin.H{
		"id":       entry.ID,
		"object":   "model",
		"owned_by": string(entry.Provider),
	}
}

func (s *Server) handleAdminStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.pool.Status())
}

func (s *Server) handleAdminResetAll(c *gin.Context) {
	s.pool.ResetAll()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleAdminResetOne(c *gin.Context) {
	i, err := strconv.Atoi(c.Param("i"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"message": "invalid slot index",
			"type":    "invalid_request_error",
		}})
		return
	}
	if !s.pool.Reset(i) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"message": "slot index out of range",
			"type":    "invalid_request_error",
		}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleAdminReload(c *gin.Context) {
	if err := s.pool.Reload(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"message": err.Error(),
			"type":    "configuration_error",
		}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
