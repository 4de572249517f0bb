package server

import (
	"net/http"

	"github.com/aristath/itemsentinel/pkg/render"
)

const (
	serviceName    = "itemsentinel"
	serviceVersion = "1.0.0"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.Respond(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": serviceVersion,
		"service": serviceName,
	}, s.log)
}
