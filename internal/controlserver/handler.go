package controlserver

import (
	"encoding/json"
	"log"
	"net/http"
)

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/status":
		s.handleStatus(w)
	case r.Method == http.MethodPost && r.URL.Path == "/connect":
		s.handleConnect(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/execute":
		s.handleExecute(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter) {
	writeJSON(w, map[string]string{
		"status": string(s.connector.Status()),
	})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	view, err := s.connector.Connect(r.Context())
	if err != nil {
		log.Printf("Connection failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, view)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, runShell(r.Context(), req.Command))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}
