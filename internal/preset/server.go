package preset

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/linuxmatters/jivedeck/internal/script"
)

// Server exposes a Store over HTTP.
type Server struct {
	store *Store
	mux   *http.ServeMux
}

// NewServer registers the preset routes for store.
func NewServer(store *Store) *Server {
	s := &Server{store: store, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /api/presets", s.handleList)
	s.mux.HandleFunc("POST /api/presets", s.handleCreate)
	s.mux.HandleFunc("GET /api/presets/{id}", s.handleGet)
	s.mux.HandleFunc("DELETE /api/presets/{id}", s.handleDelete)
	s.mux.HandleFunc("POST /api/test-code", s.handleTestCode)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	presets, err := s.store.All()
	if err != nil {
		log.Printf("presets: load: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load presets")
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

type createRequest struct {
	Name        string  `json:"name"`
	VolumeCode  string  `json:"volumeCode"`
	EQCode      string  `json:"eqCode"`
	EffectsCode string  `json:"effectsCode"`
	Labels      *Labels `json:"labels,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	id, p, err := s.store.Create(Preset{
		Name:        req.Name,
		VolumeCode:  req.VolumeCode,
		EQCode:      req.EQCode,
		EffectsCode: req.EffectsCode,
		Labels:      req.Labels,
	})
	switch {
	case errors.Is(err, ErrMissingField):
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	case err != nil:
		log.Printf("presets: save: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save preset")
		return
	}

	log.Printf("presets: saved %q as %s", p.Name, id)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Preset saved successfully",
		"presetId": id,
		"preset":   p,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.PathValue("id"))
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Preset not found")
		return
	case err != nil:
		log.Printf("presets: load: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load preset")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.store.Delete(id)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Preset not found")
		return
	case errors.Is(err, ErrDefaultPreset):
		writeError(w, http.StatusBadRequest, "Cannot delete default preset")
		return
	case err != nil:
		log.Printf("presets: delete: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete preset")
		return
	}

	log.Printf("presets: deleted %s", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Preset deleted successfully"})
}

type testCodeRequest struct {
	Code      string   `json:"code"`
	TestValue *float64 `json:"testValue"`
}

func (s *Server) handleTestCode(w http.ResponseWriter, r *http.Request) {
	var req testCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   err.Error(),
			"message": "Code execution failed",
		})
		return
	}

	value := 50.0
	if req.TestValue != nil {
		value = *req.TestValue
	}

	res, err := script.Test(req.Code, value, "test-slider")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   err.Error(),
			"message": "Code execution failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"input":   res.Input,
		"output":  res.Output,
		"message": "Code executed successfully",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "jivedeck preset service is running",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("presets: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
