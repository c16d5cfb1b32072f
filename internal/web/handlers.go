package web

import (
	"encoding/json"
	"net/http"
)

const (
	fetchHeader   = "X-Requested-With"
	draftFormName = "draft"
)

type submitResponse struct {
	Accepted bool `json:"accepted"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.templates.ExecuteTemplate(w, "page", newPageView(session)); err != nil {
		s.logger.Error("render page", "session_id", session.ID(), "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// handleSubmit starts a generation for the posted draft. Blank drafts and
// drafts posted while a request is pending are accepted as no-ops.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	_, accepted := session.Send(s.genCtx, r.PostFormValue(draftFormName))

	if r.Header.Get(fetchHeader) == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	status := http.StatusAccepted
	if !accepted {
		status = http.StatusOK
	}
	writeJSON(w, status, submitResponse{Accepted: accepted})
}
