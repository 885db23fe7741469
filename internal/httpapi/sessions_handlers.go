package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"jobscout-engine/internal/store"
)

type SessionsHandler struct {
	DB *sql.DB
}

func (h SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sessions, err := store.ListSessions(r.Context(), h.DB, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"sessions": sessions, "count": len(sessions)})
}

func (h SessionsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r.URL.Path, "/sessions/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "invalid session id")
		return
	}
	s, err := store.GetSession(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "session not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}
	writeJSON(w, s)
}
