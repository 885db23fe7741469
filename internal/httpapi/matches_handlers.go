package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"jobscout-engine/internal/store"
)

type MatchesHandler struct {
	DB     *sql.DB
	CfgVal *atomic.Value // config.Config
}

func (h MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	profile := q.Get("profile")
	if profile == "" {
		profile = "local"
	}
	minScore, _ := strconv.ParseFloat(q.Get("min_score"), 64)
	limit, _ := strconv.Atoi(q.Get("limit"))

	matches, err := store.ListMatches(r.Context(), h.DB, store.ListMatchesOpts{
		ProfileID: profile,
		MinScore:  minScore,
		Limit:     limit,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"matches": matches, "count": len(matches)})
}

type reviewReq struct {
	Reviewed bool `json:"reviewed"`
	Approved bool `json:"approved"`
}

// ReviewByPath handles POST /matches/{id}/review.
func (h MatchesHandler) ReviewByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/matches/")
	if !strings.HasSuffix(rest, "/review") {
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown matches endpoint")
		return
	}
	id, ok := idFromPath(r.URL.Path, "/matches/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "invalid match id")
		return
	}

	var req reviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	err := store.SetMatchReview(r.Context(), h.DB, id, req.Reviewed, req.Approved)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "match not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "review_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
