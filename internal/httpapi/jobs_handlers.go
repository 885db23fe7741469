package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"jobscout-engine/internal/store"
)

type JobsHandler struct {
	DB *sql.DB
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	jobs, err := store.ListJobs(r.Context(), h.DB, store.ListJobsOpts{
		Source:         q.Get("source"),
		Company:        q.Get("company"),
		EmploymentType: q.Get("type"),
		Sort:           q.Get("sort"),
		Window:         q.Get("window"),
		Limit:          limit,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"jobs": jobs, "count": len(jobs)})
}

func (h JobsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r.URL.Path, "/jobs/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "invalid job id")
		return
	}
	j, err := store.GetJob(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}
	writeJSON(w, j)
}

func (h JobsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r.URL.Path, "/jobs/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "invalid job id")
		return
	}
	err := store.DeleteJob(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// idFromPath parses the numeric id segment after prefix, tolerating one
// trailing sub-path segment.
func idFromPath(path, prefix string) (int64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
