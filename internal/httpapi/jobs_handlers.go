package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"ghostcheck-engine/internal/events"
	"ghostcheck-engine/internal/store"
)

type JobsHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

// List serves the public listing: verified postings still young enough
// to apply to.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if s := q.Get("limit"); s != "" {
		limit, _ = strconv.Atoi(s)
	}

	jobs, err := store.ListPublic(r.Context(), h.DB, store.ListPublicOpts{
		Sort:  q.Get("sort"),
		Limit: limit,
	})
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if jobs == nil {
		jobs = []store.JobRecord{}
	}
	writeJSON(w, jobs)
}

func (h JobsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/jobs/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", 400)
		return
	}

	if err := store.DeleteJob(r.Context(), h.DB, id); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, "job_deleted", 1, map[string]any{"id": id}))
	writeJSON(w, map[string]any{"ok": true, "id": id})
}
