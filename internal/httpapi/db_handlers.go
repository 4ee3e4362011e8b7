package httpapi

import (
	"database/sql"
	"net"
	"net/http"
	"time"

	"ghostcheck-engine/internal/store"
)

const purgeRetention = 90 * 24 * time.Hour

type DBHandler struct {
	DB *sql.DB
}

func loopbackOnly(w http.ResponseWriter, r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "127.0.0.1" && host != "::1" && host != "localhost" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if !loopbackOnly(w, r) {
		return
	}

	if _, err := h.DB.Exec(`PRAGMA wal_checkpoint(FULL);`); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Purge drops dead records past retention.
func (h DBHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if !loopbackOnly(w, r) {
		return
	}

	n, err := store.PurgeDead(r.Context(), h.DB, purgeRetention)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"deleted": n})
}
