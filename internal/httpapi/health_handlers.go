package httpapi

import (
	"encoding/json"
	"net/http"
	"time"
)

type HealthHandler struct {
	Started time.Time
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":             true,
		"uptime_seconds": int64(time.Since(h.Started).Seconds()),
	})
}
