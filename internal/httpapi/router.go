package httpapi

import (
	"net/http"
	"time"
)

// NewMux returns the raw mux so main() can wrap it in middleware and
// still attach anything that needs the server handle.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Health
	hh := HealthHandler{Started: time.Now()}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Jobs
	jh := JobsHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))
	mux.HandleFunc("/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: jh.DeleteByPath, // expects /jobs/{id}
	}))

	// Pipeline
	ph := PipelineHandler{
		RunIngestion:      d.RunIngestion,
		RunReverification: d.RunReverification,
		Status:            d.PipelineStatus,
	}
	mux.HandleFunc("/pipeline/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.Run,
	}))
	mux.HandleFunc("/pipeline/reverify", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.Reverify,
	}))
	mux.HandleFunc("/pipeline/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.GetStatus,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/llm", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetLLMKey,
	}))
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))
	mux.HandleFunc("/api/secrets/telegram", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetTelegramToken,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// DB maintenance
	dh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))
	mux.HandleFunc("/db/purge", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Purge,
	}))

	return mux
}
