package httpapi

import (
	"net/http"
	"sync/atomic"

	"ghostcheck-engine/internal/config"
	"ghostcheck-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setLLMKeyReq struct {
	Provider string `json:"provider"` // groq | gemini
	Key      string `json:"key"`
}

func (h SecretsHandler) SetLLMKey(w http.ResponseWriter, r *http.Request) {
	var req setLLMKeyReq
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var account string
	switch req.Provider {
	case "groq":
		account = secrets.GroqAccount
	case "gemini":
		account = secrets.GeminiAccount
	default:
		http.Error(w, "unknown provider (want groq or gemini)", http.StatusBadRequest)
		return
	}

	if err := secrets.Set(account, req.Key); err != nil {
		http.Error(w, "failed to store key: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setIMAPPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) SetIMAPPassword(w http.ResponseWriter, r *http.Request) {
	var req setIMAPPasswordReq
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.Set(secrets.IMAPAccount(cfg), req.Password); err != nil {
		http.Error(w, "failed to store password: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setTelegramTokenReq struct {
	Token string `json:"token"`
}

func (h SecretsHandler) SetTelegramToken(w http.ResponseWriter, r *http.Request) {
	var req setTelegramTokenReq
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := secrets.Set(secrets.TelegramAccount, req.Token); err != nil {
		http.Error(w, "failed to store token: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
