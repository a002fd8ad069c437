package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"leadscout-engine/internal/config"
	"leadscout-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setProxyPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) SetProxyPassword(w http.ResponseWriter, r *http.Request) {
	var req setProxyPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if cfg.Proxies.Username == "" {
		http.Error(w, "proxies.username is not configured", http.StatusBadRequest)
		return
	}
	if err := secrets.SetProxyPassword(secrets.ProxyKeyringAccount(cfg.Proxies.Username), req.Password); err != nil {
		http.Error(w, "failed to store password: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteProxyPassword(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	if cfg.Proxies.Username == "" {
		http.Error(w, "proxies.username is not configured", http.StatusBadRequest)
		return
	}
	if err := secrets.DeleteProxyPassword(secrets.ProxyKeyringAccount(cfg.Proxies.Username)); err != nil {
		http.Error(w, "failed to delete password: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
