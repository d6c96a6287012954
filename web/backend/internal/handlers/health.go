package handlers

import (
	"net/http"

	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/messaging"
)

type healthView struct {
	Status       string                 `json:"status"`
	Service      string                 `json:"service"`
	Version      string                 `json:"version,omitempty"`
	Messaging    messaging.HealthStatus `json:"messaging"`
	CacheEntries int                    `json:"cacheEntries"`
}

// Health reports liveness. A broker outage degrades the status but still
// answers 200: the console keeps working without cross-instance cache
// invalidation.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	v := healthView{
		Status:    "ok",
		Service:   "web",
		Version:   h.version,
		Messaging: messaging.CheckClientHealth(h.messaging),
	}
	if h.cache != nil {
		v.CacheEntries = h.cache.Len()
	}
	if h.messaging != nil && !v.Messaging.Healthy() {
		v.Status = "degraded"
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}
