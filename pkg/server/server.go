package server

import (
	"net/http"

	"pkt.systems/pslog"

	"github.com/vigor8or/lockserver/pkg/api"
	"github.com/vigor8or/lockserver/pkg/httpx"
	"github.com/vigor8or/lockserver/pkg/metrics"
	"github.com/vigor8or/lockserver/pkg/registry"
	"github.com/vigor8or/lockserver/pkg/types"
)

// Server translates the HTTP surface into registry calls. It holds no lock
// state of its own; every decision routes through the registry.
type Server struct {
	reg    *registry.Registry
	creds  *Credentials
	logger pslog.Logger
}

// NewServer wraps the registry in the HTTP dispatcher. creds may be nil to
// disable authentication.
func NewServer(reg *registry.Registry, creds *Credentials, logger pslog.Logger) *Server {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Server{reg: reg, creds: creds, logger: logger}
}

// Routes returns the handler for the full API surface, authentication
// included.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/locks", s.handleList)
	mux.HandleFunc("GET /v1/locks/{name}", s.handleStatus)
	mux.HandleFunc("PUT /v1/locks/{name}", s.handleAcquire)
	mux.HandleFunc("DELETE /v1/locks/{name}", s.handleRelease)
	mux.HandleFunc("POST /v1/locks/{name}/renew", s.handleRenew)

	return s.withBasicAuth(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAcquire(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req api.AcquireRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	kind, err := types.ParseKind(req.Kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	timer := metrics.NewAcquireTimer(kind.String())
	holder, err := s.reg.Acquire(name, kind)
	timer.ObserveDuration()

	if err != nil {
		metrics.AcquireTotal.WithLabelValues(kind.String(), "conflict").Inc()
		s.logger.Debug("acquire.rejected", "name", name, "kind", kind.String(), "error", err)
		writeDomainError(w, err)
		return
	}

	metrics.AcquireTotal.WithLabelValues(kind.String(), "granted").Inc()
	s.observeGauges()
	s.logger.Debug("acquire.granted", "name", name, "kind", kind.String())
	httpx.WriteJSON(w, http.StatusCreated, api.AcquireResponse{
		Name:      name,
		Kind:      holder.Kind.String(),
		Token:     holder.Token,
		ExpiresAt: holder.ExpiresAt,
	})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	token := r.Header.Get(api.HeaderLockToken)
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", api.HeaderLockToken+" header required")
		return
	}

	if err := s.reg.Release(name, token); err != nil {
		metrics.ReleaseTotal.WithLabelValues("not_found").Inc()
		writeDomainError(w, err)
		return
	}

	metrics.ReleaseTotal.WithLabelValues("ok").Inc()
	s.observeGauges()
	s.logger.Debug("release.ok", "name", name)
	httpx.WriteJSON(w, http.StatusOK, api.ReleaseResponse{Name: name, Released: true})
}

func (s *Server) handleRenew(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	token := r.Header.Get(api.HeaderLockToken)
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", api.HeaderLockToken+" header required")
		return
	}

	expiresAt, err := s.reg.Renew(name, token)
	if err != nil {
		metrics.RenewTotal.WithLabelValues("not_found").Inc()
		writeDomainError(w, err)
		return
	}

	metrics.RenewTotal.WithLabelValues("ok").Inc()
	httpx.WriteJSON(w, http.StatusOK, api.RenewResponse{Name: name, ExpiresAt: expiresAt})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.reg.Status(r.PathValue("name"))
	httpx.WriteJSON(w, http.StatusOK, api.LockStatus{
		Name:        st.Name,
		Kind:        st.Kind.String(),
		HolderCount: st.HolderCount,
	})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.reg.Snapshot()
	out := make(map[string]api.LockStatus, len(snapshot))
	for _, st := range snapshot {
		out[st.Name] = api.LockStatus{
			Name:        st.Name,
			Kind:        st.Kind.String(),
			HolderCount: st.HolderCount,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) observeGauges() {
	stats := s.reg.Stats()
	metrics.HoldersActive.Set(float64(stats.Holders))
	metrics.LocksActive.Set(float64(stats.Locks))
}
