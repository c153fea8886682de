package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/internal/metrics"
)

// Path is where the streamable HTTP transport is served.
const Path = "/mcp"

const shutdownTimeout = 5 * time.Second

// HTTPServer exposes a Server over the streamable HTTP transport, next to health and metrics
// endpoints.
type HTTPServer struct {
	server *http.Server
	mcp    *Server
	secret []byte
	logger *log.Logger
}

// NewHTTPServer returns a server listening on addr. When secret is non-empty, the protocol
// endpoint requires an HS256 bearer token signed with it.
func NewHTTPServer(s *Server, addr string, secret []byte) *HTTPServer {
	h := &HTTPServer{
		mcp:    s,
		secret: secret,
		logger: log.With("component", "http"),
	}
	h.server = &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return h
}

// Handler returns the routes served by h.
func (h *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.serveHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	streamable := sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return h.mcp.server
	}, nil)
	protected := r.NewRoute().Subrouter()
	protected.Use(h.authenticate)
	protected.Handle(Path, streamable)
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully. Open event streams end with
// ctx.
func (h *HTTPServer) Start(ctx context.Context) error {
	h.logger.Info("Starting HTTP server on %s", h.server.Addr)
	h.server.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Warning("Forcing shutdown: %s", err)
			return h.server.Close()
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warning("Error writing response: %s", err)
	}
}

func (h *HTTPServer) serveHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "server": h.mcp.Name})
}

func (h *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(h.secret) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			h.unauthorized(w, "missing bearer token")
			return
		}
		_, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
			return h.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			h.logger.Debug("Rejected token from %s: %s", r.RemoteAddr, err)
			h.unauthorized(w, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPServer) unauthorized(w http.ResponseWriter, reason string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="tessie-mcp"`)
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": reason})
}
