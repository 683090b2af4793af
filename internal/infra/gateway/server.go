package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"conduit/internal/domain"
)

// Server is the thin HTTP surface over the bridge core: discovery, health
// and execute. Presentation only; every decision it reports comes straight
// from the SimulationAnnotation fields.
type Server struct {
	conns        map[string]*domain.ServerConnection
	router       Router
	configPath   string
	configExists bool
	logger       *zap.Logger
}

// Router is the execute entry point the gateway forwards to.
type Router interface {
	Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error)
}

type Options struct {
	Connections  map[string]*domain.ServerConnection
	Router       Router
	ConfigPath   string
	ConfigExists bool
	Logger       *zap.Logger
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		conns:        opts.Connections,
		router:       opts.Router,
		configPath:   opts.ConfigPath,
		configExists: opts.ConfigExists,
		logger:       logger.Named("gateway"),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /tools", s.handleTools)
	mux.HandleFunc("POST /execute/{server}/{tool}", s.handleExecute)
	return mux
}

// Serve runs the gateway until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("gateway failed to start: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("gateway shutdown error", zap.Error(err))
			return err
		}
		s.logger.Info("gateway stopped")
		return nil
	}
}

type healthResponse struct {
	Status       string `json:"status"`
	TotalServers int    `json:"totalServers"`
	ReadyServers int    `json:"readyServers"`
	ConfigPath   string `json:"configPath"`
	ConfigExists bool   `json:"configExists"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	total := len(s.conns)
	ready := 0
	for _, conn := range s.conns {
		if conn.Status == domain.StatusReady {
			ready++
		}
	}

	status := "healthy"
	if ready < total || total == 0 {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:       status,
		TotalServers: total,
		ReadyServers: ready,
		ConfigPath:   s.configPath,
		ConfigExists: s.configExists,
	})
}

type serverTools struct {
	Status domain.ConnectionStatus `json:"status"`
	Tools  []domain.Tool           `json:"tools"`
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	response := make(map[string]serverTools, len(s.conns))
	for name, conn := range s.conns {
		tools := conn.Tools
		if tools == nil {
			tools = []domain.Tool{}
		}
		response[name] = serverTools{Status: conn.Status, Tools: tools}
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	req := domain.ExecutionRequest{
		Server: r.PathValue("server"),
		Tool:   r.PathValue("tool"),
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read request body: %v", err), "")
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req.Args); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), "")
			return
		}
	}

	result, err := s.router.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrServerNotFound),
			errors.Is(err, domain.ErrServerNotReady),
			errors.Is(err, domain.ErrToolNotFound):
			writeError(w, http.StatusNotFound, err.Error(), "GET /tools lists available servers and their tools")
		default:
			writeError(w, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}

	if result.Simulation.Simulated {
		w.Header().Set("X-Conduit-Mode", "simulation")
		w.Header().Set("X-Conduit-Server-Status", string(result.Simulation.ServerStatus))
		if result.Simulation.Warning != "" {
			w.Header().Set("X-Conduit-Warning", result.Simulation.Warning)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, hint string) {
	writeJSON(w, status, errorResponse{Error: message, Hint: hint})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
