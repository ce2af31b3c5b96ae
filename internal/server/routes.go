package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/jsonrpc"
)

const (
	healthPath  = "/health"
	toolsPath   = "/tools"
	ssePath     = "/sse"
	messagePath = "/message"
	mcpPath     = "/mcp"
)

// Health is the body of GET /health.
type Health struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	Service      string `json:"service"`
	Version      string `json:"version"`
	ReadOnlyMode bool   `json:"readOnlyMode"`
	Sessions     int    `json:"sessions"`
}

// ToolListing is the body of GET /tools.
type ToolListing struct {
	Tools []jsonrpc.ToolInfo `json:"tools"`
	Count int                `json:"count"`
}

func (s *Server) routes(rpc http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+healthPath, s.serveHealth)
	mux.HandleFunc("GET "+toolsPath, s.serveTools)
	mux.HandleFunc(ssePath, s.sse.ServeSSE)
	mux.HandleFunc(messagePath, s.sse.ServeMessage)
	mux.Handle(mcpPath, rpc)

	return logRequests(s.logger.WithGroup("http"), cors(mux))
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Health{
		Status:       "healthy",
		Timestamp:    s.now().UTC().Format(time.RFC3339Nano),
		Service:      ServiceName,
		Version:      s.version,
		ReadOnlyMode: s.serverConfig.ReadOnlyMode,
		Sessions:     s.sse.Len(),
	})
}

func (s *Server) serveTools(w http.ResponseWriter, _ *http.Request) {
	listing := jsonrpc.ListTools(s.registry)
	writeJSON(w, http.StatusOK, ToolListing{Tools: listing.Tools, Count: len(listing.Tools)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
