package mcp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-slugs/service"
	"github.com/foomo/contentserver-slugs/service/vo"
)

const (
	EventConnected   = "connected"
	EventKeepalive   = "keepalive"
	EventStart       = "validate_start"
	EventCheckResult = "check_result"
	EventResult      = "validate_result"
	EventError       = "validate_error"
	EventComplete    = "validate_complete"
)

// SSEEvent represents an SSE event structure
type SSEEvent struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func newEvent(name string, data any) SSEEvent {
	return SSEEvent{
		ID:        uuid.NewString(),
		Event:     name,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID       string
	Writer   http.ResponseWriter
	Flusher  http.Flusher
	Done     chan struct{}
	LastSeen time.Time

	mu sync.Mutex
}

// SSEServerConfig holds configuration for the SSE server
type SSEServerConfig struct {
	KeepaliveInterval time.Duration
	BufferSize        int
	ClientTimeout     time.Duration
}

// DefaultSSEServerConfig returns the default configuration for SSE server
func DefaultSSEServerConfig() *SSEServerConfig {
	return &SSEServerConfig{
		KeepaliveInterval: 30 * time.Second,
		BufferSize:        100,
		ClientTimeout:     60 * time.Second,
	}
}

// MCPSSEServer streams slug validations to HTTP clients and fans the
// resulting reports out to every subscriber.
type MCPSSEServer struct {
	logger       *zap.Logger
	service      service.Service
	config       *SSEServerConfig
	clients      map[string]*SSEClient
	clientsMutex sync.RWMutex
	broadcast    chan SSEEvent
}

// NewMCPSSEServer creates a new MCP SSE server and starts its broadcast loop.
func NewMCPSSEServer(logger *zap.Logger, serviceInstance service.Service, config *SSEServerConfig) *MCPSSEServer {
	defaults := DefaultSSEServerConfig()
	if config == nil {
		config = defaults
	}
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = defaults.KeepaliveInterval
	}
	if config.BufferSize < 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.ClientTimeout <= 0 {
		config.ClientTimeout = defaults.ClientTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sseServer := &MCPSSEServer{
		logger:    logger,
		service:   serviceInstance,
		config:    config,
		clients:   make(map[string]*SSEClient),
		broadcast: make(chan SSEEvent, config.BufferSize),
	}

	go sseServer.broadcastLoop()

	return sseServer
}

func (s *MCPSSEServer) snapshot() []*SSEClient {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	clients := make([]*SSEClient, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	return clients
}

func (s *MCPSSEServer) broadcastLoop() {
	for event := range s.broadcast {
		for _, client := range s.snapshot() {
			select {
			case <-client.Done:
				continue
			default:
			}
			if err := s.sendEventToClient(client, event); err != nil {
				s.logger.Error("failed to send event to client", zap.String("clientID", client.ID), zap.Error(err))
				s.removeClient(client.ID)
			}
		}
	}
}

func writeEvent(w io.Writer, event SSEEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, eventJSON); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// sendEventToClient sends an SSE event to a specific client. Events for
// disconnected clients are dropped.
func (s *MCPSSEServer) sendEventToClient(client *SSEClient, event SSEEvent) error {
	client.mu.Lock()
	defer client.mu.Unlock()

	select {
	case <-client.Done:
		return nil
	default:
	}
	if err := writeEvent(client.Writer, event); err != nil {
		return err
	}
	client.Flusher.Flush()
	client.LastSeen = time.Now()
	return nil
}

func (s *MCPSSEServer) addClient(w http.ResponseWriter) *SSEClient {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	client := &SSEClient{
		ID:       uuid.NewString(),
		Writer:   w,
		Flusher:  flusher,
		Done:     make(chan struct{}),
		LastSeen: time.Now(),
	}

	s.clientsMutex.Lock()
	s.clients[client.ID] = client
	s.clientsMutex.Unlock()

	connectEvent := newEvent(EventConnected, map[string]string{
		"clientID": client.ID,
		"message":  "Connected to slug validation stream",
	})
	if err := s.sendEventToClient(client, connectEvent); err != nil {
		s.logger.Error("failed to send connection event", zap.String("clientID", client.ID), zap.Error(err))
		s.removeClient(client.ID)
		return nil
	}

	s.logger.Info("SSE client connected", zap.String("clientID", client.ID))
	return client
}

func (s *MCPSSEServer) removeClient(clientID string) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	if client, exists := s.clients[clientID]; exists {
		close(client.Done)
		delete(s.clients, clientID)
		s.logger.Info("SSE client disconnected", zap.String("clientID", clientID))
	}
}

// broadcastEvent queues an event for all connected clients. It never blocks.
func (s *MCPSSEServer) broadcastEvent(event SSEEvent) {
	select {
	case s.broadcast <- event:
	default:
		s.logger.Warn("broadcast channel full, dropping event", zap.String("eventID", event.ID))
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")
}

// HandleSSE subscribes the caller to broadcast validation results.
func (s *MCPSSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)

	client := s.addClient(w)
	if client == nil {
		return
	}

	// the writer must not be touched once the handler has returned
	defer func() {
		s.removeClient(client.ID)
		client.mu.Lock()
		client.mu.Unlock()
	}()

	ctx := r.Context()
	ticker := time.NewTicker(s.config.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.Done:
			return
		case <-ticker.C:
			keepalive := newEvent(EventKeepalive, map[string]any{"timestamp": time.Now()})
			if err := s.sendEventToClient(client, keepalive); err != nil {
				return
			}
		}
	}
}

// HandleValidateSSE validates the posted slug and streams each failed check
// before the final report.
func (s *MCPSSEServer) HandleValidateSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.service == nil {
		http.Error(w, "slug service not available", http.StatusServiceUnavailable)
		return
	}

	var request ValidateSlugRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if request.DocumentID == "" || request.DocumentType == "" {
		http.Error(w, "documentId and documentType are required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)

	send := func(event SSEEvent) bool {
		if err := writeEvent(w, event); err != nil {
			s.logger.Warn("failed to stream event", zap.String("event", event.Event), zap.Error(err))
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(newEvent(EventStart, request)) {
		return
	}

	doc := &vo.Document{ID: request.DocumentID, Type: request.DocumentType}
	var value *vo.Slug
	if request.Slug != "" {
		value = vo.NewSlug(request.Slug)
	}
	report, err := s.service.ValidateSlug(r.Context(), doc, value)
	if err != nil {
		send(newEvent(EventError, map[string]string{"error": err.Error()}))
		return
	}

	for _, issue := range report.Issues {
		if !send(newEvent(EventCheckResult, issue)) {
			return
		}
	}

	result := newEvent(EventResult, ValidateSlugResponse{Report: report})
	if !send(result) {
		return
	}
	s.broadcastEvent(result)

	send(newEvent(EventComplete, map[string]string{"status": "completed"}))
}

// GetConnectedClients returns information about connected clients
func (s *MCPSSEServer) GetConnectedClients() []map[string]any {
	clients := s.snapshot()
	out := make([]map[string]any, 0, len(clients))
	for _, client := range clients {
		client.mu.Lock()
		lastSeen := client.LastSeen
		client.mu.Unlock()
		out = append(out, map[string]any{
			"id":        client.ID,
			"lastSeen":  lastSeen,
			"connected": time.Since(lastSeen) < s.config.ClientTimeout,
		})
	}
	return out
}

// GetStats returns server statistics
func (s *MCPSSEServer) GetStats() map[string]any {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	return map[string]any{
		"connectedClients": len(s.clients),
		"bufferSize":       len(s.broadcast),
		"serverVersion":    Version,
	}
}
