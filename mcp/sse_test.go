package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestSSEServer(t *testing.T) *McpHTTPSSEServer {
	t.Helper()
	svc := newTestService(t)
	return NewMcpHTTPSSEServer(zaptest.NewLogger(t), NewServer(svc), svc, "/mcp", nil)
}

func eventNames(body string) []string {
	var names []string
	for _, line := range strings.Split(body, "\n") {
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			names = append(names, name)
		}
	}
	return names
}

func TestHandleValidateSSE(t *testing.T) {
	srv := newTestSSEServer(t)

	body := `{"documentId":"drafts.page-1","documentType":"page","slug":"/Recipes/"}`
	req := httptest.NewRequest(http.MethodPost, "/mcp/sse/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, []string{
		EventStart,
		EventCheckResult,
		EventCheckResult,
		EventResult,
		EventComplete,
	}, eventNames(rec.Body.String()))
}

func TestHandleValidateSSE_BadRequest(t *testing.T) {
	srv := newTestSSEServer(t)

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "{", http.StatusBadRequest},
		{"missing type", http.MethodPost, `{"documentId":"page-1","slug":"/a/"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/mcp/sse/validate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestNewMCPSSEServer_Defaults(t *testing.T) {
	sseServer := NewMCPSSEServer(zaptest.NewLogger(t), newTestService(t), &SSEServerConfig{BufferSize: -1})

	assert.Equal(t, DefaultSSEServerConfig(), sseServer.config)
	assert.Equal(t, map[string]any{
		"connectedClients": 0,
		"bufferSize":       0,
		"serverVersion":    Version,
	}, sseServer.GetStats())
}

func TestStatsAndClients(t *testing.T) {
	srv := newTestSSEServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp/sse/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, Version, stats["serverVersion"])
	assert.EqualValues(t, 0, stats["connectedClients"])

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp/sse/clients", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"connectedClients":0`)
}

func TestBroadcastToSubscribers(t *testing.T) {
	srv := newTestSSEServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/mcp/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	events := make(chan string, 10)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
				events <- name
			}
		}
	}()

	select {
	case name := <-events:
		require.Equal(t, EventConnected, name)
	case <-ctx.Done():
		t.Fatal("no connected event")
	}
	assert.Len(t, srv.GetSSEServer().GetConnectedClients(), 1)

	body := `{"documentId":"page-1","documentType":"page","slug":"/recipes/"}`
	validateResp, err := http.Post(ts.URL+"/mcp/sse/validate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	_ = validateResp.Body.Close()

	select {
	case name := <-events:
		assert.Equal(t, EventResult, name)
	case <-ctx.Done():
		t.Fatal("no broadcast received")
	}
}
