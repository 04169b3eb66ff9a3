package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"altcad-web/internal/service"
	"altcad-web/internal/testutil"
	ws "altcad-web/internal/websocket"
)

func newTestWebSocketHandler(origins []string) *WebSocketHandler {
	svc := service.NewMessageService(
		testutil.NewMockConversationRepository(),
		testutil.NewMockDirectMessageRepository(),
		testutil.NewMockNotificationPublisher(),
	)
	return NewWebSocketHandler(context.Background(), ws.NewHub(), svc, origins)
}

func TestWebSocketHandler_HandleInbox_Unauthenticated(t *testing.T) {
	h := newTestWebSocketHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/ws/inbox", nil)
	w := httptest.NewRecorder()

	h.HandleInbox(w, req)

	testutil.AssertJSONError(t, w, http.StatusUnauthorized, "Not authenticated")
}

func TestWebSocketHandler_HandleInbox_UpgradeRequired(t *testing.T) {
	h := newTestWebSocketHandler(nil)

	// Authenticated plain GET without the upgrade headers
	req := httptest.NewRequest(http.MethodGet, "/ws/inbox", nil)
	req = withSessionAndParams(req, 1, "alice", nil)

	w := httptest.NewRecorder()
	h.HandleInbox(w, req)

	testutil.AssertStatusCode(t, w, http.StatusBadRequest)
}

func TestWebSocketHandler_OriginPolicy(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		allowed bool
	}{
		{"no_origin_header_allowed", []string{"http://localhost:8080"}, "", true},
		{"matching_origin", []string{"http://localhost:8080"}, "http://localhost:8080", true},
		{"mismatched_origin", []string{"http://localhost:8080"}, "http://evil.example", false},
		{"wildcard", []string{"*"}, "http://anywhere.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestWebSocketHandler(tt.origins)

			req := httptest.NewRequest(http.MethodGet, "/ws/inbox", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			got := h.upgrader.CheckOrigin(req)
			testutil.AssertEqual(t, got, tt.allowed)
		})
	}
}
