package bot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	h.text("/start")
	r := NewRouter(h.handler, "")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Sessions != 1 {
		t.Fatalf("unexpected health body %+v", body)
	}
}

func TestWebhookRequiresSecret(t *testing.T) {
	h := newHarness(t)
	r := NewRouter(h.handler, "s3cret")
	payload := `{"update_id":1,"message":{"message_id":1,"chat":{"id":5},"text":"/start"}}`

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(payload))
	req.Header.Set(secretHeader, "wrong")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if h.sessions.Len() != 0 {
		t.Fatal("rejected webhook must not start a session")
	}

	req = httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(payload))
	req.Header.Set(secretHeader, "s3cret")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if h.sessions.Len() != 1 {
		t.Fatal("webhook /start should create a session")
	}
}

func TestWebhookRejectsBadJSON(t *testing.T) {
	h := newHarness(t)
	r := NewRouter(h.handler, "")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{")))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
