package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/homeshopping/homeshopping-backend/pkg/logger"
)

func TestRequestIDTagsLogs(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	handler := RequestID(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logg.Info(r.Context(), "checkout.handled")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.Header.Set(requestIDHeader, "req-42")
	req.Header.Set(idempotencyHeader, " order-1 ")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-42" || entry["idempotency_key"] != "order-1" {
		t.Fatalf("unexpected log fields %v", entry)
	}
}

func TestRequestIDReplacesUnusableIDs(t *testing.T) {
	for _, inbound := range []string{"", "   ", strings.Repeat("x", maxRequestIDLen+1)} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/basket", nil)
		req.Header.Set(requestIDHeader, inbound)
		rec := httptest.NewRecorder()
		RequestID(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

		got := rec.Header().Get(requestIDHeader)
		if got == "" || got == inbound {
			t.Fatalf("inbound %q: expected a fresh id, got %q", inbound, got)
		}
	}
}
