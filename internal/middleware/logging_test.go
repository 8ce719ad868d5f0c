package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel zapcore.Level
	}{
		{name: "api request at info", path: "/books", status: http.StatusCreated, wantLevel: zapcore.InfoLevel},
		{name: "not found at info", path: "/books/9", status: http.StatusNotFound, wantLevel: zapcore.InfoLevel},
		{name: "health at debug", path: "/health", status: http.StatusOK, wantLevel: zapcore.DebugLevel},
		{name: "ready at debug", path: "/ready", status: http.StatusOK, wantLevel: zapcore.DebugLevel},
		{name: "metrics at debug", path: "/metrics", status: http.StatusOK, wantLevel: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			core, logs := observer.New(zapcore.DebugLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			req = req.WithContext(context.WithValue(req.Context(), RequestIDKey, "req-1"))

			// Act
			Logging(zap.New(core))(handler).ServeHTTP(httptest.NewRecorder(), req)

			// Assert
			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("got %d log entries, want 1", len(entries))
			}
			entry := entries[0]
			if entry.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", entry.Level, tt.wantLevel)
			}
			fields := entry.ContextMap()
			if fields["status"] != int64(tt.status) {
				t.Errorf("status field = %v, want %d", fields["status"], tt.status)
			}
			if fields["path"] != tt.path {
				t.Errorf("path field = %v, want %s", fields["path"], tt.path)
			}
			if fields["request_id"] != "req-1" {
				t.Errorf("request_id field = %v, want req-1", fields["request_id"])
			}
		})
	}
}

func TestRecovery_PassesThrough(t *testing.T) {
	// Arrange
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rr := httptest.NewRecorder()

	// Act
	Recovery(zap.NewNop())(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/books", nil))

	// Assert
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRecovery_RecoversPanic(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "string panic", value: "boom"},
		{name: "error panic", value: errors.New("nil map write")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			core, logs := observer.New(zapcore.ErrorLevel)
			handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic(tt.value)
			})
			rr := httptest.NewRecorder()

			// Act
			Recovery(zap.New(core))(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/books/1", nil))

			// Assert
			if rr.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
			}
			var body map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body["error"] != "Internal server error" {
				t.Errorf("error = %q", body["error"])
			}
			if logs.FilterMessage("panic recovered").Len() != 1 {
				t.Error("panic should be logged once")
			}
		})
	}
}
