package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func loggerRouter(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(log, "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(http.ErrAbortHandler)
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func TestLoggerSeverityAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := loggerRouter(zap.New(core))

	tests := []struct {
		path      string
		wantLevel zapcore.Level
	}{
		{"/ok", zapcore.InfoLevel},
		{"/missing", zapcore.WarnLevel},
		{"/boom", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			before := logs.Len()
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path+"?x=1", nil))

			entries := logs.All()[before:]
			if len(entries) != 1 {
				t.Fatalf("log entries = %d, want 1", len(entries))
			}
			e := entries[0]
			if e.Level != tt.wantLevel {
				t.Fatalf("level = %s, want %s", e.Level, tt.wantLevel)
			}
			fields := e.ContextMap()
			if fields["path"] != tt.path {
				t.Fatalf("path field = %v", fields["path"])
			}
			if fields["query"] != "x=1" {
				t.Fatalf("query field = %v", fields["query"])
			}
			if _, ok := fields["size"]; !ok {
				t.Fatal("size field missing")
			}
		})
	}
}

func TestLoggerSkipsConfiguredPaths(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := loggerRouter(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if logs.Len() != 0 {
		t.Fatalf("health probe logged %d entries", logs.Len())
	}
}

func TestLoggerRecordsHandlerErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := loggerRouter(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d", len(entries))
	}
	errsField, ok := entries[0].ContextMap()["errors"].([]interface{})
	if !ok || len(errsField) == 0 {
		t.Fatalf("errors field = %v", entries[0].ContextMap()["errors"])
	}
}
