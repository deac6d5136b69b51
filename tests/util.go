package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/offline"
)

// Logger discards everything; pass it wherever a core.Logger is required.
type Logger struct{}

func (Logger) Debug(msg string, args ...interface{}) {}
func (Logger) Info(msg string, args ...interface{})  {}
func (Logger) Warn(msg string, args ...interface{})  {}
func (Logger) Error(msg string, args ...interface{}) {}
func (Logger) Fatal(msg string, args ...interface{}) {}

// NewConfig returns a test configuration pointing the gateway at the
// given upstream API and app origins.
func NewConfig(apiBaseURL, appBaseURL string) *core.Config {
	return &core.Config{
		AppName:  "Darasa",
		Env:      "test",
		Debug:    true,
		TestMode: true,
		Server: core.ServerConfig{
			Addr:            ":0",
			ShutdownTimeout: 5 * time.Second,
		},
		Upstream: core.UpstreamConfig{
			BaseURL:    apiBaseURL,
			AppBaseURL: appBaseURL,
			Timeout:    2 * time.Second,
		},
		Store: core.StoreConfig{
			Path:        ":memory:",
			BusyTimeout: time.Second,
		},
	}
}

// PutRecord stores a raw document, failing the test on error.
func PutRecord(t *testing.T, store offline.Store, collection, id string, data []byte) {
	t.Helper()
	rec := offline.Record{ID: id, Data: data, StoredAt: time.Now().UTC()}
	if err := store.Put(context.Background(), collection, rec); err != nil {
		t.Fatalf("PutRecord() failed: %v", err)
	}
}
