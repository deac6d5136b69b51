package webapisvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/offline"
)

func testClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	conf := &core.Config{
		Upstream: core.UpstreamConfig{BaseURL: srv.URL, Timeout: 2 * time.Second},
	}
	return NewClient(conf, func() string { return token }), srv
}

func TestClient_Get(t *testing.T) {
	var gotAuth string
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[{"id":1,"title":"Algebra"}]`))
	}, "tok-abc")

	data, err := c.Get(context.Background(), "/courses/public/all")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	assert.JSONEq(t, `[{"id":1,"title":"Algebra"}]`, string(data))
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestClient_Get_errorClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
	}{
		{name: "server error", status: 500, wantStatus: 500},
		{name: "not found", status: 404, wantStatus: 404},
		{name: "unauthorized", status: 401, wantStatus: 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}, "")

			_, err := c.Get(context.Background(), "/x")
			nerr, ok := err.(*core.NetworkError)
			if !ok {
				t.Fatalf("Get() error = %T, want NetworkError", err)
			}
			assert.Equal(t, tt.wantStatus, nerr.StatusCode)
		})
	}
}

func TestClient_Get_transportFailure(t *testing.T) {
	c, srv := testClient(t, func(http.ResponseWriter, *http.Request) {}, "")
	srv.Close()

	_, err := c.Get(context.Background(), "/x")
	if !core.IsNetworkError(err) {
		t.Fatalf("Get() error = %v, want NetworkError", err)
	}
	if nerr := err.(*core.NetworkError); nerr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for a request that never completed", nerr.StatusCode)
	}
}

func TestClient_Dispatch_usesCapturedToken(t *testing.T) {
	var gotAuth, gotIdem, gotBody string
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get(HeaderIdempotencyKey)
		var buf [256]byte
		n, _ := r.Body.Read(buf[:])
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}, "current-token")

	action := offline.QueuedAction{
		ID:        "123-abc",
		Kind:      offline.KindQuizSubmission,
		Endpoint:  "/quiz/submit",
		Method:    http.MethodPost,
		Payload:   json.RawMessage(`{"quizId":9}`),
		AuthToken: "captured-token",
	}
	if err := c.Dispatch(context.Background(), action); err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}

	// the token captured at enqueue time, not the current one
	assert.Equal(t, "Bearer captured-token", gotAuth)
	assert.Equal(t, "123-abc", gotIdem)
	assert.JSONEq(t, `{"quizId":9}`, gotBody)
}

func TestClient_Dispatch_failurePropagates(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, "")

	err := c.Dispatch(context.Background(), offline.QueuedAction{
		ID: "1", Endpoint: "/quiz/submit", Method: http.MethodPost, AuthToken: "stale",
	})
	nerr, ok := err.(*core.NetworkError)
	if !ok {
		t.Fatalf("Dispatch() error = %T, want NetworkError", err)
	}
	assert.Equal(t, http.StatusUnauthorized, nerr.StatusCode)
}
