package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ravenhq/ravenauth/credstore"
)

const (
	testRefreshPath = "/api/v1/auth/refresh-token"
	testProbePath   = "/api/v1/auth/current-user"
	testDataPath    = "/api/v1/budgets"
)

func writeEnvelope(w http.ResponseWriter, status int, data any, message string, success bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":    data,
		"message": message,
		"meta":    map[string]any{"success": success},
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": message})
}

func newTestClient(t *testing.T, baseURL string, creds credstore.Store, opts ...Option) *Client {
	t.Helper()
	client, err := New(Config{
		BaseURL:          baseURL,
		RefreshPath:      testRefreshPath,
		SessionProbePath: testProbePath,
		AppVersion:       "1.2.3",
		ClientID:         "client-test",
	}, creds, opts...)
	if err != nil {
		t.Fatalf("transport.New failed: %v", err)
	}
	return client
}

func TestSendDecodesEnvelopeAndAttachesHeaders(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		writeEnvelope(w, http.StatusOK, map[string]any{"id": 1, "name": "Groceries"}, "ok", true)
	}))
	defer srv.Close()

	creds := credstore.NewMemoryStore()
	client := newTestClient(t, srv.URL, creds)

	resp, err := client.Send(context.Background(), http.MethodGet, testDataPath, nil, Params{"limit": 10})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if !resp.Envelope.Meta.Success {
		t.Fatalf("expected success envelope")
	}

	var budget struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := resp.DecodeData(&budget); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if budget.Name != "Groceries" {
		t.Fatalf("unexpected data %+v", budget)
	}

	if gotHeaders.Get(HeaderAppVersion) != "1.2.3" {
		t.Fatalf("missing app version header")
	}
	if gotHeaders.Get(HeaderClientID) != "client-test" {
		t.Fatalf("missing client id header")
	}
	if gotHeaders.Get(HeaderRequestID) == "" {
		t.Fatalf("missing request id header")
	}
	if gotHeaders.Get(HeaderCredential) != "" {
		t.Fatalf("credential header must be absent without a stored credential")
	}
}

func TestSendAttachesStoredCredential(t *testing.T) {
	var gotCred string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCred = r.Header.Get(HeaderCredential)
		writeEnvelope(w, http.StatusOK, map[string]any{}, "ok", true)
	}))
	defer srv.Close()

	creds := credstore.NewMemoryStore()
	_ = creds.Set(context.Background(), "cred-1")
	client := newTestClient(t, srv.URL, creds)

	if _, err := client.Send(context.Background(), http.MethodGet, testDataPath, nil, nil); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotCred != "cred-1" {
		t.Fatalf("expected credential header cred-1, got %q", gotCred)
	}
}

func TestSendClassifiesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("mode") {
		case "message":
			writeError(w, http.StatusUnprocessableEntity, "Budget name already taken")
		case "garbage":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{not json"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, credstore.NewMemoryStore())
	ctx := context.Background()

	_, err := client.Send(ctx, http.MethodPost, testDataPath, nil, Params{"mode": "message"})
	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %T: %v", err, err)
	}
	if serverErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", serverErr.Status)
	}
	if serverErr.Message != "Budget name already taken" {
		t.Fatalf("message must come verbatim from the body, got %q", serverErr.Message)
	}

	_, err = client.Send(ctx, http.MethodPost, testDataPath, nil, Params{"mode": "fallback"})
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %T: %v", err, err)
	}
	if serverErr.Message != fallbackServerMessage {
		t.Fatalf("expected generic fallback, got %q", serverErr.Message)
	}

	_, err = client.Send(ctx, http.MethodGet, testDataPath, nil, Params{"mode": "garbage"})
	var unexpected *UnexpectedError
	if !errors.As(err, &unexpected) {
		t.Fatalf("expected UnexpectedError for malformed envelope, got %T: %v", err, err)
	}
}

func TestSendNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	client := newTestClient(t, srv.URL, credstore.NewMemoryStore())
	srv.Close()

	_, err := client.Send(context.Background(), http.MethodGet, testDataPath, nil, nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
}

func TestAuthErrorMatchesErrUnauthorized(t *testing.T) {
	err := error(&AuthError{Message: "Invalid credentials", Path: "/api/v1/auth/login"})

	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("AuthError must match ErrUnauthorized via errors.Is")
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Message != "Invalid credentials" {
		t.Fatalf("errors.As lost the concrete type: %v", err)
	}
}

// refreshBackend is a fake Raven backend whose protected endpoint accepts
// only the rotated credential.
type refreshBackend struct {
	mu             sync.Mutex
	refreshCalls   int
	protectedCalls int
	probeCalls     int
	refresh401     bool
	rotated        string
}

func (b *refreshBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(testRefreshPath, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.refreshCalls++
		fail := b.refresh401
		b.mu.Unlock()
		if fail {
			writeError(w, http.StatusUnauthorized, "refresh token expired")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]string{"token": b.rotated}, "rotated", true)
	})
	mux.HandleFunc(testProbePath, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.probeCalls++
		b.mu.Unlock()
		if r.Header.Get(HeaderCredential) != b.rotated {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"user": map[string]any{"id": 1}}, "ok", true)
	})
	mux.HandleFunc(testDataPath, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.protectedCalls++
		b.mu.Unlock()
		if r.Header.Get(HeaderCredential) != b.rotated {
			writeError(w, http.StatusUnauthorized, "credential expired")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"items": []int{1, 2}}, "ok", true)
	})
	return mux
}

func (b *refreshBackend) counts() (refresh, protected int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls, b.protectedCalls
}

func TestRefreshRotatesAndReplaysExactlyOnce(t *testing.T) {
	backend := &refreshBackend{rotated: "fresh-cred"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	creds := credstore.NewMemoryStore()
	_ = creds.Set(context.Background(), "stale-cred")

	expired := 0
	client := newTestClient(t, srv.URL, creds, WithSessionExpiredHandler(func() { expired++ }))

	resp, err := client.Send(context.Background(), http.MethodGet, testDataPath, nil, nil)
	if err != nil {
		t.Fatalf("send should succeed after refresh, got %v", err)
	}
	if !resp.Envelope.Meta.Success {
		t.Fatalf("expected success envelope after replay")
	}

	refresh, protected := backend.counts()
	if refresh != 1 {
		t.Fatalf("expected exactly one refresh call, got %d", refresh)
	}
	if protected != 2 {
		t.Fatalf("expected original request plus one replay, got %d calls", protected)
	}
	if expired != 0 {
		t.Fatalf("successful refresh must not signal session expiry")
	}

	cred, _ := creds.Get(context.Background())
	if cred != "fresh-cred" {
		t.Fatalf("credential must be rotated, got %q", cred)
	}
}

func TestConcurrent401RejectsSecondCaller(t *testing.T) {
	refreshStarted := make(chan struct{})
	refreshRelease := make(chan struct{})

	var refreshCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc(testRefreshPath, func(w http.ResponseWriter, _ *http.Request) {
		if refreshCalls.Add(1) == 1 {
			close(refreshStarted)
			<-refreshRelease
		}
		writeEnvelope(w, http.StatusOK, map[string]string{"token": "fresh-cred"}, "rotated", true)
	})
	mux.HandleFunc(testDataPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderCredential) != "fresh-cred" {
			writeError(w, http.StatusUnauthorized, "credential expired")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{}, "ok", true)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := credstore.NewMemoryStore()
	_ = creds.Set(context.Background(), "stale-cred")
	client := newTestClient(t, srv.URL, creds)

	winnerDone := make(chan error, 1)
	go func() {
		_, err := client.Send(context.Background(), http.MethodGet, testDataPath, nil, nil)
		winnerDone <- err
	}()

	// Wait until the winner holds the refresh lock, then race a second 401.
	<-refreshStarted
	_, loserErr := client.Send(context.Background(), http.MethodGet, testDataPath, nil, nil)

	var authErr *AuthError
	if !errors.As(loserErr, &authErr) {
		t.Fatalf("loser must be rejected with its original AuthError, got %T: %v", loserErr, loserErr)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("loser must not trigger a second refresh, got %d", got)
	}

	close(refreshRelease)
	if err := <-winnerDone; err != nil {
		t.Fatalf("winner should succeed after refresh, got %v", err)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one refresh in total, got %d", got)
	}
}

func TestRefreshEndpoint401ExpiresSessionOnce(t *testing.T) {
	backend := &refreshBackend{rotated: "never-issued", refresh401: true}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	creds := credstore.NewMemoryStore()
	_ = creds.Set(context.Background(), "stale-cred")

	expired := 0
	client := newTestClient(t, srv.URL, creds, WithSessionExpiredHandler(func() { expired++ }))

	_, err := client.Send(context.Background(), http.MethodGet, testDataPath, nil, nil)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected original AuthError, got %T: %v", err, err)
	}
	if authErr.Message != "credential expired" {
		t.Fatalf("caller must see the original error, got %q", authErr.Message)
	}

	if expired != 1 {
		t.Fatalf("expected exactly one session-expired signal, got %d", expired)
	}
	refresh, _ := backend.counts()
	if refresh != 1 {
		t.Fatalf("the refresh endpoint must never be retried, got %d calls", refresh)
	}
	if cred, _ := creds.Get(context.Background()); cred != "" {
		t.Fatalf("credential must be cleared on expiry, got %q", cred)
	}
}

func TestProbe401IsQuiet(t *testing.T) {
	backend := &refreshBackend{rotated: "some-cred"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	creds := credstore.NewMemoryStore()
	_ = creds.Set(context.Background(), "stale-cred")

	expired := 0
	client := newTestClient(t, srv.URL, creds, WithSessionExpiredHandler(func() { expired++ }))

	_, err := client.Send(context.Background(), http.MethodGet, testProbePath, nil, nil)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError from probe, got %T: %v", err, err)
	}

	refresh, _ := backend.counts()
	if refresh != 0 {
		t.Fatalf("probe 401 must not trigger refresh, got %d calls", refresh)
	}
	if expired != 0 {
		t.Fatalf("probe 401 must not signal session expiry, got %d", expired)
	}
}

func TestNoCredentialMeansNoRefresh(t *testing.T) {
	backend := &refreshBackend{rotated: "some-cred"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client := newTestClient(t, srv.URL, credstore.NewMemoryStore())

	_, err := client.Send(context.Background(), http.MethodGet, testDataPath, nil, nil)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}

	refresh, protected := backend.counts()
	if refresh != 0 {
		t.Fatalf("refresh must require a stored credential, got %d calls", refresh)
	}
	if protected != 1 {
		t.Fatalf("request must not be replayed, got %d calls", protected)
	}
}

func TestReplay401IsNotReintercepted(t *testing.T) {
	var refreshCalls, protectedCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc(testRefreshPath, func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		writeEnvelope(w, http.StatusOK, map[string]string{"token": "fresh-cred"}, "rotated", true)
	})
	mux.HandleFunc(testDataPath, func(w http.ResponseWriter, _ *http.Request) {
		protectedCalls.Add(1)
		// Backend keeps rejecting even the rotated credential.
		writeError(w, http.StatusUnauthorized, "still unauthorized")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := credstore.NewMemoryStore()
	_ = creds.Set(context.Background(), "stale-cred")
	client := newTestClient(t, srv.URL, creds)

	_, err := client.Send(context.Background(), http.MethodGet, testDataPath, nil, nil)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}

	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("expected one refresh, got %d", got)
	}
	if got := protectedCalls.Load(); got != 2 {
		t.Fatalf("a replayed request must fail without a second retry, got %d calls", got)
	}
}
