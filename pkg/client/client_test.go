package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealer-service/pkg/client"
)

type fakeAPI struct {
	mu           sync.Mutex
	validToken   string
	refreshCalls int32
	privateHits  int32
	// refreshDelay holds the refresh response open so concurrent callers can
	// join the in-flight refresh.
	refreshDelay time.Duration
	// barrier, when set, blocks private requests carrying a stale token until
	// enough of them have arrived.
	barrier     *sync.WaitGroup
	failRefresh bool
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.refreshCalls, 1)
		if f.refreshDelay > 0 {
			time.Sleep(f.refreshDelay)
		}
		if f.failRefresh {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid refresh token"})
			return
		}
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.validToken = "rotated-" + body.RefreshToken
		token := f.validToken
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"accessToken": token, "refreshToken": "next-" + body.RefreshToken},
		})
	})

	mux.HandleFunc("/private/resource", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.privateHits, 1)
		f.mu.Lock()
		valid := "Bearer " + f.validToken
		f.mu.Unlock()
		if r.Header.Get("Authorization") != valid {
			if f.barrier != nil {
				f.barrier.Done()
				f.barrier.Wait()
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"token": r.Header.Get("Authorization")},
		})
	})

	mux.HandleFunc("/private/always-401", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.privateHits, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
	})

	return mux
}

func newTestClient(t *testing.T, baseURL string, onUnauthenticated func()) *client.Client {
	t.Helper()
	storage := client.NewMemoryStorage()
	require.NoError(t, storage.Set(client.StorageKeyAccessToken, "stale-access"))
	require.NoError(t, storage.Set(client.StorageKeyRefreshToken, "refresh-1"))

	c, err := client.New(client.Config{
		BaseURL:           baseURL,
		Storage:           storage,
		OnUnauthenticated: onUnauthenticated,
	})
	require.NoError(t, err)
	return c
}

func TestRefreshAndRetryUsesNewToken(t *testing.T) {
	api := &fakeAPI{validToken: "server-only-token"}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	require.Equal(t, "stale-access", c.Session().AccessToken())

	var out struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	err := c.Do(context.Background(), http.MethodGet, "/private/resource", nil, &out)
	require.NoError(t, err)

	// The retried request carried the token minted by the refresh, not the
	// one captured at original issuance.
	require.Equal(t, "Bearer rotated-refresh-1", out.Data.Token)
	require.Equal(t, "rotated-refresh-1", c.Session().AccessToken())
	require.Equal(t, "next-refresh-1", c.Session().RefreshToken())
	require.EqualValues(t, 1, atomic.LoadInt32(&api.refreshCalls))
	require.EqualValues(t, 2, atomic.LoadInt32(&api.privateHits))
}

func TestSingleRetryPerRequest(t *testing.T) {
	api := &fakeAPI{validToken: "whatever"}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	err := c.Do(context.Background(), http.MethodGet, "/private/always-401", nil, nil)

	var httpErr *client.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Status)
	// One refresh cycle, one retry, then the second 401 surfaces as-is.
	require.EqualValues(t, 1, atomic.LoadInt32(&api.refreshCalls))
	require.EqualValues(t, 2, atomic.LoadInt32(&api.privateHits))
}

func TestPublicRouteNeverRefreshes(t *testing.T) {
	api := &fakeAPI{}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	err := c.Do(context.Background(), http.MethodPost, "/auth/login",
		map[string]string{"email": "a@b.com", "password": "nope"}, nil)

	var httpErr *client.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Status)
	require.Equal(t, "invalid credentials", httpErr.Message)
	require.EqualValues(t, 0, atomic.LoadInt32(&api.refreshCalls))
}

func TestRefreshFailureClearsSession(t *testing.T) {
	api := &fakeAPI{validToken: "server-only-token", failRefresh: true}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	var redirects int32
	c := newTestClient(t, server.URL, func() { atomic.AddInt32(&redirects, 1) })

	err := c.Do(context.Background(), http.MethodGet, "/private/resource", nil, nil)

	var refreshErr *client.RefreshError
	require.ErrorAs(t, err, &refreshErr)
	require.False(t, c.Session().IsAuthenticated())
	require.Empty(t, c.Session().AccessToken())
	require.Empty(t, c.Session().RefreshToken())
	require.EqualValues(t, 1, atomic.LoadInt32(&redirects))

	// Further failures must not re-fire the redirect.
	err = c.Do(context.Background(), http.MethodGet, "/private/resource", nil, nil)
	require.Error(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&redirects))
}

func TestCanceledRefreshKeepsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server can observe the client disconnect and
		// cancel the request context; with an unread body it never would.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})
	mux.HandleFunc("/private/resource", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var redirects int32
	c := newTestClient(t, server.URL, func() { atomic.AddInt32(&redirects, 1) })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := c.Do(ctx, http.MethodGet, "/private/resource", nil, nil)

	var refreshErr *client.RefreshError
	require.ErrorAs(t, err, &refreshErr)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// Abandoning the request must not end the session.
	require.True(t, c.Session().IsAuthenticated())
	require.Equal(t, "stale-access", c.Session().AccessToken())
	require.Zero(t, atomic.LoadInt32(&redirects))
}

func TestConcurrentRefreshCoalesces(t *testing.T) {
	barrier := &sync.WaitGroup{}
	barrier.Add(2)
	api := &fakeAPI{
		validToken:   "server-only-token",
		refreshDelay: 150 * time.Millisecond,
		barrier:      barrier,
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	tokens := make([]string, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out struct {
				Data struct {
					Token string `json:"token"`
				} `json:"data"`
			}
			errs[i] = c.Do(context.Background(), http.MethodGet, "/private/resource", nil, &out)
			tokens[i] = out.Data.Token
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Equal(t, tokens[0], tokens[1])
	// Both 401s shared one in-flight refresh.
	require.EqualValues(t, 1, atomic.LoadInt32(&api.refreshCalls))
}

func TestMalformedRefreshResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{}})
	})
	mux.HandleFunc("/private/resource", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	err := c.Do(context.Background(), http.MethodGet, "/private/resource", nil, nil)

	var refreshErr *client.RefreshError
	require.ErrorAs(t, err, &refreshErr)
	var malformed *client.MalformedResponseError
	require.ErrorAs(t, refreshErr.Err, &malformed)
}

func TestNetworkErrorSurfaces(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", nil)

	err := c.Do(context.Background(), http.MethodGet, "/auth/login", nil, nil)

	var netErr *client.NetworkError
	require.ErrorAs(t, err, &netErr)
}
