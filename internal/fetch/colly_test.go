package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spectralml/webbook-crawler/internal/gate"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// TestCollyFetchSuccess checks a 2xx response yields the decoded body.
func TestCollyFetchSuccess(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cgi/formula/C6H6", r.URL.Path)
		_, _ = w.Write([]byte("<title>Benzene</title>"))
	})

	client, err := NewColly(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	body, err := client.Fetch(context.Background(), "/cgi/formula/C6H6")
	require.NoError(t, err)
	require.Equal(t, "<title>Benzene</title>", body)
}

// TestCollyFetchHTTPError checks a non-2xx status surfaces as a typed
// Failure carrying the status code.
func TestCollyFetchHTTPError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	client, err := NewColly(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "/missing")
	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, "/missing", failure.Href)
	require.Equal(t, http.StatusNotFound, failure.StatusCode)
}

// TestCollyFetchTimeout checks a slow server turns into a typed Failure via
// the request timeout.
func TestCollyFetchTimeout(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	})

	client, err := NewColly(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "/slow")
	var failure *Failure
	require.True(t, errors.As(err, &failure))
}

// TestCollyFetchContextCanceled checks caller-side cancellation is reported
// as a typed Failure wrapping the context error.
func TestCollyFetchContextCanceled(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
		_, _ = w.Write([]byte("late"))
	})

	client, err := NewColly(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Fetch(ctx, "/slow")
	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestNewCollyRequiresBaseURL rejects an empty base URL at construction.
func TestNewCollyRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewColly(Config{})
	require.Error(t, err)
}

// TestGatedFetchSharesLimiter drives many fetches through a small gate and
// verifies the server never sees more concurrent requests than the capacity.
func TestGatedFetchSharesLimiter(t *testing.T) {
	t.Parallel()

	const capacity = 3

	var (
		mu        sync.Mutex
		inFlight  int
		highWater int
	)
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		inFlight++
		if inFlight > highWater {
			highWater = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		_, _ = w.Write([]byte("ok"))
	})

	client, err := NewColly(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	gated := NewGated(client, gate.New(capacity))

	var wg sync.WaitGroup
	for i := 0; i < 24; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ferr := gated.Fetch(context.Background(), "/page")
			require.NoError(t, ferr)
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, highWater, capacity)
}

// TestGatedFetchWrapsGateErrors ensures a canceled acquire still produces a
// typed Failure.
func TestGatedFetchWrapsGateErrors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	client, err := NewColly(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	g := gate.New(1)
	require.NoError(t, g.Acquire(context.Background()))
	defer g.Release()

	gated := NewGated(client, g)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = gated.Fetch(ctx, "/page")
	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, "/page", failure.Href)
}
