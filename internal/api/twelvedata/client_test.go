package twelvedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seriesBody = `{
  "meta": {"symbol": "USD/JPY", "interval": "1day"},
  "values": [
    {"datetime": "2026-01-09", "open": "150.10", "high": "150.90", "low": "149.80", "close": "150.4567"},
    {"datetime": "2026-01-08", "open": "149.50", "high": "150.20", "low": "149.30", "close": "150.10"}
  ],
  "status": "ok"
}`

type fakeUpstream struct {
	calls   int32
	failing atomic.Bool
}

func (f *fakeUpstream) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.calls, 1)
		assert.Equal(t, "/time_series", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		if f.failing.Load() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(seriesBody))
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(ClientOptions{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		Symbol:          "USD/JPY",
		RatePrecision:   3,
		CacheTTL:        5 * time.Minute,
		RequestTimeout:  time.Second,
		RequestsPerSec:  100,
		MaxRetries:      1,
		MaxRetryTimeout: time.Second,
	})
}

func TestFetchRateRoundsLatestClose(t *testing.T) {
	up := &fakeUpstream{}
	srv := httptest.NewServer(up.handler(t))
	defer srv.Close()

	c := newTestClient(srv.URL)
	q := c.FetchRate(context.Background())

	assert.False(t, q.Stale)
	assert.Equal(t, "150.457", q.Rate.String())
	assert.Equal(t, "USD/JPY", q.Symbol)
}

func TestFetchSeriesIsOrderedAndCached(t *testing.T) {
	up := &fakeUpstream{}
	srv := httptest.NewServer(up.handler(t))
	defer srv.Close()

	c := newTestClient(srv.URL)
	first := c.FetchSeries(context.Background(), 60, "1day")
	second := c.FetchSeries(context.Background(), 60, "1day")

	require.Len(t, first, 2)
	assert.Equal(t, "2026-01-08", first[0].Datetime)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&up.calls))
}

func TestFetchRateServesLastKnownOnFailure(t *testing.T) {
	up := &fakeUpstream{}
	srv := httptest.NewServer(up.handler(t))
	defer srv.Close()

	clock := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	c := newTestClient(srv.URL)
	c.now = func() time.Time { return clock }

	fresh := c.FetchRate(context.Background())
	require.False(t, fresh.Stale)

	up.failing.Store(true)
	clock = clock.Add(10 * time.Minute)

	stale := c.FetchRate(context.Background())
	assert.True(t, stale.Stale)
	assert.True(t, fresh.Rate.Equal(stale.Rate))
}

func TestFetchRateWithoutHistoryIsZero(t *testing.T) {
	up := &fakeUpstream{}
	up.failing.Store(true)
	srv := httptest.NewServer(up.handler(t))
	defer srv.Close()

	c := newTestClient(srv.URL)
	q := c.FetchRate(context.Background())

	assert.True(t, q.Stale)
	assert.True(t, q.Rate.IsZero())
	assert.Empty(t, c.FetchSeries(context.Background(), 5, "1h"))
	assert.Equal(t, 0.0, c.FetchIndicator(context.Background(), "VIX"))
}

func TestGetCandlesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":400,"message":"invalid symbol"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetCandles(context.Background(), "XXX", "1day", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid symbol")
}
