package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpotSim/internal/metrics"
)

var baseTime = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// klineRows builds Binance-shaped kline rows with closes rising by step.
func klineRows(count int, first, step float64) [][]any {
	rows := make([][]any, count)
	for i := 0; i < count; i++ {
		open := baseTime.Add(time.Duration(i) * time.Hour)
		c := first + step*float64(i)
		rows[i] = []any{
			open.UnixMilli(),
			fmt.Sprintf("%.8f", c),
			fmt.Sprintf("%.8f", c+1),
			fmt.Sprintf("%.8f", c-1),
			fmt.Sprintf("%.8f", c),
			"1000.0",
			open.Add(time.Hour - time.Millisecond).UnixMilli(),
			"120000.0", 42, "500.0", "60000.0", "0",
		}
	}
	return rows
}

type fakeExchange struct {
	*httptest.Server
	hits atomic.Int64
}

func newExchange(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *fakeExchange {
	t.Helper()
	ex := &fakeExchange{}
	ex.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ex.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(ex.Close)
	return ex
}

func jsonHandler(payload any) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func statusHandler(code int) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"code":-1,"msg":"boom"}`, code)
	}
}

func TestKlineFetcher_FallsBackOnEmptyList(t *testing.T) {
	first := newExchange(t, jsonHandler([][]any{}))
	second := newExchange(t, jsonHandler(klineRows(200, 100, 0.1)))

	f := NewKlineFetcher([]Endpoint{
		{Name: "first", BaseURL: first.URL},
		{Name: "second", BaseURL: second.URL},
	})
	series := f.FetchPrices(context.Background(), "BTCUSDT", 200)

	require.Equal(t, 200, series.Len())
	assert.Equal(t, "BTCUSDT", series.Symbol)
	assert.Equal(t, int64(1), first.hits.Load())
	assert.Equal(t, int64(1), second.hits.Load())
	assert.True(t, series.Points[0].Time.Equal(baseTime))
	assert.Equal(t, "100", series.Points[0].Close.String())
	assert.NoError(t, series.Validate())
}

func TestKlineFetcher_FirstSuccessWins(t *testing.T) {
	first := newExchange(t, jsonHandler(klineRows(30, 50, 1)))
	second := newExchange(t, jsonHandler(klineRows(200, 100, 0.1)))

	f := NewKlineFetcher([]Endpoint{
		{Name: "first", BaseURL: first.URL},
		{Name: "second", BaseURL: second.URL},
	})
	series := f.FetchPrices(context.Background(), "ETHUSDT", 200)

	assert.Equal(t, 30, series.Len())
	assert.Equal(t, int64(0), second.hits.Load())
}

func TestKlineFetcher_RequestShape(t *testing.T) {
	var got *http.Request
	ex := newExchange(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		jsonHandler(klineRows(25, 1, 1))(w, r)
	})

	f := NewKlineFetcher([]Endpoint{{Name: "only", BaseURL: ex.URL + "/"}})
	series := f.FetchPrices(context.Background(), "PEPEUSDT", 0)

	require.Equal(t, 25, series.Len())
	require.NotNil(t, got)
	assert.Equal(t, "/api/v3/klines", got.URL.Path)
	assert.Equal(t, "PEPEUSDT", got.URL.Query().Get("symbol"))
	assert.Equal(t, "1h", got.URL.Query().Get("interval"))
	assert.Equal(t, "200", got.URL.Query().Get("limit"))
}

func TestKlineFetcher_SoftFailures(t *testing.T) {
	good := klineRows(40, 10, 1)
	tests := []struct {
		name    string
		handler func(http.ResponseWriter, *http.Request)
		outcome string
	}{
		{"server error", statusHandler(http.StatusInternalServerError), metrics.OutcomeStatus},
		{"bad request", statusHandler(http.StatusBadRequest), metrics.OutcomeStatus},
		{"object body", jsonHandler(map[string]any{"code": -1121, "msg": "Invalid symbol."}), metrics.OutcomeMalformed},
		{"not json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("<html>")) }, metrics.OutcomeMalformed},
		{"short rows", jsonHandler([][]any{{1, "1", "1", "1", "1"}}), metrics.OutcomeMalformed},
		{"bad close", jsonHandler([][]any{{1, "1", "1", "1", "abc", "1"}}), metrics.OutcomeMalformed},
		{"zero close", jsonHandler([][]any{{1, "1", "1", "1", "0", "1"}}), metrics.OutcomeMalformed},
		{"duplicate time", jsonHandler([][]any{{1, "1", "1", "1", "2", "1"}, {1, "1", "1", "1", "3", "1"}}), metrics.OutcomeMalformed},
		{"null body", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("null")) }, metrics.OutcomeEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := newExchange(t, tt.handler)
			backup := newExchange(t, jsonHandler(good))
			m := metrics.New()

			f := NewKlineFetcher([]Endpoint{
				{Name: "bad", BaseURL: bad.URL},
				{Name: "backup", BaseURL: backup.URL},
			}, WithMetrics(m))
			series := f.FetchPrices(context.Background(), "BTCUSDT", 40)

			assert.Equal(t, 40, series.Len())
			assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchAttempts.WithLabelValues("bad", tt.outcome)))
			assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchAttempts.WithLabelValues("backup", metrics.OutcomeOK)))
		})
	}
}

func TestKlineFetcher_AllFailReturnsEmpty(t *testing.T) {
	a := newExchange(t, statusHandler(http.StatusInternalServerError))
	b := newExchange(t, statusHandler(http.StatusInternalServerError))

	f := NewKlineFetcher([]Endpoint{{Name: "a", BaseURL: a.URL}, {Name: "b", BaseURL: b.URL}})
	series := f.FetchPrices(context.Background(), "BTCUSDT", 200)

	assert.True(t, series.Empty())
	assert.Equal(t, "BTCUSDT", series.Symbol)
	assert.Equal(t, int64(1), a.hits.Load())
	assert.Equal(t, int64(1), b.hits.Load())
}

func TestKlineFetcher_TimeoutFallsThrough(t *testing.T) {
	release := make(chan struct{})
	slow := newExchange(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	fast := newExchange(t, jsonHandler(klineRows(21, 1, 1)))

	f := NewKlineFetcher([]Endpoint{
		{Name: "slow", BaseURL: slow.URL},
		{Name: "fast", BaseURL: fast.URL},
	}, WithTimeout(50*time.Millisecond))
	series := f.FetchPrices(context.Background(), "BTCUSDT", 21)

	assert.Equal(t, 21, series.Len())
}

func TestKlineFetcher_UnreachableEndpoint(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()
	up := newExchange(t, jsonHandler(klineRows(22, 1, 1)))

	f := NewKlineFetcher([]Endpoint{{Name: "down", BaseURL: downURL}, {Name: "up", BaseURL: up.URL}})
	assert.Equal(t, 22, f.FetchPrices(context.Background(), "BTCUSDT", 22).Len())
}

func TestKlineFetcher_CancelledContext(t *testing.T) {
	ex := newExchange(t, jsonHandler(klineRows(21, 1, 1)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewKlineFetcher([]Endpoint{{Name: "ex", BaseURL: ex.URL}})
	assert.True(t, f.FetchPrices(ctx, "BTCUSDT", 21).Empty())
	assert.Equal(t, int64(0), ex.hits.Load())
}

func TestParseKlines_SortsAndAcceptsNumericClose(t *testing.T) {
	rows := [][]json.RawMessage{
		{json.RawMessage(`7200000`), json.RawMessage(`"1"`), json.RawMessage(`"1"`), json.RawMessage(`"1"`), json.RawMessage(`12.5`), json.RawMessage(`"0"`)},
		{json.RawMessage(`3600000`), json.RawMessage(`"1"`), json.RawMessage(`"1"`), json.RawMessage(`"1"`), json.RawMessage(`"0.00001234"`), json.RawMessage(`"0"`)},
	}
	points, err := parseKlines(rows)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, time.UnixMilli(3600000).UTC(), points[0].Time)
	assert.Equal(t, "0.00001234", points[0].Close.String())
	assert.Equal(t, "12.5", points[1].Close.String())
}

func TestNewKlineFetcher_Defaults(t *testing.T) {
	f := NewKlineFetcher(nil)
	assert.Equal(t, DefaultEndpoints, f.Endpoints)
	assert.Equal(t, DefaultInterval, f.Interval)
	assert.Equal(t, DefaultTimeout, f.Timeout)
	assert.Equal(t, "klines", f.Name())
}
