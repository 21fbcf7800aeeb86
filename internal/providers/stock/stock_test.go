package stock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"

	"github.com/portfolioproxy/gateway/internal/apperr"
	"github.com/portfolioproxy/gateway/internal/config"
)

var fixedNow = time.Date(2025, 3, 16, 14, 30, 0, 0, time.UTC)

func TestTransformQuote(t *testing.T) {
	q, err := TransformQuote("AAPL", []byte(`{"c":150.5,"d":2.5,"dp":1.67,"h":151,"l":148,"o":149,"pc":148}`), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, &Quote{
		Symbol:        "AAPL",
		Price:         150.5,
		Change:        2.5,
		ChangePercent: 1.67,
		LastUpdated:   "2025-03-16T14:30:00.000Z",
		Timestamp:     fixedNow.UnixMilli(),
	}, q)
}

func TestTransformQuote_MissingFieldsDefaultToZero(t *testing.T) {
	q, err := TransformQuote("AAPL", []byte(`{}`), fixedNow)
	require.NoError(t, err)
	assert.Zero(t, q.Price)
	assert.Zero(t, q.ChangePercent)

	_, err = TransformQuote("AAPL", []byte(`[1,2]`), fixedNow)
	assert.Equal(t, apperr.KindInvalidUpstreamData, apperr.KindOf(err))
}

func TestTransformHistory_SmallSeries(t *testing.T) {
	body := []byte(`{"c":[1,2,3],"t":[1700000000,1700003600,1700007200],"s":"ok"}`)

	h, err := TransformHistory("AAPL", body, fixedNow)
	require.NoError(t, err)

	want := []Point{
		{Date: "2023-11-14T22:13:20.000Z", Price: 1},
		{Date: "2023-11-14T23:13:20.000Z", Price: 2},
		{Date: "2023-11-15T00:13:20.000Z", Price: 3},
	}
	assert.Equal(t, want, h.Month)
	assert.Equal(t, want, h.Week)
	assert.Equal(t, want, h.Day)
	assert.Equal(t, "AAPL", h.Symbol)
	assert.Equal(t, fixedNow.UnixMilli(), h.Timestamp)
}

func TestTransformHistory_MonthAscending(t *testing.T) {
	body := []byte(`{"c":[150.5,151.2,149.8],"t":[1625097600,1625184000,1625270400],"s":"ok"}`)

	h, err := TransformHistory("AAPL", body, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, []Point{
		{Date: "2021-07-01T00:00:00.000Z", Price: 150.5},
		{Date: "2021-07-02T00:00:00.000Z", Price: 151.2},
		{Date: "2021-07-03T00:00:00.000Z", Price: 149.8},
	}, h.Month)
}

func TestTransformHistory_Windows(t *testing.T) {
	const n = 200
	prices := make([]float64, n)
	stamps := make([]int64, n)
	for i := range prices {
		prices[i] = float64(i)
		stamps[i] = 1700000000 + int64(i)*3600
	}
	body := candles(t, prices, stamps)

	h, err := TransformHistory("MSFT", body, fixedNow)
	require.NoError(t, err)

	require.Len(t, h.Month, n)
	require.Len(t, h.Week, 168)
	require.Len(t, h.Day, 24)
	assert.Equal(t, float64(n-24), h.Day[0].Price)
	assert.Equal(t, float64(n-168), h.Week[0].Price)
	assert.Equal(t, float64(n-1), h.Day[23].Price)
}

func TestTransformHistory_ZipsToShorterArray(t *testing.T) {
	h, err := TransformHistory("AAPL", []byte(`{"c":[1,2,3],"t":[1700000000,1700003600]}`), fixedNow)
	require.NoError(t, err)
	assert.Len(t, h.Month, 2)

	h, err = TransformHistory("AAPL", []byte(`{"c":[1],"t":[1700000000,1700003600]}`), fixedNow)
	require.NoError(t, err)
	assert.Len(t, h.Month, 1)
}

func TestTransformHistory_NoData(t *testing.T) {
	h, err := TransformHistory("AAPL", []byte(`{"s":"no_data"}`), fixedNow)
	require.NoError(t, err)
	assert.Empty(t, h.Day)
	assert.Empty(t, h.Week)
	assert.Empty(t, h.Month)
	assert.NotNil(t, h.Month)
}

func TestTransformHistory_Invalid(t *testing.T) {
	for _, body := range []string{`{"s":"ok"}`, `{"c":1,"t":[1]}`, `garbage`} {
		_, err := TransformHistory("AAPL", []byte(body), fixedNow)
		assert.Equal(t, apperr.KindInvalidUpstreamData, apperr.KindOf(err), body)
	}
}

func TestTransformHistory_IsPure(t *testing.T) {
	body := []byte(`{"c":[1,2,3],"t":[1700000000,1700003600,1700007200],"s":"ok"}`)
	a, err := TransformHistory("AAPL", body, fixedNow)
	require.NoError(t, err)
	b, err := TransformHistory("AAPL", body, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewService(config.ProviderConfig{BaseURL: srv.URL, APIKey: "fh-key", Timeout: time.Second}, srv.Client())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestService_Quote(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "fh-key", r.URL.Query().Get("token"))
		w.Write([]byte(`{"c":150.5,"d":2.5,"dp":1.67}`))
	})

	q, err := s.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 150.5, q.Price)
	assert.Equal(t, "2025-03-16T14:30:00.000Z", q.LastUpdated)

	_, err = s.Quote(context.Background(), " ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestService_History(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/candle", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "60", q.Get("resolution"))
		assert.Equal(t, "1700000000", q.Get("from"))
		assert.Equal(t, "1700007200", q.Get("to"))
		w.Write([]byte(`{"c":[1,2,3],"t":[1700000000,1700003600,1700007200],"s":"ok"}`))
	})

	h, err := s.History(context.Background(), HistoryQuery{Symbol: "AAPL", Resolution: "60", From: 1700000000, To: 1700007200})
	require.NoError(t, err)
	assert.Len(t, h.Month, 3)
}

func TestService_HistoryValidation(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be called")
	})

	tests := []HistoryQuery{
		{Resolution: "D", From: 1, To: 2},
		{Symbol: "AAPL", From: 1, To: 2},
		{Symbol: "AAPL", Resolution: "D"},
		{Symbol: "AAPL", Resolution: "D", From: 5, To: 2},
	}
	for _, q := range tests {
		_, err := s.History(context.Background(), q)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "%+v", q)
	}
}

func TestService_ErrorMapping(t *testing.T) {
	tests := []struct {
		status   int
		wantKind apperr.Kind
	}{
		{http.StatusNotFound, apperr.KindUpstreamNotFound},
		{http.StatusForbidden, apperr.KindUpstream},
		{http.StatusTooManyRequests, apperr.KindUpstream},
		{http.StatusInternalServerError, apperr.KindUpstream},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"You don't have access to this resource."}`))
			})
			_, err := s.Quote(context.Background(), "AAPL")
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.NotContains(t, apperr.MessageOf(err), "access")
		})
	}
}

func candles(t *testing.T, prices []float64, stamps []int64) []byte {
	t.Helper()
	body := []byte(`{"s":"ok","c":[],"t":[]}`)
	var err error
	for _, p := range prices {
		body, err = sjson.SetBytes(body, "c.-1", p)
		require.NoError(t, err)
	}
	for _, ts := range stamps {
		body, err = sjson.SetBytes(body, "t.-1", ts)
		require.NoError(t, err)
	}
	return body
}
