// Package stock reshapes Finnhub quote and candle responses.
//
// DESIGN: History windows are count based. day is the last 24 points and week
// the last 168, which is only correct for hourly resolution. Callers asking
// for daily candles get "day" = last 24 days.
package stock

import (
	"time"

	"github.com/tidwall/gjson"

	"github.com/portfolioproxy/gateway/internal/apperr"
)

const (
	dayPoints  = 24
	weekPoints = 7 * 24
)

// Quote is the stable quote payload.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	LastUpdated   string  `json:"lastUpdated"`
	Timestamp     int64   `json:"timestamp"`
}

// Point is one price sample.
type Point struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// History is the stable historical payload.
type History struct {
	Day       []Point `json:"day"`
	Week      []Point `json:"week"`
	Month     []Point `json:"month"`
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"timestamp"`
}

// TransformQuote maps a /quote payload. now stamps lastUpdated and timestamp.
func TransformQuote(symbol string, body []byte, now time.Time) (*Quote, error) {
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return nil, apperr.InvalidData("Invalid stock data received from API")
	}
	f := gjson.GetManyBytes(body, "c", "d", "dp")
	return &Quote{
		Symbol:        symbol,
		Price:         f[0].Float(),
		Change:        f[1].Float(),
		ChangePercent: f[2].Float(),
		LastUpdated:   formatTime(now),
		Timestamp:     now.UnixMilli(),
	}, nil
}

// TransformHistory maps a /stock/candle payload. Prices and timestamps are
// paired by index up to the shorter array, in the order received.
func TransformHistory(symbol string, body []byte, now time.Time) (*History, error) {
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return nil, apperr.InvalidData("Invalid historical stock data received from API")
	}

	h := &History{Day: []Point{}, Week: []Point{}, Month: []Point{}, Symbol: symbol, Timestamp: now.UnixMilli()}

	f := gjson.GetManyBytes(body, "s", "c", "t")
	if f[0].String() == "no_data" {
		return h, nil
	}
	if !f[1].IsArray() || !f[2].IsArray() {
		return nil, apperr.InvalidData("Invalid historical stock data received from API")
	}

	prices, stamps := f[1].Array(), f[2].Array()
	n := min(len(prices), len(stamps))
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		points[i] = Point{
			Date:  formatTime(time.Unix(stamps[i].Int(), 0)),
			Price: prices[i].Float(),
		}
	}

	h.Day = tail(points, dayPoints)
	h.Week = tail(points, weekPoints)
	h.Month = points
	return h, nil
}

func tail(points []Point, n int) []Point {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
