package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/portfolioproxy/gateway/internal/apperr"
	"github.com/portfolioproxy/gateway/internal/providers/stock"
)

// dateLayout is the optional ?date= format for scoreboards.
const dateLayout = "2006-01-02"

// handleChat runs one assistant turn.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			g.handleError(w, r, apperr.Wrap(apperr.KindValidation, "Request body too large", err))
			return
		}
		g.handleError(w, r, apperr.Wrap(apperr.KindValidation, "Request body must be JSON with a message field", err))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		g.handleError(w, r, apperr.Validation("Message is required"))
		return
	}

	reply, err := g.services.Chat.Reply(r.Context(), req.Message)
	if err != nil {
		g.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Response: reply})
}

// handleWeather serves ?location= or ?lat=&lon=.
func (g *Gateway) handleWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, lon := q.Get("lat"), q.Get("lon")

	if strings.TrimSpace(q.Get("location")) == "" && (lat != "" || lon != "") {
		if lat == "" || lon == "" {
			g.handleError(w, r, apperr.Validation("Both lat and lon are required"))
			return
		}
		latF, errLat := strconv.ParseFloat(lat, 64)
		lonF, errLon := strconv.ParseFloat(lon, 64)
		if errLat != nil || errLon != nil {
			g.handleError(w, r, apperr.Validation("lat and lon must be numbers"))
			return
		}
		report, err := g.services.Weather.ByCoordinates(r.Context(), latF, lonF)
		g.respond(w, r, report, err)
		return
	}

	report, err := g.services.Weather.ByCity(r.Context(), q.Get("location"))
	g.respond(w, r, report, err)
}

// handleStockQuote serves ?symbol=.
func (g *Gateway) handleStockQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := g.services.Stock.Quote(r.Context(), r.URL.Query().Get("symbol"))
	g.respond(w, r, quote, err)
}

// handleStockHistory serves ?symbol=&resolution=&from=&to=.
func (g *Gateway) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, errFrom := parseUnix(q.Get("from"))
	to, errTo := parseUnix(q.Get("to"))
	if errFrom != nil || errTo != nil {
		g.handleError(w, r, apperr.Validation("From and to must be unix timestamps"))
		return
	}

	history, err := g.services.Stock.History(r.Context(), stock.HistoryQuery{
		Symbol:     q.Get("symbol"),
		Resolution: q.Get("resolution"),
		From:       from,
		To:         to,
	})
	g.respond(w, r, history, err)
}

// handleSports serves /sports/{sport}?date=.
func (g *Gateway) handleSports(w http.ResponseWriter, r *http.Request) {
	var date time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			g.handleError(w, r, apperr.Validation("Date must be YYYY-MM-DD"))
			return
		}
		date = d
	}

	games, err := g.services.Sports.Games(r.Context(), r.PathValue("sport"), date)
	g.respond(w, r, games, err)
}

// handleDiscord serves /discord/{serverId}.
func (g *Gateway) handleDiscord(w http.ResponseWriter, r *http.Request) {
	widget, err := g.services.Discord.Widget(r.Context(), r.PathValue("serverId"))
	g.respond(w, r, widget, err)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// respond writes v as 200 JSON, or the classified error.
func (g *Gateway) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		g.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func parseUnix(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
