// Route table.
//
// DESIGN: Go 1.22 method patterns on a plain ServeMux. The matched pattern
// (r.Pattern) doubles as the metrics route label, so keep one pattern per
// logical endpoint.
//
//	POST /api/chatbot/message     chat turn
//	POST /api/openai/chat         chat turn (legacy path)
//	GET  /api/weather             ?location= | ?lat=&lon=
//	GET  /api/stock/quote         ?symbol=
//	GET  /api/stock/historical    ?symbol=&resolution=&from=&to=
//	GET  /api/sports/{sport}      ?date=YYYY-MM-DD
//	GET  /api/discord/{serverId}
//	GET  /healthz
//	GET  /metrics
package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (g *Gateway) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+APIPrefix+"/chatbot/message", g.handleChat)
	mux.HandleFunc("POST "+APIPrefix+"/openai/chat", g.handleChat)

	mux.HandleFunc("GET "+APIPrefix+"/weather", g.handleWeather)
	mux.HandleFunc("GET "+APIPrefix+"/stock/quote", g.handleStockQuote)
	mux.HandleFunc("GET "+APIPrefix+"/stock/historical", g.handleStockHistory)
	mux.HandleFunc("GET "+APIPrefix+"/sports/{sport}", g.handleSports)
	mux.HandleFunc("GET "+APIPrefix+"/discord/{serverId}", g.handleDiscord)

	mux.HandleFunc("GET /healthz", g.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
