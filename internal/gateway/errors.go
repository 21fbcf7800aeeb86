package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/portfolioproxy/gateway/external"
	"github.com/portfolioproxy/gateway/internal/apperr"
	"github.com/portfolioproxy/gateway/internal/monitoring"
)

// statusForKind maps an error kind to the HTTP status returned to callers.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUpstreamNotFound:
		return http.StatusNotFound
	case apperr.KindUpstream, apperr.KindUpstreamRunFailed:
		return http.StatusBadGateway
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleError logs err once and answers with its stable message.
func (g *Gateway) handleError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusForKind(kind)

	info := &monitoring.FailureInfo{
		RequestID:      monitoring.RequestIDFromContext(r.Context()),
		Path:           r.URL.Path,
		Kind:           string(kind),
		Status:         status,
		UpstreamStatus: external.StatusCode(err),
		Err:            err,
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		info.Provider = ae.Provider
	}
	g.alerts.FlagRequestFailure(info)

	g.writeError(w, status, kind, apperr.MessageOf(err))
}

// writeError writes the standard error body.
func (g *Gateway) writeError(w http.ResponseWriter, status int, kind apperr.Kind, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      string(kind),
		Message:    message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("failed to write response")
	}
}
