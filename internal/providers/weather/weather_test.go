package weather_test

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
	"github.com/portfolioproxy/gateway/internal/providers/weather"
)

const bostonPayload = `{
	"coord": {"lon": -71.06, "lat": 42.36},
	"weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}],
	"main": {"temp": 72.5, "feels_like": 70.2, "humidity": 45},
	"wind": {"speed": 5.8},
	"sys": {"country": "US"},
	"timezone": -14400,
	"name": "Boston"
}`

func TestTransform(t *testing.T) {
	report, err := weather.Transform([]byte(bostonPayload))
	require.NoError(t, err)

	assert.Equal(t, &weather.Report{
		Temperature: 72.5,
		Condition:   "clear",
		Location:    "Boston, US",
		FeelsLike:   70.2,
		Humidity:    45,
		Description: "clear sky",
		WindSpeed:   5.8,
		Timezone:    -14400,
	}, report)
}

func TestTransform_IsPure(t *testing.T) {
	first, err := weather.Transform([]byte(bostonPayload))
	require.NoError(t, err)
	second, err := weather.Transform([]byte(bostonPayload))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTransform_OptionalFieldsDefault(t *testing.T) {
	body, err := sjson.Delete(bostonPayload, "main.feels_like")
	require.NoError(t, err)
	body, err = sjson.Delete(body, "weather.0.description")
	require.NoError(t, err)
	body, err = sjson.Delete(body, "timezone")
	require.NoError(t, err)

	report, err := weather.Transform([]byte(body))
	require.NoError(t, err)
	assert.Zero(t, report.FeelsLike)
	assert.Empty(t, report.Description)
	assert.Zero(t, report.Timezone)
}

func TestTransform_InvalidData(t *testing.T) {
	tests := []struct {
		name string
		path string
		set  any
	}{
		{name: "missing weather", path: "weather"},
		{name: "missing main", path: "main"},
		{name: "missing name", path: "name"},
		{name: "missing country", path: "sys.country"},
		{name: "missing wind speed", path: "wind.speed"},
		{name: "empty weather array", path: "weather", set: []any{}},
		{name: "main not an object", path: "main", set: "hot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body string
			var err error
			if tt.set == nil {
				body, err = sjson.Delete(bostonPayload, tt.path)
			} else {
				body, err = sjson.Set(bostonPayload, tt.path, tt.set)
			}
			require.NoError(t, err)

			_, err = weather.Transform([]byte(body))
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidUpstreamData, apperr.KindOf(err))
		})
	}

	_, err := weather.Transform([]byte(`not json`))
	assert.Equal(t, apperr.KindInvalidUpstreamData, apperr.KindOf(err))
}

func newService(t *testing.T, handler http.HandlerFunc) *weather.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return weather.NewService(config.ProviderConfig{BaseURL: srv.URL, APIKey: "owm-key", Timeout: time.Second}, srv.Client())
}

func TestService_ByCity(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "Boston", r.URL.Query().Get("q"))
		assert.Equal(t, "owm-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "imperial", r.URL.Query().Get("units"))
		w.Write([]byte(bostonPayload))
	})

	report, err := svc.ByCity(context.Background(), "  Boston ")
	require.NoError(t, err)
	assert.Equal(t, "Boston, US", report.Location)
}

func TestService_ByCoordinates(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42.36", r.URL.Query().Get("lat"))
		assert.Equal(t, "-71.06", r.URL.Query().Get("lon"))
		w.Write([]byte(bostonPayload))
	})

	report, err := svc.ByCoordinates(context.Background(), 42.36, -71.06)
	require.NoError(t, err)
	assert.Equal(t, 72.5, report.Temperature)

	_, err = svc.ByCoordinates(context.Background(), 91, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestService_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantKind    apperr.Kind
		wantMessage string
	}{
		{"unknown city is a validation error", http.StatusNotFound, apperr.KindValidation, "Location not found"},
		{"bad key", http.StatusUnauthorized, apperr.KindUpstream, "Invalid API key"},
		{"provider outage", http.StatusServiceUnavailable, apperr.KindUpstream, "Failed to fetch weather data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"cod":"x","message":"provider says no"}`))
			})

			_, err := svc.ByCity(context.Background(), "Atlantis")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Equal(t, tt.wantMessage, apperr.MessageOf(err))
		})
	}
}

func TestService_EmptyLocation(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be called")
	})

	_, err := svc.ByCity(context.Background(), "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestService_TimeoutErrorOmitsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	svc := weather.NewService(config.ProviderConfig{BaseURL: srv.URL, APIKey: "SECRET_OWM_KEY", Timeout: 20 * time.Millisecond}, srv.Client())

	_, err := svc.ByCity(context.Background(), "Boston")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.NotContains(t, err.Error(), "SECRET_OWM_KEY")
}
