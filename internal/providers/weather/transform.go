// Package weather reshapes OpenWeatherMap current-weather responses.
package weather

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/portfolioproxy/gateway/internal/apperr"
)

// Report is the stable weather payload.
type Report struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Location    string  `json:"location"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    float64 `json:"humidity"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"windSpeed"`
	Timezone    int64   `json:"timezone"`
}

const invalidDataMessage = "Invalid weather data received from API"

// required lists the fields without which the payload is unusable.
var required = []string{"main", "weather.0", "name", "sys.country", "wind.speed"}

// Transform maps a provider payload to a Report.
// Optional numeric fields inside present objects default to 0.
func Transform(body []byte) (*Report, error) {
	if !gjson.ValidBytes(body) {
		return nil, apperr.InvalidData(invalidDataMessage)
	}

	fields := gjson.GetManyBytes(body, required...)
	for i, f := range fields {
		if !f.Exists() {
			return nil, apperr.InvalidData(invalidDataMessage + ": missing " + required[i])
		}
	}
	main, current := fields[0], fields[1]
	if !main.IsObject() || !current.IsObject() {
		return nil, apperr.InvalidData(invalidDataMessage)
	}

	return &Report{
		Temperature: main.Get("temp").Float(),
		Condition:   strings.ToLower(current.Get("main").String()),
		Location:    fields[2].String() + ", " + fields[3].String(),
		FeelsLike:   main.Get("feels_like").Float(),
		Humidity:    main.Get("humidity").Float(),
		Description: current.Get("description").String(),
		WindSpeed:   fields[4].Float(),
		Timezone:    gjson.GetBytes(body, "timezone").Int(),
	}, nil
}
