// Package weather fetches current conditions from Open-Meteo and maps
// its WMO weather codes onto the engine's canonical condition set.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Canonical weather conditions. Every rule value and every provider
// code normalizes to one of these.
const (
	Sunny  = "sunny"
	Cloudy = "cloudy"
	Fog    = "fog"
	Rain   = "rain"
	Snow   = "snow"
	Storm  = "storm"
)

// Observation is one current-weather reading.
type Observation struct {
	Code  int
	TempC float64
	IsDay bool
}

// Condition maps the observation's WMO code to a canonical condition.
func (o Observation) Condition() string {
	return Condition(o.Code)
}

// Condition maps a WMO weather code (https://open-meteo.com/en/docs)
// to a canonical condition. Codes outside the known ranges read as
// cloudy, the least committal condition.
func Condition(code int) string {
	switch code {
	case 0, 1:
		return Sunny
	case 2, 3:
		return Cloudy
	case 45, 48:
		return Fog
	case 51, 53, 55, 61, 63, 65, 80, 81, 82:
		return Rain
	case 71, 73, 75, 85, 86:
		return Snow
	case 95, 96, 99:
		return Storm
	default:
		return Cloudy
	}
}

// Client is the upstream weather dependency of the context resolver.
type Client interface {
	FetchWeather(ctx context.Context, lat, lon float64) (Observation, error)
}

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteo calls the free Open-Meteo current-weather endpoint.
type OpenMeteo struct {
	httpClient *http.Client
	baseURL    string
}

func NewOpenMeteo() *OpenMeteo {
	return &OpenMeteo{
		httpClient: &http.Client{Timeout: 8 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// NewOpenMeteoWithBaseURL exists for tests against a local server.
func NewOpenMeteoWithBaseURL(baseURL string) *OpenMeteo {
	c := NewOpenMeteo()
	c.baseURL = baseURL
	return c
}

type currentResponse struct {
	Current *struct {
		WeatherCode   int     `json:"weather_code"`
		IsDay         int     `json:"is_day"`
		Temperature2m float64 `json:"temperature_2m"`
	} `json:"current"`
}

// FetchWeather issues one request for the current conditions at the
// coordinate. Any transport, status or shape problem is returned as an
// error; the caller decides how to degrade.
func (c *OpenMeteo) FetchWeather(ctx context.Context, lat, lon float64) (Observation, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	params.Set("current", "weather_code,is_day,temperature_2m")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Observation{}, fmt.Errorf("build weather request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Observation{}, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Observation{}, fmt.Errorf("weather upstream returned status %d", resp.StatusCode)
	}
	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Observation{}, fmt.Errorf("decode weather response: %w", err)
	}
	if body.Current == nil {
		return Observation{}, fmt.Errorf("weather response missing current block")
	}
	return Observation{
		Code:  body.Current.WeatherCode,
		TempC: body.Current.Temperature2m,
		IsDay: body.Current.IsDay == 1,
	}, nil
}
