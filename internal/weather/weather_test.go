package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondition_CodeRanges(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, Sunny}, {1, Sunny},
		{2, Cloudy}, {3, Cloudy},
		{45, Fog}, {48, Fog},
		{51, Rain}, {61, Rain}, {82, Rain},
		{71, Snow}, {86, Snow},
		{95, Storm}, {99, Storm},
		{42, Cloudy}, // unmapped codes default to cloudy
		{-1, Cloudy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Condition(tt.code), "code %d", tt.code)
	}
}

func TestFetchWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "weather_code,is_day,temperature_2m", r.URL.Query().Get("current"))
		assert.Equal(t, "-34.9285", r.URL.Query().Get("latitude"))
		w.Write([]byte(`{"current": {"weather_code": 61, "is_day": 1, "temperature_2m": 13.4}}`))
	}))
	defer srv.Close()

	c := NewOpenMeteoWithBaseURL(srv.URL)
	obs, err := c.FetchWeather(context.Background(), -34.9285, 138.6007)
	require.NoError(t, err)
	assert.Equal(t, 61, obs.Code)
	assert.Equal(t, 13.4, obs.TempC)
	assert.True(t, obs.IsDay)
	assert.Equal(t, Rain, obs.Condition())
}

func TestFetchWeather_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewOpenMeteoWithBaseURL(srv.URL).FetchWeather(context.Background(), 0, 0)
	assert.Error(t, err)
}

func TestFetchWeather_MissingCurrentBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"latitude": 0}`))
	}))
	defer srv.Close()

	_, err := NewOpenMeteoWithBaseURL(srv.URL).FetchWeather(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing current")
}
