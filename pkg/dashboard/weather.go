package dashboard

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const owmBaseURL = "https://api.openweathermap.org/data/2.5"

// Weather fetches current conditions from an OpenWeatherMap-style API.
// Without an API key it serves canned demo values so the dashboard can
// run against nothing.
type Weather struct {
	cli    *resty.Client
	logger *zap.Logger
	apiKey string
	city   string
}

func NewWeather(apiKey, city string, logger *zap.Logger) *Weather {
	if logger == nil {
		logger = zap.NewNop()
	}
	if city == "" {
		city = "San Francisco"
	}
	return &Weather{
		cli:    resty.New().SetBaseURL(owmBaseURL).SetTimeout(5 * time.Second),
		logger: logger.With(zap.String("source", lo.Ternary(apiKey == "", "demo", "openweathermap"))),
		apiKey: apiKey,
		city:   city,
	}
}

type owmCurrent struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (w *Weather) Fetch(ctx context.Context) (*Report, error) {
	if w.apiKey == "" {
		w.logger.Debug("serving demo report")
		return &Report{
			TempC:     22,
			Humidity:  65,
			WindKmh:   12,
			Condition: "Partly Cloudy",
			FetchedAt: time.Now(),
		}, nil
	}

	var cur owmCurrent
	resp, err := w.cli.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     w.city,
			"appid": w.apiKey,
			"units": "metric",
		}).
		SetResult(&cur).
		Get("/weather")
	if err != nil {
		return nil, errors.Wrap(err, "weather request")
	}
	if resp.IsError() {
		return nil, errors.Errorf("weather request: %s", resp.Status())
	}

	rep := &Report{
		TempC:     cur.Main.Temp,
		Humidity:  cur.Main.Humidity,
		WindKmh:   cur.Wind.Speed * 3.6,
		FetchedAt: time.Now(),
	}
	if len(cur.Weather) > 0 {
		rep.Condition = cur.Weather[0].Description
	}

	w.logger.With(zap.String("city", w.city), zap.Float64("temp_c", rep.TempC)).Debug("weather fetched")
	return rep, nil
}
