// Package weather answers "/w <location>" with the current temperature.
package weather

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/iamwavecut/hrbots/internal/adapters"
	provider "github.com/iamwavecut/hrbots/internal/adapters/weather"
	"github.com/iamwavecut/hrbots/internal/bot"
	"github.com/iamwavecut/hrbots/internal/handlers/base"
	"github.com/iamwavecut/hrbots/internal/highrise"
	"github.com/iamwavecut/hrbots/internal/i18n"
	"github.com/iamwavecut/hrbots/internal/observability"
)

const DefaultPrefix = "/w"

// ErrorMode selects how provider error bodies are reported in the room.
type ErrorMode string

const (
	// ErrorsDetailed tells key problems, unknown locations and other
	// provider errors apart.
	ErrorsDetailed ErrorMode = "detailed"
	// ErrorsHint always blames the API key.
	ErrorsHint ErrorMode = "hint"
	// ErrorsGeneric always reports an unrecognized location.
	ErrorsGeneric ErrorMode = "generic"
)

type (
	Config struct {
		Prefix    string
		ErrorMode ErrorMode
	}

	Weather struct {
		*base.BaseHandler
		cfg      Config
		provider adapters.Weather
	}
)

var _ bot.ChatHandler = (*Weather)(nil)

func NewWeather(s bot.Service, api adapters.Weather, cfg Config) *Weather {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.ErrorMode == "" {
		cfg.ErrorMode = ErrorsDetailed
	}
	return &Weather{
		BaseHandler: base.NewBaseHandler(s, "weather"),
		cfg:         cfg,
		provider:    api,
	}
}

func (h *Weather) OnChat(ctx context.Context, user highrise.User, message string) error {
	location, ok := base.ParseCommand(h.cfg.Prefix, message)
	if !ok {
		return nil
	}
	return h.Reply(ctx, h.answer(ctx, location))
}

func (h *Weather) answer(ctx context.Context, location string) string {
	lang := h.GetLanguage()
	if strings.TrimSpace(location) == "" {
		observability.RecordWeatherLookup("usage")
		return fmt.Sprintf(i18n.Get("Usage: %s <location>", lang), h.cfg.Prefix)
	}

	report, err := h.provider.Current(ctx, location)
	if err != nil {
		h.GetLogger().WithError(err).WithField("location", location).Warn("weather lookup failed")
		observability.RecordWeatherLookup("failure")
		return i18n.Get("Failed to retrieve weather data.", lang)
	}

	switch {
	case report.Current != nil:
		observability.RecordWeatherLookup("ok")
		return fmt.Sprintf(
			i18n.Get("The current temperature in %s is:\n%s °C\n%s °F", lang),
			location, formatTemp(report.Current.TempC), formatTemp(report.Current.TempF),
		)
	case report.Error != nil:
		observability.RecordWeatherLookup("provider_error")
		h.GetLogger().WithError(report.Error).WithField("location", location).Debug("provider error")
		return h.describeError(report.Error, location, lang)
	default:
		observability.RecordWeatherLookup("unrecognized")
		return fmt.Sprintf(i18n.Get("Unrecognized location: %s", lang), location)
	}
}

func (h *Weather) describeError(apiErr *provider.APIError, location, lang string) string {
	keyHint := i18n.Get("Make sure you've configured your bot with a valid weatherapi.com API key", lang)
	unrecognized := fmt.Sprintf(i18n.Get("Unrecognized location: %s", lang), location)

	switch h.cfg.ErrorMode {
	case ErrorsHint:
		return keyHint
	case ErrorsGeneric:
		return unrecognized
	}
	switch {
	case apiErr.IsKeyProblem():
		return keyHint
	case apiErr.IsLocationProblem():
		return unrecognized
	default:
		return fmt.Sprintf(i18n.Get("Weather provider error: %s", lang), apiErr.Message)
	}
}

// formatTemp prints whole degrees without a fraction.
func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
