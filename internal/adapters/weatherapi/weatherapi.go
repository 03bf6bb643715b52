package weatherapi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/iamwavecut/hrbots/internal/adapters"
	"github.com/iamwavecut/hrbots/internal/adapters/weather"
)

const (
	DefaultBaseURL = "http://api.weatherapi.com"
	currentPath    = "/v1/current.json"
	maxBodySize    = 1 << 20
)

type API struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *log.Entry
}

// NewWeatherAPI builds a weatherapi.com client. A nil httpClient means
// http.DefaultClient.
func NewWeatherAPI(apiKey, baseURL string, httpClient *http.Client) adapters.Weather {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		tracer:     otel.Tracer("hrbots/weatherapi"),
		logger:     log.WithField("context", "weatherapi"),
	}
}

// Current returns the decoded body whatever the HTTP status, since the
// provider reports semantic failures in an "error" object. Only transport
// failures and bodies that are not JSON are returned as errors.
func (a *API) Current(ctx context.Context, location string) (weather.Report, error) {
	ctx, span := a.tracer.Start(ctx, "weatherapi.current", trace.WithAttributes(attribute.String("location", location)))
	defer span.End()

	query := url.Values{}
	query.Set("key", a.apiKey)
	query.Set("q", location)
	endpoint := a.baseURL + currentPath + "?" + query.Encode()

	var report weather.Report
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return report, errors.Wrap(err, "build request")
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return report, errors.Wrap(err, "request current weather")
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return report, errors.Wrap(err, "read body")
	}
	report, err = weather.DecodeReport(body)
	if err != nil {
		a.logger.WithField("status", resp.StatusCode).Debugf("undecodable body: %.200s", body)
		return report, errors.Wrap(err, "decode body")
	}
	return report, nil
}
