package weatherapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestCurrentSendsKeyAndQuery(t *testing.T) {
	t.Parallel()

	requests := make(chan *url.URL, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r.URL
		_, _ = w.Write([]byte(`{"location":{"name":"Paris"},"current":{"temp_c":20,"temp_f":68}}`))
	}))
	defer srv.Close()

	api := NewWeatherAPI("secret", srv.URL+"/", srv.Client())
	report, err := api.Current(context.Background(), "Paris, France & more")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	got := <-requests
	gotPath, gotKey, gotQ := got.Path, got.Query().Get("key"), got.Query().Get("q")
	if gotPath != "/v1/current.json" || gotKey != "secret" || gotQ != "Paris, France & more" {
		t.Fatalf("unexpected request: path=%q key=%q q=%q", gotPath, gotKey, gotQ)
	}
	if report.Current == nil || report.Current.TempC != 20 || report.Current.TempF != 68 {
		t.Fatalf("unexpected report: %#v", report)
	}
}

func TestCurrentDecodesErrorBodyOnBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
	}))
	defer srv.Close()

	report, err := NewWeatherAPI("k", srv.URL, nil).Current(context.Background(), "Nowhere")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if report.Error == nil || !report.Error.IsLocationProblem() || report.Current != nil {
		t.Fatalf("unexpected report: %#v", report)
	}
}

func TestCurrentFailsOnGarbage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	if _, err := NewWeatherAPI("k", srv.URL, nil).Current(context.Background(), "x"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCurrentFailsOnTransport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	if _, err := NewWeatherAPI("k", addr, nil).Current(context.Background(), "x"); err == nil {
		t.Fatalf("expected transport error")
	}
}
