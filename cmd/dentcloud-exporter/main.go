package main

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/JHOFER-Cloud/dentcloud"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// meterLister is the part of *dentcloud.Session used for meter discovery
type meterLister interface {
	Meters(ctx context.Context) (dentcloud.Meters, error)
}

// resolveMeters returns the configured meters, or every meter the
// credentials can see when none are configured
func resolveMeters(ctx context.Context, lister meterLister, cfg *Config) ([]Meter, error) {
	if meters := parseMeters(cfg.Meters, cfg.MeterNames); len(meters) > 0 {
		return meters, nil
	}

	resp, err := lister.Meters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover meters: %w", err)
	}

	meters := parseMeters(resp.Meters, nil)
	if len(meters) == 0 {
		return nil, fmt.Errorf("no meters configured or available")
	}
	return meters, nil
}

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>dentcloud-exporter: {{len .Meters}} meter(s)</title></head>
<body>
<h1>dentcloud-exporter</h1>
<p>Latest reading per meter, fetched from the DentCloud API on every scrape.</p>
<table>
<tr><th>Name</th><th>Meter</th></tr>
{{range .Meters}}<tr><td>{{.Name}}</td><td>{{.ID}}</td></tr>
{{end}}</table>
<p>Topics: {{range $i, $t := .Topics}}{{if $i}}, {{end}}<code>{{$t}}</code>{{end}}</p>
<p><a href="/metrics">/metrics</a> &middot; <a href="/health">/health</a></p>
</body>
</html>
`))

type indexData struct {
	Meters []Meter
	Topics []string
}

func newRouter(meters []Meter, topics []string, metrics http.Handler) *mux.Router {
	router := mux.NewRouter()
	page := indexData{Meters: meters, Topics: topics}

	router.Handle("/metrics", metrics).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexPage.Execute(w, page); err != nil {
			log.Errorf("Failed to render index page: %v", err)
		}
	}).Methods(http.MethodGet)

	return router
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := setupLogging(cfg.LogLevel); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	location := cfg.Location()

	opts := []dentcloud.Option{dentcloud.WithLogger(log.StandardLogger())}
	if cfg.BaseURL != "" {
		opts = append(opts, dentcloud.WithBaseURL(cfg.BaseURL))
	}
	session := dentcloud.NewSession(cfg.APIKey, cfg.KeyID, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	meters, err := resolveMeters(ctx, session, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	log.Infof("Starting DentCloud Prometheus Exporter on port %s", cfg.Port)
	log.Infof("Monitoring %d meter(s) in %s:", len(meters), location)
	for _, m := range meters {
		log.Infof("  - %s: %s", m.Name, m.ID)
	}

	collector := NewCollector(session, meters, cfg.Topics, location)
	prometheus.MustRegister(collector)

	logged := handlers.LoggingHandler(log.StandardLogger().Writer(), newRouter(meters, cfg.Topics, promhttp.Handler()))

	log.Fatal(http.ListenAndServe(":"+cfg.Port, logged))
}
