package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NERVsystems/oqlgen/pkg/monitoring"
	"github.com/NERVsystems/oqlgen/pkg/oql"
	"github.com/NERVsystems/oqlgen/pkg/oql/validate"
	"github.com/NERVsystems/oqlgen/pkg/osm"
	"github.com/NERVsystems/oqlgen/pkg/server"
	"github.com/NERVsystems/oqlgen/pkg/tracing"
	ver "github.com/NERVsystems/oqlgen/pkg/version"
)

var (
	showVersionFlag bool
	debug           bool
	userAgent       string

	// One-shot generation flags
	prompt       string
	format       string
	validateFlag bool
	executeFlag  bool

	// HTTP transport flags
	enableHTTP bool
	httpAddr   string

	// Monitoring flags
	enableMonitoring bool
	monitoringAddr   string

	// Rate limits for each service
	overpassRPS    float64
	overpassBurst  int
	taginfoRPS     float64
	taginfoBurst   int
	nominatimRPS   float64
	nominatimBurst int
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&userAgent, "user-agent", osm.DefaultUserAgent, "User-Agent string for OSM API requests")

	// One-shot generation flags
	flag.StringVar(&prompt, "prompt", "", "Generate a query from this prompt and exit (skips the MCP server)")
	flag.StringVar(&format, "format", "json", "Output format for generated queries: json, xml, or geojson")
	flag.BoolVar(&validateFlag, "validate", false, "Validate the generated query and print warnings (with -prompt)")
	flag.BoolVar(&executeFlag, "execute", false, "Execute the generated query against the Overpass API (with -prompt)")

	// HTTP transport flags
	flag.BoolVar(&enableHTTP, "enable-http", false, "Enable plain HTTP endpoints (in addition to stdio)")
	flag.StringVar(&httpAddr, "http-addr", ":7082", "HTTP server address")

	// Monitoring flags
	flag.BoolVar(&enableMonitoring, "enable-monitoring", true, "Enable Prometheus metrics and health endpoints")
	flag.StringVar(&monitoringAddr, "monitoring-addr", ":9090", "Monitoring server address")

	// Overpass rate limits
	flag.Float64Var(&overpassRPS, "overpass-rps", 1.0, "Overpass rate limit in requests per second")
	flag.IntVar(&overpassBurst, "overpass-burst", 1, "Overpass rate limit burst size")

	// Taginfo rate limits
	flag.Float64Var(&taginfoRPS, "taginfo-rps", 2.0, "Taginfo rate limit in requests per second")
	flag.IntVar(&taginfoBurst, "taginfo-burst", 2, "Taginfo rate limit burst size")

	// Nominatim rate limits
	flag.Float64Var(&nominatimRPS, "nominatim-rps", 1.0, "Nominatim rate limit in requests per second")
	flag.IntVar(&nominatimBurst, "nominatim-burst", 1, "Nominatim rate limit burst size")
}

func main() {
	flag.Parse()

	var logLevel slog.Level
	if debug {
		logLevel = slog.LevelDebug
	} else {
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	shutdownTracing, err := tracing.InitTracing(ctx, ver.Version)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		// Continue without tracing
	} else {
		defer func() {
			if err := shutdownTracing(ctx); err != nil {
				logger.Error("error shutting down tracing", "error", err)
			}
		}()

		if endpoint := os.Getenv("OTLP_ENDPOINT"); endpoint != "" {
			logger.Info("OpenTelemetry tracing enabled", "endpoint", endpoint)
		}
	}

	if showVersionFlag {
		fmt.Println(ver.String())
		return
	}

	if userAgent != osm.DefaultUserAgent {
		osm.SetUserAgent(userAgent)
	}

	if overpassRPS != 1.0 || overpassBurst != 1 {
		osm.UpdateOverpassRateLimits(overpassRPS, overpassBurst)
	}
	if taginfoRPS != 2.0 || taginfoBurst != 2 {
		osm.UpdateTaginfoRateLimits(taginfoRPS, taginfoBurst)
	}
	if nominatimRPS != 1.0 || nominatimBurst != 1 {
		osm.UpdateNominatimRateLimits(nominatimRPS, nominatimBurst)
	}

	// One-shot mode: generate a query from the command line and exit.
	if prompt != "" {
		if err := runOneShot(ctx, logger); err != nil {
			logger.Error("generation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("starting Overpass QL generator MCP server",
		"version", ver.Version,
		"log_level", logLevel.String(),
		"user_agent", userAgent,
		"overpass_rps", overpassRPS,
		"taginfo_rps", taginfoRPS,
		"http_enabled", enableHTTP,
		"monitoring_enabled", enableMonitoring,
		"monitoring_addr", monitoringAddr)

	var healthChecker *monitoring.HealthChecker
	if enableMonitoring {
		healthChecker = monitoring.NewHealthChecker(monitoring.ServiceName, ver.Version)
		defer healthChecker.Shutdown()

		osm.SetMonitoringHooks(&osm.MonitoringHooks{
			OnRequest: func(service, operation string) {
				monitoring.RecordExternalServiceRequest(service, operation, 0, false)
			},
			OnResponse: func(service, operation string, duration time.Duration, success bool) {
				monitoring.RecordExternalServiceRequest(service, operation, duration, success)
			},
			OnRateLimit: func(service string, waitTime time.Duration) {
				monitoring.RecordRateLimitWait(service, waitTime)
				monitoring.RecordRateLimitExceeded(service)
			},
			OnError: func(service, errorType string) {
				monitoring.RecordError(service, errorType)
			},
		})
	}

	s, err := server.NewServer()
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if healthChecker != nil {
		startExternalServiceMonitoring(healthChecker, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if enableMonitoring {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", healthChecker.HealthHandler())
		mux.HandleFunc("/ready", healthChecker.ReadinessHandler())
		mux.HandleFunc("/live", healthChecker.LivenessHandler())

		monitoringServer := &http.Server{
			Addr:              monitoringAddr,
			Handler:           mux,
			ReadHeaderTimeout: 30 * time.Second,
		}

		go func() {
			logger.Info("starting Prometheus metrics server", "addr", monitoringAddr)
			if err := monitoringServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("monitoring server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := monitoringServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown monitoring server", "error", err)
			}
		}()
	}

	if enableHTTP {
		httpServer := &http.Server{
			Addr:              httpAddr,
			Handler:           server.NewHandler(logger),
			ReadHeaderTimeout: 30 * time.Second,
		}

		go func() {
			logger.Info("starting HTTP transport", "addr", httpAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP transport error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown HTTP transport", "error", err)
			}
		}()
	}

	logger.Info("transport_enabled", "type", "stdio", "mode", "blocking")
	if err := s.RunWithContext(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// runOneShot generates a single query from the -prompt flag, optionally
// validating and executing it, and prints the outcome to stdout.
func runOneShot(ctx context.Context, logger *slog.Logger) error {
	validator := validate.New(validate.DefaultConfig()).WithLogger(logger)
	generator := oql.NewGenerator().
		WithTagValidator(validator.TagValidator()).
		WithLogger(logger)

	query, err := generator.Generate(ctx, prompt, format)
	if err != nil {
		return err
	}

	fmt.Println(query.QueryString)

	if validateFlag {
		warnings := validator.ValidateQuery(ctx, query)
		if len(warnings) == 0 {
			fmt.Fprintln(os.Stderr, "query passed validation")
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
	}

	if executeFlag {
		result, err := osm.NewExecutor().WithLogger(logger).Execute(ctx, query.QueryString)
		if err != nil {
			return err
		}
		summary := osm.Summarize(result)
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}

	return nil
}

// startExternalServiceMonitoring starts monitoring external services
func startExternalServiceMonitoring(healthChecker *monitoring.HealthChecker, logger *slog.Logger) {
	overpassMonitor := monitoring.NewConnectionMonitor(
		"overpass",
		healthChecker,
		func(ctx context.Context) error {
			return osm.CheckOverpassHealth()
		},
		30*time.Second,
	)
	overpassMonitor.Start()

	taginfoMonitor := monitoring.NewConnectionMonitor(
		"taginfo",
		healthChecker,
		func(ctx context.Context) error {
			return osm.CheckTaginfoHealth()
		},
		30*time.Second,
	)
	taginfoMonitor.Start()

	nominatimMonitor := monitoring.NewConnectionMonitor(
		"nominatim",
		healthChecker,
		func(ctx context.Context) error {
			return osm.CheckNominatimHealth()
		},
		30*time.Second,
	)
	nominatimMonitor.Start()

	logger.Info("started external service monitoring",
		"services", []string{"overpass", "taginfo", "nominatim"},
		"check_interval", "30s")
}
