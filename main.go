package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	amortizationinterfaces "loan-docs/internal/amortization/interfaces"
	"loan-docs/internal/assets"
	"loan-docs/internal/audit"
	"loan-docs/internal/auth"
	documentsapp "loan-docs/internal/documents/application"
	"loan-docs/internal/documents/infrastructure/pdf"
	documentshttp "loan-docs/internal/documents/interfaces/http"
	layout "loan-docs/internal/layout/domain"
	layoutconfig "loan-docs/internal/layout/infrastructure/config"
	"loan-docs/internal/observability/metrics"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init()

	placements, err := layoutconfig.LoadPlacements(cfg.LayoutConfig)
	if err != nil {
		logger.Fatalf("layout config error: %v", err)
	}
	planner, err := layout.NewPlanner(placements.Grid, placements.Table)
	if err != nil {
		logger.Fatalf("layout planner error: %v", err)
	}

	catalog, err := assets.LoadDir(cfg.AssetsDir)
	if err != nil {
		logger.Fatalf("assets load error: dir=%s err=%v", cfg.AssetsDir, err)
	}
	logger.Printf("assets loaded: dir=%s ids=%v", cfg.AssetsDir, catalog.IDs())

	templates, err := pdf.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		logger.Fatalf("templates load error: %v", err)
	}
	renderer, err := pdf.NewRenderer(templates, placements.Grid, logger)
	if err != nil {
		logger.Fatalf("pdf renderer error: %v", err)
	}
	compositor, err := pdf.NewCompositor(placements.Grid, catalog, cfg.DebugGrid)
	if err != nil {
		logger.Fatalf("pdf compositor error: %v", err)
	}

	generateService, err := documentsapp.NewGenerateService(renderer, compositor, planner, catalog, logger)
	if err != nil {
		logger.Fatalf("generate service error: %v", err)
	}
	location, err := time.LoadLocation(cfg.DateLocation)
	if err != nil {
		logger.Fatalf("date location error: location=%s err=%v", cfg.DateLocation, err)
	}
	generateService.SetClock(func() time.Time { return time.Now().In(location) })
	if err := generateService.CheckAssets(); err != nil {
		logger.Printf("assets check warning: %v", err)
	}

	auditLogger, err := audit.NewLogWriter(logger)
	if err != nil {
		logger.Fatalf("audit logger error: %v", err)
	}
	documentHandler, err := documentshttp.NewHandler(generateService, auditLogger, logger)
	if err != nil {
		logger.Fatalf("documents handler error: %v", err)
	}
	scheduleHandler, err := amortizationinterfaces.NewScheduleHandler(logger)
	if err != nil {
		logger.Fatalf("schedule handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy, logger)
	if !authMiddleware.Enabled() {
		logger.Printf("auth disabled: AUTH_JWT_SECRET is empty")
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/schedules", scheduleHandler)
	mux.Handle("/api/v1/schedules/", scheduleHandler)
	mux.Handle("/api/v1/documents", documentHandler)
	mux.Handle("/api/v1/documents/", documentHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(authMiddleware.Wrap(mux), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	HTTPAddr     string
	JWTSecret    string
	AssetsDir    string
	LayoutConfig string
	TemplatesDir string
	DebugGrid    bool
	DateLocation string
}

func loadConfig() config {
	return config{
		HTTPAddr:     getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:    getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		AssetsDir:    getenvDefault("ASSETS_DIR", "assets"),
		LayoutConfig: getenvDefault("LAYOUT_CONFIG", ""),
		TemplatesDir: getenvDefault("TEMPLATES_DIR", ""),
		DebugGrid:    getenvBoolDefault("DEBUG_GRID", false),
		DateLocation: getenvDefault("DATE_LOCATION", "Europe/Rome"),
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
