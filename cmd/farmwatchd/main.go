// Command farmwatchd is the Farmwatch platform service.
// It serves the distress scoring API, runs the scheduled daily
// recalculation, and exposes a health check.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/farmwatch/farmwatch/internal/alert"
	"github.com/farmwatch/farmwatch/internal/api"
	"github.com/farmwatch/farmwatch/internal/archive"
	"github.com/farmwatch/farmwatch/internal/platform"
	"github.com/farmwatch/farmwatch/internal/store"
	"github.com/farmwatch/farmwatch/internal/task"
	"github.com/farmwatch/farmwatch/pkg/config"
	"github.com/farmwatch/farmwatch/pkg/distress"
)

type serverConfig struct {
	Port        string
	DatabaseURL string
	APIKey      string
	ConfigPath  string

	ArchiveBackend string // local, s3, or gcs
	ArchiveBucket  string
	ArchivePath    string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string

	KafkaBrokers   string
	KafkaTopic     string
	RecalcHour     int
	RecalcDisabled bool
}

func loadConfig() serverConfig {
	cfg := serverConfig{
		Port:           envOrDefault("PORT", "8080"),
		DatabaseURL:    envOrDefault("DATABASE_URL", "postgres://localhost:5432/farmwatch?sslmode=disable"),
		APIKey:         os.Getenv("API_KEY"),
		ConfigPath:     os.Getenv("CONFIG_PATH"),
		ArchiveBackend: envOrDefault("ARCHIVE_BACKEND", "local"),
		ArchiveBucket:  os.Getenv("ARCHIVE_BUCKET"),
		ArchivePath:    envOrDefault("ARCHIVE_PATH", "/tmp/farmwatch-archive"),
		S3Region:       os.Getenv("S3_REGION"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:     envOrDefault("KAFKA_ALERT_TOPIC", "farmwatch.distress-alerts"),
		RecalcHour:     2,
	}
	if v := os.Getenv("RECALC_HOUR"); v != "" {
		hour, err := strconv.Atoi(v)
		if err != nil || hour < 0 || hour > 23 {
			log.Fatalf("invalid RECALC_HOUR: %q", v)
		}
		cfg.RecalcHour = hour
	}
	if os.Getenv("RECALC_DISABLED") == "true" {
		cfg.RecalcDisabled = true
	}
	return cfg
}

func main() {
	cfg := loadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scoringCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	if err := platform.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	repo := store.New(db)
	weights, err := scoringCfg.FactorWeights()
	if err != nil {
		log.Fatalf("resolve weights: %v", err)
	}
	engine, err := distress.NewEngine(weights, distress.DefaultScorers()...)
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}
	svc := distress.NewService(engine, repo, repo, repo, repo,
		distress.WithLookbackDays(scoringCfg.Scoring.LookbackDays))

	archiveClient, err := buildArchive(ctx, cfg)
	if err != nil {
		log.Fatalf("archive storage: %v", err)
	}

	var notifier alert.Notifier = alert.LogNotifier{}
	if cfg.KafkaBrokers != "" {
		kn := alert.NewKafkaNotifier(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		defer kn.Close()
		notifier = kn
	}

	runner := task.NewRunner(svc, repo, repo,
		task.WithArchiver(archive.NewArchiver(archiveClient)),
		task.WithNotifier(notifier),
	)

	handler := api.NewHandler(svc, runner, nil)
	apiMux := http.NewServeMux()
	handler.RegisterRoutes(apiMux)

	// health check stays outside auth so probes work without the key
	mux := http.NewServeMux()
	mux.Handle("/api/", api.APIKeyAuth(cfg.APIKey)(apiMux))
	mux.HandleFunc("GET /healthz", healthHandler(db))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.CORS(mux),
	}

	if !cfg.RecalcDisabled {
		go runner.ScheduleDaily(ctx, cfg.RecalcHour)
	}

	go func() {
		log.Printf("starting farmwatchd on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func buildArchive(ctx context.Context, cfg serverConfig) (archive.Client, error) {
	switch cfg.ArchiveBackend {
	case "s3":
		return archive.NewS3Storage(ctx, archive.S3Config{
			Bucket:    cfg.ArchiveBucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "gcs":
		return archive.NewGCSStorage(ctx, cfg.ArchiveBucket)
	default:
		return archive.NewLocalStorage(cfg.ArchivePath), nil
	}
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
