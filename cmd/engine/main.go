package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"ghostcheck-engine/internal/config"
	"ghostcheck-engine/internal/events"
	"ghostcheck-engine/internal/httpapi"
	"ghostcheck-engine/internal/legit"
	"ghostcheck-engine/internal/notify"
	"ghostcheck-engine/internal/pipeline"
	"ghostcheck-engine/internal/scheduler"
	"ghostcheck-engine/internal/scrape"
	"ghostcheck-engine/internal/scrape/util"
	"ghostcheck-engine/internal/secrets"
	"ghostcheck-engine/internal/store"
	"ghostcheck-engine/internal/verify"
)

func main() {
	_ = godotenv.Load()

	// Engine data dir: use env if provided, else local folder.
	dataDir := os.Getenv("GHOSTCHECK_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir. A second instance would fight over the
	// sqlite file and double-hit every source.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("engine lock: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance is already running in %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		c, err := config.Load(userCfgPath)
		if err != nil {
			return c, err
		}
		if err := config.OverlayRosters(&c, filepath.Join(dataDir, "rosters.yml")); err != nil {
			return c, err
		}
		return c, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}

	normalized, vr := config.NormalizeAndValidate(cfg)
	for _, wmsg := range vr.Warnings {
		log.Printf("[config] warning: %s", wmsg)
	}
	if !vr.OK() {
		for _, e := range vr.Errors {
			log.Printf("[config] error: %s", e)
		}
		log.Fatalf("config invalid, fix %s and restart", userCfgPath)
	}
	cfg = normalized
	cfgVal.Store(cfg)

	db, err := store.Open(filepath.Join(dataDir, "ghostcheck.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()
	limiter := util.NewHostLimiter(1.0, 2)
	verifier := verify.New(limiter)

	runner := pipeline.NewRunner(
		scrape.BuildFetchers(cfg, limiter),
		db,
		verifier,
		buildScorer(cfg),
		hub,
	)

	var reporter *notify.Reporter
	if cfg.Notify.Enabled {
		token, err := secrets.Get(secrets.TelegramAccount)
		if err != nil {
			log.Printf("[notify] disabled: %v", err)
		} else if reporter, err = notify.New(token, cfg.Notify.TelegramChatID); err != nil {
			log.Printf("[notify] disabled: %v", err)
			reporter = nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go scheduler.Every(ctx, time.Duration(cfg.Pipeline.IngestMinutes)*time.Minute, "ingest", func(ctx context.Context) error {
		res, err := runner.RunIngestion(ctx)
		if err != nil {
			return err
		}
		if err := reporter.RunSummary(res); err != nil {
			log.Printf("[notify] %v", err)
		}
		return nil
	})

	// Stagger the sweep so it never lines up with an ingest at startup.
	go scheduler.EveryAfter(ctx, 2*time.Minute, time.Duration(cfg.Pipeline.SweepMinutes)*time.Minute, "sweep", func(ctx context.Context) error {
		res, err := runner.RunReverification(ctx)
		if err != nil {
			return err
		}
		if err := reporter.SweepSummary(res); err != nil {
			log.Printf("[notify] %v", err)
		}
		return nil
	})

	mux := httpapi.NewMux(httpapi.Deps{
		DB:                db.Pool,
		Hub:               hub,
		CfgVal:            &cfgVal,
		UserCfgPath:       userCfgPath,
		LoadCfg:           loadCfg,
		RunIngestion:      runner.RunIngestion,
		RunReverification: runner.RunReverification,
		PipelineStatus:    runner.Status,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (data=%s)", addr, dataDir)

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.RequestID, httpapi.AccessLog, httpapi.Recover, httpapi.Cors),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// buildScorer assembles the fallback chain: Groq first, Gemini second,
// rules always last so scoring survives with zero keys configured.
func buildScorer(cfg config.Config) legit.Scorer {
	var scorers []legit.Scorer

	if key, err := secrets.Get(secrets.GroqAccount); err == nil {
		s, err := legit.NewGroq(key, cfg.LLM.GroqModel)
		if err != nil {
			log.Printf("[legit] groq disabled: %v", err)
		} else {
			scorers = append(scorers, s)
		}
	} else {
		log.Printf("[legit] groq disabled: %v", err)
	}

	if key, err := secrets.Get(secrets.GeminiAccount); err == nil {
		s, err := legit.NewGemini(context.Background(), key, cfg.LLM.GeminiModel)
		if err != nil {
			log.Printf("[legit] gemini disabled: %v", err)
		} else {
			scorers = append(scorers, s)
		}
	} else {
		log.Printf("[legit] gemini disabled: %v", err)
	}

	scorers = append(scorers, legit.RuleScorer{})
	return legit.NewChain(scorers...)
}
