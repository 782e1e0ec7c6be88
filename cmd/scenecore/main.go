package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/webforge/scenecore/internal/config"
	"github.com/webforge/scenecore/internal/data"
	"github.com/webforge/scenecore/internal/editor"
	gonet "github.com/webforge/scenecore/internal/net"
	"github.com/webforge/scenecore/internal/persist"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            scenecore  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        scene editor engine core           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mInstance:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main editor logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Scene store: PostgreSQL when enabled, in-memory otherwise
	printSection("Scene store")
	var store persist.SceneStore
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := db.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("schema at version %d", version))
		store = persist.NewSceneRepo(db)
	} else {
		store = persist.NewMemoryStore()
		printOK("in-memory store (database disabled)")
	}
	fmt.Println()

	// 4. Load data tables
	printSection("Data")
	templates, err := data.LoadTemplateTable(cfg.Data.TemplatesPath)
	if err != nil {
		return fmt.Errorf("load entity templates: %w", err)
	}
	printStat("entity templates", templates.Count())

	bindings, err := data.LoadInputBindings(cfg.Data.BindingsPath)
	if err != nil {
		return fmt.Errorf("load input bindings: %w", err)
	}
	printStat("input bindings", len(bindings))
	fmt.Println()

	// 5. Editor core
	ed, err := editor.New(editor.Options{
		Editor:    cfg.Editor,
		Scripting: cfg.Scripting,
		Templates: templates,
		Bindings:  bindings,
		Store:     store,
	}, log)
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	printStat("commands", len(ed.Commands()))

	// 6. Network
	hub := gonet.NewHub(log.With(zap.String("component", "hub")))
	ed.AddSink(hub)
	wsServer := gonet.NewServer(cfg.Network, ed, hub, log.With(zap.String("component", "net")))
	httpServer := &http.Server{
		Addr:              cfg.Network.BindAddress,
		Handler:           wsServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printSection("Ready")
	printReady(fmt.Sprintf("listening on %s", cfg.Network.BindAddress))
	printReady(fmt.Sprintf("editor loop started (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.Network.TickRate)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ed.Tick(cfg.Network.TickRate)
			case <-gctx.Done():
				return nil
			}
		}
	})

	err = g.Wait()
	log.Info("shutting down", zap.Uint64("ticks", ed.Ticks()))

	// The loop has stopped; the scene is safe to read from here.
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cfg.Database.Enabled && cfg.Editor.AutosaveName != "" {
		if serr := ed.SaveToStore(saveCtx, cfg.Editor.AutosaveName); serr != nil {
			log.Error("final save failed", zap.Error(serr))
		}
	}
	ed.Close()
	hub.CloseAll()
	log.Info("editor stopped")
	return err
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
