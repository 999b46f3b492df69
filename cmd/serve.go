package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/algotutor/internal/admission"
	"github.com/abhisek/algotutor/internal/config"
	httpapi "github.com/abhisek/algotutor/internal/http"
	httpH "github.com/abhisek/algotutor/internal/http/handlers"
	"github.com/abhisek/algotutor/internal/llm"
	"github.com/abhisek/algotutor/internal/logger"
	"github.com/abhisek/algotutor/internal/prompt"
	"github.com/abhisek/algotutor/internal/session"
	"github.com/abhisek/algotutor/internal/store"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tutoring API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides TUTOR_ADDR)")
}

// serverConfig loads the environment config and applies command-line
// overrides.
func serverConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Addr = v
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.CatalogPath = v
	}
	if cmd.Flags().Changed("db") || cmd.Flags().Changed("db-driver") {
		if cfg.DBDriver, cfg.DB, err = resolveDB(cmd); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

func runServe(cmd *cobra.Command) error {
	cfg, err := serverConfig(cmd)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	graph, err := loadCatalog(cmd)
	if err != nil {
		log.Fatal("topic catalog failed to load", "path", cfg.CatalogPath, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		gw     store.Gateway
		events store.EventRepo
	)
	st, err := store.Open(cfg.DBDriver, cfg.DB)
	if err != nil {
		log.Warn("database unavailable at startup, serving offline", "driver", cfg.DBDriver, "error", err)
		gw = store.Unreachable{Err: err}
	} else {
		defer st.Close()
		gw, events = st, st.EventRepo()
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, events, log.With("component", "llm"))
	if err != nil {
		log.Error("LLM provider not configured, model features unavailable", "provider", cfg.LLM.Provider, "error", err)
		provider = llm.Unavailable(err)
	}

	svc := session.New(session.Deps{
		Gateway:  gw,
		Graph:    graph,
		Compiler: prompt.NewCompiler(graph, cfg.InstructionLanguage),
		Provider: provider,
		Logger:   log.With("component", "session"),
	}, session.Config{
		ModePolicy:  cfg.ModePolicy,
		MaxTokens:   session.DefaultConfig().MaxTokens,
		Temperature: session.DefaultConfig().Temperature,
	})

	g, gctx := errgroup.WithContext(ctx)

	var limiter admission.Limiter
	if cfg.RedisAddr != "" {
		rl, err := admission.NewRedisLimiter(ctx, cfg.RedisAddr, cfg.RateLimit, log)
		if err != nil {
			log.Warn("redis unavailable, admission counters stay in memory", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rl.Close()
			limiter = rl
		}
	}
	if limiter == nil {
		ml := admission.NewMemoryLimiter(cfg.RateLimit)
		g.Go(func() error {
			ml.RunSweeper(gctx, cfg.RateLimit.Window)
			return nil
		})
		limiter = ml
	}

	srv := httpapi.NewServer(cfg.Addr, httpapi.RouterConfig{
		SessionHandler: httpH.NewSessionHandler(svc),
		TopicHandler:   httpH.NewTopicHandler(graph),
		HealthHandler:  httpH.NewHealthHandler(svc.Mode),
		CORSOrigins:    cfg.CORSOrigins,
		Limiter:        limiter,
		Logger:         log.With("component", "http"),
	})

	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr(), "provider", cfg.LLM.Provider,
			"model", provider.ModelID(), "mode_policy", cfg.ModePolicy, "topics", graph.Len())
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
