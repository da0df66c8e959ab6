package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/auth"
	"github.com/abhisek/quizcraft/internal/config"
	"github.com/abhisek/quizcraft/internal/difficulty"
	"github.com/abhisek/quizcraft/internal/discovery"
	"github.com/abhisek/quizcraft/internal/draft"
	"github.com/abhisek/quizcraft/internal/events"
	"github.com/abhisek/quizcraft/internal/metrics"
	"github.com/abhisek/quizcraft/internal/questiongen"
	"github.com/abhisek/quizcraft/internal/server"
	"github.com/abhisek/quizcraft/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides QUIZCRAFT_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	cfg, log := e.cfg, e.log
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	var gen questiongen.Generator
	if g, err := e.generator(ctx); err != nil {
		log.Warn("question generation disabled", "error", err)
	} else {
		gen = g
	}

	drafts, closeDrafts, err := openDrafts(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDrafts()

	publisher, err := events.Dial(cfg.AMQPURL, log)
	if err != nil {
		return fmt.Errorf("connect event broker: %w", err)
	}
	defer publisher.Close()

	signer, err := newSigner(cfg)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		log.Warn("QUIZCRAFT_JWT_SECRET not set; using an ephemeral secret")
	}

	m := metrics.New()
	svc := service.New(service.Deps{
		Quizzes:   e.backend.Quizzes(),
		Attempts:  e.backend.Attempts(),
		Drafts:    drafts,
		Generator: gen,
		Publisher: publisher,
		Metrics:   m,
		Adjuster:  difficulty.New(cfg.Thresholds),
		Log:       log,
	})

	reaper := svc.Reaper(cfg.ReapInterval)
	reaper.Start(ctx)
	defer reaper.Stop()

	if cfg.ConsulAddr != "" {
		reg, err := registerService(cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := reg.Deregister(); err != nil {
				log.Warn("consul deregister", "error", err)
			}
		}()
	}

	srv := server.New(server.Options{
		Service:     svc,
		Signer:      signer,
		Metrics:     m,
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		Health:      e.backend.Ping,
	})
	return srv.Run(ctx, cfg.Addr)
}

// openDrafts uses Redis when configured so sessions survive restarts and
// are shared between instances.
func openDrafts(ctx context.Context, cfg config.Config) (draft.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return draft.NewMemoryStore(), func() {}, nil
	}
	rs, err := draft.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return rs, func() { _ = rs.Close() }, nil
}

// newSigner refuses to run production without a configured secret.
func newSigner(cfg config.Config) (*auth.Signer, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.Production() {
			return nil, fmt.Errorf("QUIZCRAFT_JWT_SECRET is required when QUIZCRAFT_ENV=%s", cfg.Env)
		}
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
	}
	return auth.NewSigner(secret, cfg.TokenTTL)
}

func registerService(cfg config.Config, log *slog.Logger) (*discovery.Registry, error) {
	_, portStr, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("parse listen address %q: %w", cfg.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("parse port %q: %w", portStr, err)
	}
	reg, err := discovery.NewRegistry(cfg.ConsulAddr, discovery.Registration{
		ID:      cfg.ServiceID,
		Name:    "quizcraft",
		Address: cfg.ServiceHost,
		Port:    port,
		Tags:    []string{"api", cfg.Env},
	}, log)
	if err != nil {
		return nil, err
	}
	if err := reg.Register(); err != nil {
		return nil, fmt.Errorf("consul register: %w", err)
	}
	log.Info("registered with consul", "addr", cfg.ConsulAddr, "id", cfg.ServiceID)
	return reg, nil
}
