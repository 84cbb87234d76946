// Command credprobe runs an SMTP credential-probing sweep against a single
// target, optionally exposing a control API for starting and inspecting
// runs remotely.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/relayaudit/credprobe/internal/api"
	"github.com/relayaudit/credprobe/internal/config"
	"github.com/relayaudit/credprobe/internal/logging"
	"github.com/relayaudit/credprobe/internal/smtp"
	"github.com/relayaudit/credprobe/internal/stats"
	"github.com/relayaudit/credprobe/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values.
type cliFlags struct {
	configPath  string
	host        string
	port        int
	usernames   string
	passwords   string
	authMethod  string
	useTLS      bool
	parallelism int
	serveAPI    bool
	jsonLogs    bool
	debug       bool
}

// parseFlags parses command-line flags and returns the values.
func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file (or CREDPROBE_CONFIG)")
	flag.StringVar(&f.host, "host", "", "Override SMTP target host")
	flag.IntVar(&f.port, "port", 0, "Override SMTP target port")
	flag.StringVar(&f.usernames, "usernames", "", "Comma-separated usernames to try")
	flag.StringVar(&f.passwords, "passwords", "", "Comma-separated passwords to try")
	flag.StringVar(&f.authMethod, "auth-method", "", "Override AUTH method: AUTO, LOGIN, PLAIN, CRAM-MD5")
	flag.BoolVar(&f.useTLS, "tls", false, "Require STARTTLS before authenticating")
	flag.IntVar(&f.parallelism, "parallelism", 0, "Override number of concurrent workers")
	flag.BoolVar(&f.serveAPI, "serve", false, "Start the control API instead of running a sweep immediately")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Enable JSON structured logging")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return f
}

// applyCLIOverrides applies command-line overrides to the config. These
// never persist back to the config file.
func applyCLIOverrides(cfg *config.Config, f cliFlags) {
	if f.host != "" {
		cfg.SMTP.Host = f.host
	}
	if f.port != 0 {
		cfg.SMTP.Port = f.port
	}
	if f.usernames != "" {
		cfg.Probe.Usernames = splitAndTrim(f.usernames)
	}
	if f.passwords != "" {
		cfg.Probe.Passwords = splitAndTrim(f.passwords)
	}
	if f.authMethod != "" {
		cfg.SMTP.AuthMethod = strings.ToUpper(f.authMethod)
	}
	if f.useTLS {
		cfg.SMTP.UseTLS = true
	}
	if f.parallelism > 0 {
		cfg.Probe.Parallelism = f.parallelism
	}
	if f.serveAPI {
		cfg.API.Enabled = true
	}
	if f.jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if f.debug {
		cfg.Logging.Level = "DEBUG"
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func run() error {
	flags := parseFlags()

	cfg, err := config.Load(config.ResolveConfigPath(flags.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyCLIOverrides(cfg, flags)

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
	})

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	probeStats := stats.NewProbe()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.API.Enabled {
		return runServer(ctx, cfg, logger, st, probeStats)
	}
	return runOnce(ctx, cfg, logger, st, probeStats)
}

// runOnce runs a single sweep against cfg.SMTP using cfg.Probe and exits
// once it completes or ctx is cancelled.
func runOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger, st *store.Store, probeStats *stats.Probe) error {
	smtpCfg := cfg.SMTP.ToSMTPConfig()
	if err := smtpCfg.Validate(); err != nil {
		return fmt.Errorf("invalid smtp config: %w", err)
	}
	params := cfg.Probe.ToParams()
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid probe config: %w", err)
	}

	id := uuid.New().String()
	logger.Info("probe starting",
		"run_id", id,
		"host", smtpCfg.Host,
		"port", smtpCfg.Port,
		"auth_method", smtpCfg.AuthMethod,
		"use_tls", smtpCfg.UseTLS,
		"parallelism", params.Parallelism,
		"usernames", len(params.Usernames),
		"passwords", len(params.Passwords),
	)

	if err := st.CreateRun(id, smtpCfg.Host, smtpCfg.Port, string(smtpCfg.AuthMethod), smtpCfg.UseTLS, params.Parallelism); err != nil {
		logger.Warn("failed to record run start", "err", err)
	}
	probeStats.RunStarted()

	onSuccess := func(o smtp.Outcome) {
		logger.Info("credential recovered", "run_id", id, "username", o.Username)
		if err := st.RecordOutcome(id, o.Username, o.Password, o.ResponseCode, o.ResponseText); err != nil {
			logger.Warn("failed to persist outcome", "err", err)
		}
	}

	orch := smtp.NewOrchestrator(smtpCfg, params, onSuccess, nil, nil)
	outcomes := orch.Run(ctx)

	attempts := orch.Attempts()
	probeStats.AddAttempts(attempts, int64(len(outcomes)))
	probeStats.RunFinished()

	status := store.StatusCompleted
	if attempts < int64(orch.TotalPlanned()) {
		status = store.StatusStoppedEarly
	}
	if ctx.Err() != nil {
		status = store.StatusAborted
	}
	if err := st.FinishRun(id, status); err != nil {
		logger.Warn("failed to record run completion", "err", err)
	}

	logger.Info("probe finished", "run_id", id, "attempts", attempts, "successes", len(outcomes), "status", status)
	for _, o := range outcomes {
		fmt.Printf("FOUND %s:%s (%d %s)\n", o.Username, o.Password, o.ResponseCode, o.ResponseText)
	}
	return nil
}

// runServer starts the control API and blocks until ctx is cancelled.
func runServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, st *store.Store, probeStats *stats.Probe) error {
	apiSrv := api.New(cfg, logger, st, probeStats)

	logger.Info("control API starting", "addr", apiSrv.Addr())

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case serveErr := <-serveErrCh:
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("API server error", "err", serveErr)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("API server shutdown error", "err", err)
	}
	logger.Info("control API stopped")
	return nil
}
