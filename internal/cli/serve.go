package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/soyeahso/evaluet/internal/gateway"
	"github.com/soyeahso/evaluet/internal/hooks"
	"github.com/soyeahso/evaluet/internal/interview"
	"github.com/soyeahso/evaluet/internal/jobs"
	"github.com/soyeahso/evaluet/internal/llm"
	"github.com/soyeahso/evaluet/internal/logging"
	"github.com/soyeahso/evaluet/internal/report"
	"github.com/soyeahso/evaluet/internal/telemetry"
	"github.com/soyeahso/evaluet/internal/voice"
	"github.com/soyeahso/evaluet/internal/voice/deepgram"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interview server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			if logLevel != "" {
				cfg.Logging.Level = logLevel
				cfg.Logging.ConsoleLevel = logLevel
			}
			fileLog, closeLog, err := logging.Open(logging.Options{
				Level:        cfg.Logging.Level,
				ConsoleLevel: cfg.Logging.ConsoleLevel,
				ConsoleStyle: cfg.Logging.ConsoleStyle,
				File:         cfg.Logging.File,
			})
			if err != nil {
				return err
			}
			defer closeLog.Close()
			log = fileLog

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repo, closeRepo, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			metrics, err := telemetry.New(ctx, cfg.Telemetry, log)
			if err != nil {
				return fmt.Errorf("starting telemetry: %w", err)
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := metrics.Shutdown(flushCtx); err != nil {
					log.Warn().Err(err).Msg("telemetry shutdown failed")
				}
			}()

			hookMgr := hooks.NewManager(log)
			if n := hooks.RegisterCommands(hookMgr, cfg.Hooks); n > 0 {
				log.Info().Int("hooks", n).Msg("command hooks registered")
			}
			defer func() {
				drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := hookMgr.Wait(drainCtx); err != nil {
					log.Warn().Err(err).Msg("hooks still running at exit")
				}
			}()

			roster, err := cfg.Roster()
			if err != nil {
				return fmt.Errorf("interviewer catalog: %w", err)
			}
			registry := llm.NewRegistryFromConfig(cfg.LLM, log)
			chat, err := registry.Resolve(cfg.LLM.Model)
			if err != nil {
				return fmt.Errorf("resolving interview model: %w", err)
			}
			gen, err := newReportGenerator(cfg, repo, hookMgr, metrics)
			if err != nil {
				return err
			}

			// Reports already queued finish even after a shutdown signal.
			queue := jobs.New(cfg.Reports.QueueSize, cfg.Reports.Workers, cfg.Reports.Timeout, log)
			queue.Start(context.WithoutCancel(ctx))
			defer queue.Stop()

			dg := deepgram.New(cfg.Voice, log)
			runtime := interview.NewRuntime(interview.Deps{
				Repo: repo,
				LLM:  chat,
				Listen: func(ctx context.Context) (interview.Transcriber, error) {
					s, err := dg.Listen(ctx)
					if err != nil {
						return nil, err
					}
					return s, nil
				},
				Voice:   func(model string) voice.Synthesizer { return dg.Voice(model) },
				Reports: report.Scheduler{Queue: queue, Generator: gen},
				Hooks:   hookMgr,
				Metrics: metrics,
			}, interview.SettingsFromConfig(&cfg), log)

			log.Info().
				Str("provider", cfg.LLM.Provider).
				Str("model", cfg.LLM.Model).
				Str("reportModel", cfg.LLM.ReportModel).
				Str("store", cfg.Store.Driver).
				Int("interviewers", roster.Len()).
				Msg("starting evaluet")

			srv := gateway.New(&cfg, repo, runtime, log, gateway.WithHooks(hookMgr), gateway.WithInterviewers(roster))
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (overrides config)")
	cmd.Flags().StringVar(&bind, "bind", "", "bind mode: loopback, lan, custom (overrides config)")

	return cmd
}
