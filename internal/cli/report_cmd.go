package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/evaluet/internal/domain"
	"github.com/soyeahso/evaluet/internal/hooks"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Manage interview reports",
	}
	cmd.AddCommand(newReportRegenerateCmd())
	return cmd
}

func newReportRegenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate <session-id>",
		Short: "Retry report generation for a failed or pending session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repo, closeRepo, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			sess, err := repo.LoadSession(ctx, id)
			if err != nil {
				return err
			}
			switch sess.Status {
			case domain.StatusActive:
				return fmt.Errorf("session %s is still active", id)
			case domain.StatusCompleted:
				return fmt.Errorf("session %s already has a report", id)
			case domain.StatusFailed:
				if err := repo.SetStatus(ctx, id, domain.StatusPendingReport); err != nil {
					return err
				}
			}

			hookMgr := hooks.NewManager(log)
			hooks.RegisterCommands(hookMgr, cfg.Hooks)

			gen, err := newReportGenerator(cfg, repo, hookMgr, nil)
			if err != nil {
				return err
			}
			rep, err := gen.Generate(ctx, id)
			if err != nil {
				return fmt.Errorf("report generation failed: %w", err)
			}
			if rep == nil {
				fmt.Printf("Session %s needs no report.\n", id)
				return nil
			}

			fmt.Printf("Session %s scored %d/10\n\n%s\n", id, rep.Score, rep.Body)
			return nil
		},
	}
}
