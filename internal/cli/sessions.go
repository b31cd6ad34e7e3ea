package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect stored interview sessions",
	}
	cmd.AddCommand(newSessionsListCmd())
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repo, closeRepo, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			sessions, err := repo.ListSessions(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions.")
				return nil
			}

			fmt.Printf("%-36s  %-15s  %5s  %-19s  %s\n", "ID", "STATUS", "TURNS", "CREATED", "ROLE")
			for _, s := range sessions {
				fmt.Printf("%-36s  %-15s  %5d  %-19s  %s\n",
					s.ID, s.Status, len(s.Transcript), s.CreatedAt.Local().Format(time.DateTime), s.JobRole)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of sessions to show")
	return cmd
}
