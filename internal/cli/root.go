package cli

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/soyeahso/evaluet/internal/config"
	"github.com/soyeahso/evaluet/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluet",
		Short: "Live voice interviews with an AI interviewer",
		Long:  "evaluet runs spoken mock interviews: it streams candidate audio to speech-to-text, lets an LLM interview the candidate out loud, and writes a scored report afterwards.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			for _, f := range []string{".env", paths.Env} {
				if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.evaluet/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newReportCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
