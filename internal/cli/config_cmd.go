package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/soyeahso/evaluet/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(redact(cfg))
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			issues := config.Validate(&cfg)
			if len(issues) == 0 {
				fmt.Println("Config OK")
				return nil
			}
			for _, issue := range issues {
				fmt.Printf("  - %s\n", issue)
			}
			return fmt.Errorf("%d validation issue(s)", len(issues))
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(paths.Config); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", paths.Config)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := paths.EnsureDirs(); err != nil {
				return err
			}
			// Defaults keep ${GROQ_API_KEY} and ${DEEPGRAM_API_KEY} unexpanded.
			if err := config.Save(paths.Config, config.Defaults()); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", paths.Config)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(paths.Config)
		},
	}
}

// redact blanks credentials that Load has already expanded from the environment.
func redact(cfg config.Config) config.Config {
	if cfg.LLM.APIKey != "" {
		cfg.LLM.APIKey = redacted
	}
	if cfg.Voice.APIKey != "" {
		cfg.Voice.APIKey = redacted
	}
	return cfg
}
