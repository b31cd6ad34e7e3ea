package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/soyeahso/evaluet/internal/config"
	"github.com/soyeahso/evaluet/internal/gateway"
	"github.com/soyeahso/evaluet/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show evaluet status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("evaluet %s (commit %s)\n\n", version.Version, version.Short(version.Commit))

			fmt.Printf("Config:    %s\n", paths.Config)
			fmt.Printf("Data:      %s\n", paths.Data)
			fmt.Printf("Logs:      %s\n", paths.Logs)
			fmt.Println()

			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Printf("Config:    error loading: %v\n", err)
				return nil
			}

			fmt.Printf("Server:    port=%d bind=%s\n", cfg.Server.Port, cfg.Server.Bind)
			fmt.Printf("LLM:       provider=%s model=%s report=%s key=%s\n",
				cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.ReportModel, presence(cfg.LLM.APIKey))
			fmt.Printf("Voice:     stt=%s tts=%s key=%s\n",
				cfg.Voice.STTModel, cfg.Voice.TTSModel, presence(cfg.Voice.APIKey))
			store := cfg.Store.Driver
			if store == "sqlite" {
				store += " (" + paths.Database(cfg.Store) + ")"
			}
			fmt.Printf("Store:     %s\n", store)
			fmt.Printf("Interview: limit=%s strikes=%d\n", cfg.Interview.TimeLimit, cfg.Interview.StrikeLimit)
			if cfg.Telemetry.Enabled {
				fmt.Printf("Telemetry: otlp=%s every %s\n", cfg.Telemetry.Endpoint, cfg.Telemetry.Interval)
			}

			if issues := config.Validate(&cfg); len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s\n", issue)
				}
			}

			fmt.Println()
			health, err := probeHealth(cmd.Context(), cfg.Server)
			if err != nil {
				fmt.Printf("Server:    not reachable (%v)\n", err)
				return nil
			}
			fmt.Printf("Server:    %s, version %s, %d live session(s)\n", health.Status, health.Version, health.Sessions)
			return nil
		},
	}

	return cmd
}

// probeHealth asks a locally running server for its health summary.
func probeHealth(ctx context.Context, cfg config.ServerConfig) (*gateway.HealthResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	host := "127.0.0.1"
	if cfg.Bind == "custom" && cfg.CustomBindHost != "" && cfg.CustomBindHost != "0.0.0.0" {
		host = cfg.CustomBindHost
	}
	url := "http://" + net.JoinHostPort(host, fmt.Sprint(cfg.Port)) + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health returned %s", resp.Status)
	}

	var health gateway.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, err
	}
	return &health, nil
}

func presence(secret string) string {
	if secret == "" {
		return "missing"
	}
	return "set"
}
