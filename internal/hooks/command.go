package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/soyeahso/evaluet/internal/config"
)

// DefaultCommandTimeout bounds a hook command without an explicit timeout.
const DefaultCommandTimeout = 30 * time.Second

// CommandHandler runs an external command for each event. The JSON payload
// is written to the command's stdin and the event name is exported as
// EVALUET_EVENT. A non-zero exit is reported as an error with the command's
// combined output.
func CommandHandler(entry config.HookEntry) Handler {
	timeout := DefaultCommandTimeout
	if entry.Timeout > 0 {
		timeout = time.Duration(entry.Timeout) * time.Millisecond
	}

	return func(ctx context.Context, p Payload) error {
		input, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, entry.Command, entry.Args...)
		cmd.Stdin = bytes.NewReader(input)
		cmd.Env = append(os.Environ(), "EVALUET_EVENT="+p.Event)

		out, err := cmd.CombinedOutput()
		if err != nil {
			if msg := strings.TrimSpace(string(out)); msg != "" {
				return fmt.Errorf("%s: %w: %s", entry.Command, err, msg)
			}
			return fmt.Errorf("%s: %w", entry.Command, err)
		}
		return nil
	}
}

// RegisterCommands attaches the configured command hooks to m.
func RegisterCommands(m *Manager, cfg config.HooksConfig) int {
	n := 0
	for event, entries := range map[string][]config.HookEntry{
		EventSessionEnd:   cfg.SessionEnd,
		EventReportReady:  cfg.ReportReady,
		EventReportFailed: cfg.ReportFailed,
	} {
		for i, e := range entries {
			name := fmt.Sprintf("cmd:%s#%d", filepath.Base(e.Command), i)
			m.On(event, name, CommandHandler(e))
			n++
		}
	}
	return n
}
