// Package voice bridges streamed model text to speech synthesis.
package voice

import "context"

// Synthesizer turns a sentence into audio. Implementations are stateless.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Prober keeps an idle upstream connection warm while synthesis runs.
type Prober interface {
	KeepAlive() error
}

// Unit is one synthesized sentence. Text is the exact buffered model text,
// Spoken the form sent to the synthesizer. Audio is empty when synthesis was
// skipped or failed; Err carries the failure.
type Unit struct {
	Audio  []byte
	Text   string
	Spoken string
	Err    error
}
