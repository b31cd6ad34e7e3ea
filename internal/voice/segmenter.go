package voice

import (
	"context"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/soyeahso/evaluet/internal/logging"
)

// sentenceMarks end a speakable segment when they appear in a token.
const sentenceMarks = ".?!\n"

// SegmenterConfig wires optional collaborators into a Segmenter.
type SegmenterConfig struct {
	// Prober is pinged every KeepAliveInterval while a synthesis call runs.
	Prober            Prober
	KeepAliveInterval time.Duration

	// OnSpeaking is told when iteration starts and when it stops.
	OnSpeaking func(bool)

	// Speakable maps buffered model text to the text sent for synthesis.
	// An empty result skips synthesis for that unit.
	Speakable func(string) string

	// Hold, when set, keeps a sentence mark from ending the segment while it
	// reports true for the buffered text.
	Hold func(string) bool
}

// Segmenter accumulates streamed tokens into sentences and synthesizes each
// one in order.
type Segmenter struct {
	synth Synthesizer
	cfg   SegmenterConfig
	log   *logging.Logger
}

// NewSegmenter creates a segmenter over the given synthesizer.
func NewSegmenter(synth Synthesizer, cfg SegmenterConfig, log *logging.Logger) *Segmenter {
	if cfg.Speakable == nil {
		cfg.Speakable = strings.TrimSpace
	}
	return &Segmenter{synth: synth, cfg: cfg, log: log.Sub("voice")}
}

// Units consumes tokens until the channel closes and yields one Unit per
// sentence. A sentence ends at the first token containing . ? ! or a newline,
// unless Hold keeps it open; whatever remains is flushed when tokens runs
// out. Whitespace-only buffers are dropped. The speaking hook is raised for
// the whole iteration and lowered on every exit, including an early break by
// the caller.
func (s *Segmenter) Units(ctx context.Context, tokens <-chan string) iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		s.speaking(true)
		defer s.speaking(false)

		var buf strings.Builder
		flush := func() bool {
			text := buf.String()
			buf.Reset()
			if strings.TrimSpace(text) == "" {
				return true
			}
			return yield(s.synthesize(ctx, text))
		}

		for {
			select {
			case tok, ok := <-tokens:
				if !ok {
					flush()
					return
				}
				buf.WriteString(tok)
				if !strings.ContainsAny(tok, sentenceMarks) || s.held(buf.String()) {
					continue
				}
				if !flush() {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Segmenter) held(buffered string) bool {
	return s.cfg.Hold != nil && s.cfg.Hold(buffered)
}

func (s *Segmenter) speaking(v bool) {
	if s.cfg.OnSpeaking != nil {
		s.cfg.OnSpeaking(v)
	}
}

func (s *Segmenter) synthesize(ctx context.Context, text string) Unit {
	u := Unit{Text: text, Spoken: s.cfg.Speakable(text)}
	if u.Spoken == "" {
		return u
	}

	audio, err := func() ([]byte, error) {
		defer s.keepWarm(ctx)()
		return s.synth.Synthesize(ctx, u.Spoken)
	}()
	if err != nil {
		s.log.Warn().Err(err).Int("chars", len(u.Spoken)).Msg("synthesis failed, continuing without audio")
		u.Err = err
		return u
	}
	u.Audio = audio
	return u
}

// keepWarm starts the probe loop and returns a func that cancels and joins it.
func (s *Segmenter) keepWarm(ctx context.Context) func() {
	if s.cfg.Prober == nil || s.cfg.KeepAliveInterval <= 0 {
		return func() {}
	}

	pctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(s.cfg.KeepAliveInterval)
		defer t.Stop()
		for {
			select {
			case <-pctx.Done():
				return
			case <-t.C:
				if err := s.cfg.Prober.KeepAlive(); err != nil {
					s.log.Debug().Err(err).Msg("keep-alive probe failed")
				}
			}
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}
