package llm

import (
	"context"
	"errors"
)

// Tokens streams a completion as plain text tokens. Any provider failure, at
// start or mid-stream, is reported to onError (if non-nil) and replaced by a
// single fallback token, after which the channel closes. The channel also
// closes when ctx is done.
func Tokens(ctx context.Context, c Client, req CompletionRequest, fallback string, onError func(error)) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		emit := func(tok string) bool {
			select {
			case out <- tok:
				return true
			case <-ctx.Done():
				return false
			}
		}
		fail := func(err error) {
			if onError != nil {
				onError(err)
			}
			if fallback != "" {
				emit(fallback)
			}
		}

		events, err := c.Stream(ctx, req)
		if err != nil {
			fail(err)
			return
		}

		for evt := range events {
			switch evt.Type {
			case EventDelta:
				if evt.Content == "" {
					continue
				}
				if !emit(evt.Content) {
					return
				}
			case EventError:
				fail(errors.New(evt.Error))
				return
			case EventDone:
				return
			}
		}
	}()

	return out
}
