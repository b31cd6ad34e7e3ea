package interview

import (
	"encoding/json"

	"github.com/soyeahso/evaluet/internal/logging"
)

// runIngress reads client frames until the socket fails or the client asks
// to end. Audio goes to the transcriber only while the assistant is silent.
// It always leaves shutdown requested and never returns an error.
func runIngress(conn ClientConn, stt Transcriber, state *State, clock *Clock, log *logging.Logger) {
	defer state.RequestShutdown()

	var dropped int
	for {
		f, err := conn.Read()
		if err != nil {
			if clock.End(EndClientDisconnect) {
				log.Info().Err(err).Msg("client socket closed")
			}
			return
		}
		if state.ShutdownRequested() {
			return
		}

		if f.Binary {
			if state.AssistantSpeaking() {
				dropped++
				continue
			}
			if dropped > 0 {
				log.Debug().Int("frames", dropped).Msg("dropped audio while speaking")
				dropped = 0
			}
			if err := stt.SendAudio(f.Data); err != nil {
				log.Debug().Err(err).Msg("forwarding audio failed")
			}
			continue
		}

		var msg ControlEvent
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			continue
		}
		if msg.Type == eventControl && msg.Action == actionEnd {
			clock.End(EndClientRequest)
			log.Info().Msg("client ended interview")
			return
		}
	}
}
