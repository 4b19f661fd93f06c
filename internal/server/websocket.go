package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rbright/voxtrace/internal/audio"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 << 10,
	WriteBufferSize: 64 << 10,
}

// handleAudioSocket streams processing over a WebSocket. Each binary message
// is one raw PCM16LE 16 kHz mono buffer; the batch result comes back as a
// JSON frame. Text frames and malformed audio get a JSON error frame.
func (s *Server) handleAudioSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	s.logger.Info("audio socket connected", slog.String("remote", conn.RemoteAddr().String()))

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("audio socket read failed", slog.String("error", err.Error()))
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			if err := conn.WriteJSON(map[string]any{"error": "expected binary PCM16LE frame"}); err != nil {
				return
			}
			continue
		}

		buf := audio.FromPCM16LE(data)
		if len(buf) == 0 {
			if err := conn.WriteJSON(map[string]any{"error": "empty audio frame"}); err != nil {
				return
			}
			continue
		}

		res, err := s.submit(r.Context(), buf)
		if err != nil {
			_ = conn.WriteJSON(map[string]any{"error": err.Error()})
			return
		}

		frame := map[string]any{"outcomes": res.Outcomes}
		if res.Err != nil {
			frame["error"] = res.Err.Error()
		}
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}
}
