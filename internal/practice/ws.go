package practice

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// The practice server accepts any origin; it only ever runs locally.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsFrame mirrors the chat package's message shape.
type wsFrame struct {
	Type   string    `json:"type"`
	Sender string    `json:"sender,omitempty"`
	Body   string    `json:"body,omitempty"`
	SentAt time.Time `json:"sent_at,omitempty"`
}

// handleChat is the chat placeholder's endpoint: it echoes every frame back
// stamped with a receive time. Good enough for keep-alive and send/receive
// practice; there is no room fan-out.
func (s *Server) handleChat(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = ws.Close() }()

	for {
		var frame wsFrame
		if err := ws.ReadJSON(&frame); err != nil {
			return
		}
		frame.SentAt = time.Now().UTC()
		if err := ws.WriteJSON(frame); err != nil {
			return
		}
	}
}
