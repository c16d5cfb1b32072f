package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"recipe-chat/internal/chat"

	"github.com/coder/websocket"
)

// handleWebSocket pushes the session state on connect and after every change
// until the client goes away. Client messages are ignored.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())

	opts := &websocket.AcceptOptions{}
	if s.dev {
		opts.OriginPatterns = []string{"*"}
	}
	ws, err := websocket.Accept(w, r, opts)
	if err != nil {
		s.logger.Warn("websocket accept failed", "session_id", session.ID(), "error", err)
		return
	}
	defer ws.CloseNow()

	ctx := ws.CloseRead(r.Context())
	changes, unsubscribe := session.Subscribe()
	defer unsubscribe()

	if err := s.pushState(ctx, ws, session); err != nil {
		s.logger.Debug("websocket push failed", "session_id", session.ID(), "error", err)
		return
	}
	for {
		select {
		case <-ctx.Done():
			ws.Close(websocket.StatusNormalClosure, "session closed")
			return
		case <-s.genCtx.Done():
			ws.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case <-changes:
			if err := s.pushState(ctx, ws, session); err != nil {
				s.logger.Debug("websocket push failed", "session_id", session.ID(), "error", err)
				return
			}
		}
	}
}

func (s *Server) pushState(ctx context.Context, ws *websocket.Conn, session *chat.Session) error {
	payload, err := newStatePayload(s.templates, session)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
