package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// resolveRequest is a WebSocket request frame. Clients may also send the
// bare link as a text frame.
type resolveRequest struct {
	URL string `json:"url"`
}

// handleWebSocket upgrades the connection and answers every received link
// with a ResolveResponse, in order. A UI shell keeps one connection open
// and streams intercepted links through it.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(s.config.MaxMessageSize)
	ctx := r.Context()

	for {
		conn.SetReadDeadline(time.Now().Add(s.config.WSIdleTimeout))

		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("websocket read error", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			s.logger.Warn("websocket frame ignored", "type", msgType)
			continue
		}

		rawURL, ok := decodeResolveRequest(msg)
		var reply ResolveResponse
		if !ok {
			reply = ResolveResponse{URL: rawURL, Routes: []RouteView{}, Error: "malformed request"}
		} else {
			res, err := s.service.Resolve(ctx, rawURL)
			if err != nil {
				s.logger.Error("resolve failed", "error", err)
			}
			reply = resolveResponse(rawURL, res, err)
		}

		conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}

// decodeResolveRequest accepts a JSON request object or a bare link.
func decodeResolveRequest(msg []byte) (string, bool) {
	text := strings.TrimSpace(string(msg))
	if !strings.HasPrefix(text, "{") {
		return text, text != ""
	}
	var req resolveRequest
	if err := json.Unmarshal(msg, &req); err != nil || req.URL == "" {
		return "", false
	}
	return req.URL, true
}
