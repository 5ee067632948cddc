package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/docchat-io/docchat-be/types"
)

// WebSocketService streams answers over a WebSocket connection. Each chat
// frame runs the same query plan as the HTTP endpoint; generated tokens are
// forwarded as they arrive, followed by a final frame with the whole answer.
type WebSocketService struct {
	chat     *ChatService
	upgrader websocket.Upgrader
}

func NewWebSocketService(chat *ChatService) *WebSocketService {
	return &WebSocketService{
		chat: chat,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			s.writeError(conn, "invalid message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketChat:
			payloadBytes, err := json.Marshal(req.Payload)
			if err != nil {
				s.writeError(conn, "invalid payload")
				continue
			}
			var payload types.WebsocketChatPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				s.writeError(conn, "invalid payload")
				continue
			}
			s.handleChatFrame(ctx, conn, userID, payload)
		case types.TypeWebsocketPing:
			conn.WriteJSON(types.WebsocketResponse{
				Type: types.TypeWebsocketPong,
			})
		default:
			s.writeError(conn, "unknown message type")
		}
	}
}

func (s *WebSocketService) handleChatFrame(ctx context.Context, conn *websocket.Conn, userID string, payload types.WebsocketChatPayload) {
	answer, err := s.chat.AnswerStream(ctx, userID, types.ChatRequest{
		DocumentID: payload.DocumentID,
		Question:   payload.Question,
	}, func(token string) {
		conn.WriteJSON(types.WebsocketResponse{
			Type:    types.TypeWebsocketToken,
			Payload: token,
		})
	})
	if err != nil && answer == "" {
		log.Println("WebSocket chat error:", err)
		s.writeError(conn, types.ErrorCode(err))
		return
	}
	if err != nil {
		// The answer exists but recording it failed; the client still gets
		// the answer and the failure stays in the logs.
		log.Println("WebSocket chat persistence error:", err)
	}
	conn.WriteJSON(types.WebsocketResponse{
		Type:    types.TypeWebsocketDone,
		Payload: types.ChatResponse{Answer: answer},
	})
}

func (s *WebSocketService) writeError(conn *websocket.Conn, message string) {
	conn.WriteJSON(types.WebsocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: message,
	})
}
