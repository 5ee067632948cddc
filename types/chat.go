package types

// ChatTurn is one answered question, owned by a user and scoped to a document.
type ChatTurn struct {
	ID         string `json:"id" bson:"_id"`
	UserID     string `json:"user_id" bson:"user_id"`
	DocumentID string `json:"document_id" bson:"document_id"`
	Question   string `json:"question" bson:"question"`
	Answer     string `json:"answer" bson:"answer"`
	CreatedAt  int64  `json:"created_at" bson:"created_at"`
}

const (
	TypeWebsocketChat  = "chat"
	TypeWebsocketToken = "token"
	TypeWebsocketDone  = "done"
	TypeWebsocketError = "error"
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketChatPayload struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}

// StreamHandler receives answer fragments as the generator produces them.
type StreamHandler func(token string)
