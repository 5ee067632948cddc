package types

// DataResponse is the common envelope for every JSON response.
type DataResponse struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

type UploadResponse struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

type HistoryResponse struct {
	Turns []ChatTurn `json:"turns"`
}
