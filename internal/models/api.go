package models

type TarotReadingRequest struct {
	Question string `json:"question" binding:"required"`
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

type FeedbackRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
}

// SessionOptionsRequest carries partial updates; nil fields keep their value.
type SessionOptionsRequest struct {
	SearchService      *string `json:"search_service"`
	Model              *string `json:"model"`
	NumRetrievedChunks *int    `json:"num_retrieved_chunks"`
	NumChatMessages    *int    `json:"num_chat_messages"`
	UseChatHistory     *bool   `json:"use_chat_history"`
	Debug              *bool   `json:"debug"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
