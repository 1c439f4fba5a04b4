package transport

// ChatRequest is one user message.
type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty" validate:"omitempty,max=128"`
	Message   string `json:"message" validate:"required,notblank,max=4000"`
}

// ChatResponse is the assistant's answer.
type ChatResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
}
