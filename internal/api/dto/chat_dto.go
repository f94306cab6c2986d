package dto

// ChatRequest is one conversational turn.
type ChatRequest struct {
	Input      string `json:"input"`
	EndSession bool   `json:"endSession"`
}

// ChatResponse carries the assembled agent completion.
type ChatResponse struct {
	Response string `json:"response"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
