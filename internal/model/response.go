package model

type APIResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type LoginResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

type ServerStatus struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type InsertResult struct {
	InsertedID any `json:"insertedId"`
}

type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
