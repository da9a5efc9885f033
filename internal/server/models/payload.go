package models

// Payload is the identity carried by both access and refresh tokens.
type Payload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
