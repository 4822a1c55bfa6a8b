package db

import (
	"time"

	json "github.com/goccy/go-json"
)

// UserRecord is one line of the flat user file.
type UserRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
	CreatedAt    string `json:"created_at"`
}

// PublicUser is the subset of a user record returned to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r UserRecord) Public() PublicUser {
	return PublicUser{
		ID:    r.ID,
		Name:  r.Name,
		Email: r.Email,
	}
}

// ConversationMetadata describes a saved conversation.
type ConversationMetadata struct {
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	SavedAt        time.Time `json:"saved_at"`
}

// ConversationDocument is the file body written for a saved conversation.
type ConversationDocument struct {
	Metadata     ConversationMetadata `json:"metadata"`
	Conversation []json.RawMessage    `json:"conversation"`
}
