package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"horse.fit/babel/internal/globaltime"
)

// ConversationStore writes one JSON document per saved conversation.
type ConversationStore struct {
	dir string
}

func NewConversationStore(dir string) *ConversationStore {
	return &ConversationStore{dir: strings.TrimSpace(dir)}
}

func (s *ConversationStore) Dir() string {
	return s.dir
}

// SaveConversation stores doc and returns the generated file name. The
// timestamp in the name uses the local clock; a short random suffix keeps
// saves within the same second apart.
func (s *ConversationStore) SaveConversation(ctx context.Context, doc ConversationDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create conversations dir: %w", err)
	}

	now := globaltime.Local()
	if doc.Metadata.SavedAt.IsZero() {
		doc.Metadata.SavedAt = now
	}
	filename := fmt.Sprintf("conversation_%s_%s.json", now.Format("20060102_150405"), uuid.NewString()[:8])

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal conversation: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".conversation-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create conversation temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write conversation: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close conversation: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, filename)); err != nil {
		return "", fmt.Errorf("publish conversation: %w", err)
	}
	return filename, nil
}

// LoadConversation reads a previously saved document by file name.
func (s *ConversationStore) LoadConversation(ctx context.Context, filename string) (*ConversationDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) || !strings.HasPrefix(name, "conversation_") {
		return nil, ErrNotFound
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	var doc ConversationDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return &doc, nil
}

// CountConversations reports how many saved documents the directory holds.
// A missing directory counts as empty.
func (s *ConversationStore) CountConversations(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, "conversation_*.json"))
	if err != nil {
		return 0, fmt.Errorf("list conversations: %w", err)
	}
	return len(matches), nil
}
