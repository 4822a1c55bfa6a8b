package db

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	json "github.com/goccy/go-json"
)

var conversationNamePattern = regexp.MustCompile(`^conversation_\d{8}_\d{6}_[0-9a-f]{8}\.json$`)

func TestConversationStoreSaveAndLoad(t *testing.T) {
	t.Parallel()

	store := NewConversationStore(t.TempDir())
	ctx := context.Background()

	doc := ConversationDocument{
		Metadata: ConversationMetadata{SourceLanguage: "en", TargetLanguage: "es"},
		Conversation: []json.RawMessage{
			json.RawMessage(`{"speaker":"a","text":"hello"}`),
			json.RawMessage(`{"speaker":"b","text":"hola"}`),
		},
	}

	first, err := store.SaveConversation(ctx, doc)
	if err != nil {
		t.Fatalf("SaveConversation error = %v", err)
	}
	second, err := store.SaveConversation(ctx, doc)
	if err != nil {
		t.Fatalf("SaveConversation error = %v", err)
	}
	if first == second {
		t.Fatalf("expected unique file names, got %q twice", first)
	}
	if !conversationNamePattern.MatchString(first) {
		t.Fatalf("unexpected file name %q", first)
	}

	loaded, err := store.LoadConversation(ctx, first)
	if err != nil {
		t.Fatalf("LoadConversation error = %v", err)
	}
	if loaded.Metadata.TargetLanguage != "es" || len(loaded.Conversation) != 2 {
		t.Fatalf("unexpected document: %+v", loaded)
	}
	if loaded.Metadata.SavedAt.IsZero() {
		t.Fatalf("expected saved_at to be stamped")
	}
}

func TestConversationStoreLoadRejectsTraversal(t *testing.T) {
	t.Parallel()

	store := NewConversationStore(t.TempDir())
	if _, err := store.LoadConversation(context.Background(), "../users.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConversationStoreCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewConversationStore(filepath.Join(t.TempDir(), "missing"))
	if n, err := store.CountConversations(ctx); err != nil || n != 0 {
		t.Fatalf("missing dir: n=%d err=%v", n, err)
	}
	for i := 0; i < 3; i++ {
		if _, err := store.SaveConversation(ctx, ConversationDocument{}); err != nil {
			t.Fatalf("SaveConversation error = %v", err)
		}
	}
	if n, err := store.CountConversations(ctx); err != nil || n != 3 {
		t.Fatalf("expected 3 conversations, got n=%d err=%v", n, err)
	}
}
