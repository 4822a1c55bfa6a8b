package payloadschema

import (
	"errors"
	"testing"
)

func TestDecode_TextTranslate(t *testing.T) {
	t.Parallel()

	var req struct {
		Text       string `json:"text"`
		SourceLang string `json:"source_lang"`
		TargetLang string `json:"target_lang"`
	}
	if err := Decode(TextTranslate, []byte(`{"text":"Hello","target_lang":"es"}`), &req); err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if req.Text != "Hello" || req.TargetLang != "es" {
		t.Fatalf("unexpected decoded request: %+v", req)
	}
}

func TestDecode_EmptyBodyIsEmptyObject(t *testing.T) {
	t.Parallel()

	var req struct {
		Text string `json:"text"`
	}
	if err := Decode(DetectLanguage, nil, &req); err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if req.Text != "" {
		t.Fatalf("expected empty text, got %q", req.Text)
	}
}

func TestDecode_RejectsWrongType(t *testing.T) {
	t.Parallel()

	err := Decode(TextTranslate, []byte(`{"text":42}`), nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["text"]; !ok {
		t.Fatalf("expected text field error, got %v", ve.Fields)
	}
}

func TestDecode_RejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	err := Decode(Login, []byte(`{"email":`), nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields["body"] == "" {
		t.Fatalf("expected body error, got %v", ve.Fields)
	}
}

func TestDecode_RejectsTrailingContent(t *testing.T) {
	t.Parallel()

	if err := Decode(Login, []byte(`{} {}`), nil); err == nil {
		t.Fatalf("expected trailing content to be rejected")
	}
}

func TestDecode_SaveConversationRequiresArray(t *testing.T) {
	t.Parallel()

	err := Decode(SaveConversation, []byte(`{"conversation":"hello"}`), nil)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields["conversation"] == "" {
		t.Fatalf("expected conversation field error, got %v", err)
	}

	if err := Decode(SaveConversation, []byte(`{"conversation":[{"a":1}],"source_lang":"en"}`), nil); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestDecode_FavoriteRequiresInteger(t *testing.T) {
	t.Parallel()

	var req struct {
		PhraseID *int `json:"phraseId"`
	}
	if err := Decode(Favorite, []byte(`{"phraseId":12}`), &req); err != nil {
		t.Fatalf("Decode error = %v", err)
	}
	if req.PhraseID == nil || *req.PhraseID != 12 {
		t.Fatalf("unexpected phraseId %v", req.PhraseID)
	}
	if err := Decode(Favorite, []byte(`{"phraseId":"12"}`), nil); err == nil {
		t.Fatalf("expected string phraseId to be rejected")
	}
}

func TestDecode_PhrasebookDownloadLanguagePattern(t *testing.T) {
	t.Parallel()

	if err := Decode(PhrasebookDownload, []byte(`{"language":"es"}`), nil); err != nil {
		t.Fatalf("expected es to be accepted, got %v", err)
	}
	if err := Decode(PhrasebookDownload, []byte(`{"language":"../etc"}`), nil); err == nil {
		t.Fatalf("expected path-like language to be rejected")
	}
}

func TestAllSchemasCompile(t *testing.T) {
	t.Parallel()

	for _, schema := range allSchemas {
		if _, err := loadSchema(schema); err != nil {
			t.Fatalf("load %s: %v", schema, err)
		}
	}
}
