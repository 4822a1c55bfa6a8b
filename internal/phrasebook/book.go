package phrasebook

import (
	_ "embed"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
)

//go:embed data/phrasebook.json
var rawBook []byte

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type Phrase struct {
	ID            int    `json:"id"`
	English       string `json:"english"`
	Translation   string `json:"translation"`
	Pronunciation string `json:"pronunciation"`
}

type PracticeQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type categoryPhrases struct {
	Category string   `json:"category"`
	Items    []Phrase `json:"items"`
}

// Book is the static phrasebook content.
type Book struct {
	Categories        []Category         `json:"categories"`
	Sections          []categoryPhrases  `json:"phrases"`
	PracticeQuestions []PracticeQuestion `json:"practice_questions"`
}

var (
	bookOnce sync.Once
	book     *Book
	bookErr  error
)

// Default returns the embedded phrasebook, parsed once.
func Default() (*Book, error) {
	bookOnce.Do(func() {
		book, bookErr = Parse(rawBook)
	})
	return book, bookErr
}

func Parse(raw []byte) (*Book, error) {
	var b Book
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode phrasebook: %w", err)
	}
	if len(b.Categories) == 0 {
		return nil, fmt.Errorf("phrasebook has no categories")
	}
	return &b, nil
}

// PhrasesByCategory returns phrases keyed by category id.
func (b *Book) PhrasesByCategory() map[string][]Phrase {
	out := make(map[string][]Phrase, len(b.Sections))
	for _, section := range b.Sections {
		out[section.Category] = section.Items
	}
	return out
}

// CategoryName returns the display name for id, or id itself.
func (b *Book) CategoryName(id string) string {
	for _, category := range b.Categories {
		if category.ID == id {
			return category.Name
		}
	}
	return id
}

// HasPhrase reports whether id belongs to any category.
func (b *Book) HasPhrase(id int) bool {
	for _, section := range b.Sections {
		for _, phrase := range section.Items {
			if phrase.ID == id {
				return true
			}
		}
	}
	return false
}
