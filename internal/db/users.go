package db

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrUserExists = errors.New("user already exists")
)

// UserStore keeps user records as JSON lines in a single append-only file.
// Emails are matched case-sensitively.
type UserStore struct {
	path string
	mu   sync.RWMutex
}

func NewUserStore(path string) *UserStore {
	return &UserStore{path: strings.TrimSpace(path)}
}

func (s *UserStore) Path() string {
	return s.path
}

// FindUserByEmail scans the file and returns the last record for email.
func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Email == email {
			record := records[i]
			return &record, nil
		}
	}
	return nil, ErrNotFound
}

// CreateUser appends record unless its email is already present.
func (s *UserStore) CreateUser(ctx context.Context, record UserRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(record.Email) == "" {
		return fmt.Errorf("email is required")
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}
	for _, existing := range records {
		if existing.Email == record.Email {
			return ErrUserExists
		}
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create users dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open users file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append user: %w", err)
	}
	return f.Close()
}

// CountUsers returns the number of well-formed records.
func (s *UserStore) CountUsers(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.readAll()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// readAll skips blank and malformed lines. A missing file is empty.
func (s *UserStore) readAll() ([]UserRecord, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read users file: %w", err)
	}

	var records []UserRecord
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record UserRecord
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		if record.Email == "" {
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan users file: %w", err)
	}
	return records, nil
}
