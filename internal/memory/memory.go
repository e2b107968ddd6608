package memory

import (
	"encoding/json"
	"fmt"
	log "log/slog"
	"os"
	"sync"
	"time"
)

const (
	DefaultPath     = "memory.json"
	DefaultUserName = "Swanand"
	HistoryLimit    = 20
)

type Turn struct {
	User   string `json:"user"`
	Jarvis string `json:"jarvis"`
	Time   string `json:"time"`
}

// Record is the whole persisted document. Timestamps are kept as RFC 3339
// strings so that a fresh record can hold "".
type Record struct {
	UserName     string `json:"user_name"`
	LastCommand  string `json:"last_command"`
	LastResponse string `json:"last_response"`
	LastUpdated  string `json:"last_updated"`
	History      []Turn `json:"history"`
}

// Recent returns at most n of the newest history turns, oldest first.
func (r Record) Recent(n int) []Turn {
	if n <= 0 || len(r.History) == 0 {
		return nil
	}
	if len(r.History) <= n {
		return r.History
	}
	return r.History[len(r.History)-n:]
}

type Store struct {
	mu       sync.Mutex
	path     string
	userName string
	now      func() time.Time
}

func NewStore(path, userName string) *Store {
	if path == "" {
		path = DefaultPath
	}
	if userName == "" {
		userName = DefaultUserName
	}
	return &Store{path: path, userName: userName, now: time.Now}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Default() Record {
	return Record{
		UserName: s.userName,
		History:  []Turn{},
	}
}

// Load never fails: a missing or unreadable file yields the default record.
func (s *Store) Load() Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("Failed to read memory, starting fresh", "path", s.path, "err", err)
		}
		return s.Default()
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Warn("Malformed memory, starting fresh", "path", s.path, "err", err)
		return s.Default()
	}
	if rec.History == nil {
		rec.History = []Turn{}
	}

	return rec
}

// Save rewrites the whole file. The write is not atomic; Load recovers from
// a torn file by falling back to the default record.
func (s *Store) Save(input, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.Load()

	stamp := s.now().Format(time.RFC3339)
	rec.LastCommand = input
	rec.LastResponse = response
	rec.LastUpdated = stamp

	rec.History = append(rec.History, Turn{
		User:   input,
		Jarvis: response,
		Time:   stamp,
	})
	if len(rec.History) > HistoryLimit {
		rec.History = rec.History[len(rec.History)-HistoryLimit:]
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write memory: %w", err)
	}

	return nil
}
