// Package audit appends one JSONL record per analysis run. The log is the
// forensic trail for rejected queries and executed code, so every free-text
// field is redacted before it touches disk.
package audit

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/insightlabs/insightstream/internal/redact"
)

// Event is a single audit record. Decision is one of "rejected", "executed",
// "offline", "invalid", "denied", or "error".
type Event struct {
	Timestamp      string   `json:"timestamp"`
	RunID          string   `json:"run_id"`
	Query          string   `json:"query"`
	Decision       string   `json:"decision"`
	TriggeredRules []string `json:"triggered_rules,omitempty"`
	Mode           string   `json:"mode"`
	Model          string   `json:"model,omitempty"`
	Code           string   `json:"code,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// defaultMaxLogBytes caps the live log; past this the file is rotated to a
// single .1 backup.
const defaultMaxLogBytes = 5 << 20

// Logger appends events to a JSONL file. Safe for concurrent use.
type Logger struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func New(path string) (*Logger, error) {
	file, err := openRotated(path)
	if err != nil {
		return nil, err
	}
	return &Logger{path: path, file: file}, nil
}

func openRotated(path string) (*os.File, error) {
	if info, err := os.Stat(path); err == nil && info.Size() >= defaultMaxLogBytes {
		// Best effort: a failed rename just means we keep appending.
		_ = os.Rename(path, path+".1")
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// Log writes one event. Missing timestamp and run ID are filled in.
func (l *Logger) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if info, err := l.file.Stat(); err == nil && info.Size() >= defaultMaxLogBytes {
		if fresh, err := rotate(l.path, l.file); err == nil {
			l.file = fresh
		}
	}

	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if event.RunID == "" {
		event.RunID = uuid.NewString()
	}

	event.Query = redact.Redact(event.Query)
	if event.Code != "" {
		event.Code = redact.Redact(event.Code)
	}
	if event.Error != "" {
		event.Error = redact.Redact(event.Error)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

func rotate(path string, old *os.File) (*os.File, error) {
	_ = old.Close()
	if err := os.Rename(path, path+".1"); err != nil {
		return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
