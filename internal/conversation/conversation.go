// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package conversation keeps the per-session record of questions and
// explanations. The log is append-only and is never fed back into prompts.
package conversation

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role is who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the log.
type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Log is an append-only list of turns, safe for concurrent use.
type Log struct {
	mu    sync.RWMutex
	turns []Turn
}

// Append adds turns in order. Turns appended in one call are never
// interleaved with turns of another call.
func (l *Log) Append(turns ...Turn) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range turns {
		if t.At.IsZero() {
			t.At = now
		}
		l.turns = append(l.turns, t)
	}
}

// All returns a copy of every turn.
func (l *Log) All() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// WriteJSONL writes one JSON object per turn.
func (l *Log) WriteJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, t := range l.All() {
		if err := enc.Encode(t); err != nil {
			return err
		}
	}
	return nil
}

// Session is the context of one user's conversation. It is owned by the
// caller; dropping it ends the session.
type Session struct {
	ID        string
	StartedAt time.Time
	Log       *Log
}

// NewSession starts a session with an empty log.
func NewSession() *Session {
	return &Session{ID: uuid.NewString(), StartedAt: time.Now(), Log: &Log{}}
}

// Save writes the session transcript to dir/<id>.jsonl and returns the path.
func (s *Session) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	p := filepath.Join(dir, s.ID+".jsonl")
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", err
	}
	if err := s.Log.WriteJSONL(f); err != nil {
		f.Close()
		return "", err
	}
	return p, f.Close()
}
