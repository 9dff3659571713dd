// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

func TestAPIKeyLifecycle(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))

	if _, err := m.LoadAPIKey("groq"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadAPIKey() on empty ring error = %v, want ErrNotFound", err)
	}

	if err := m.SaveAPIKey("Groq", "  gsk_test  "); err != nil {
		t.Fatalf("SaveAPIKey() error = %v", err)
	}
	got, err := m.LoadAPIKey("groq")
	if err != nil {
		t.Fatalf("LoadAPIKey() error = %v", err)
	}
	if got != "gsk_test" {
		t.Errorf("LoadAPIKey() = %q, want trimmed key", got)
	}

	if _, err := m.LoadAPIKey("gemini"); !errors.Is(err, ErrNotFound) {
		t.Errorf("keys must be per provider, got err = %v", err)
	}

	if err := m.ClearAPIKey("groq"); err != nil {
		t.Fatalf("ClearAPIKey() error = %v", err)
	}
	if err := m.ClearAPIKey("groq"); err != nil {
		t.Errorf("clearing a missing key should not fail: %v", err)
	}
	if _, err := m.LoadAPIKey("groq"); !errors.Is(err, ErrNotFound) {
		t.Errorf("key still present after ClearAPIKey")
	}
}

func TestSaveAPIKeyRejectsEmpty(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))
	if err := m.SaveAPIKey("groq", "   "); err == nil {
		t.Error("expected error for blank key")
	}
}

func TestAPIKeyName(t *testing.T) {
	if got := APIKeyName(" OpenAI "); got != "api_key_openai" {
		t.Errorf("APIKeyName() = %q", got)
	}
}
