// Package testutil provides shared mocks and helpers for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"noveltrans/internal/provider"
)

// MockProvider mocks the translation provider. Failures are scripted per
// prompt substring; everything else succeeds with a canned reply. Safe for
// concurrent use.
type MockProvider struct {
	mu sync.Mutex

	// Errors maps a prompt substring to the error returned when a prompt
	// containing it arrives. FailuresLeft limits how often each fires;
	// zero means always.
	Errors       map[string]error
	FailuresLeft map[string]int

	Translations map[string]string
	Terms        map[string]string

	TranslateCalls []string
	TermCalls      []string
}

// NewMockProvider returns an empty mock that succeeds on every call.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Errors:       make(map[string]error),
		FailuresLeft: make(map[string]int),
		Translations: make(map[string]string),
		Terms:        make(map[string]string),
	}
}

// FailOn scripts an error for prompts containing substr. With times > 0 the
// error fires that many times then stops; times == 0 fires forever.
func (m *MockProvider) FailOn(substr string, err error, times int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[substr] = err
	m.FailuresLeft[substr] = times
}

func (m *MockProvider) scriptedError(prompt string) error {
	for substr, err := range m.Errors {
		if !contains(prompt, substr) {
			continue
		}
		left := m.FailuresLeft[substr]
		if left == 0 {
			return err
		}
		if left > 0 {
			m.FailuresLeft[substr] = left - 1
			return err
		}
	}
	return nil
}

// Translate mocks a chapter translation.
func (m *MockProvider) Translate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", provider.ErrTransient, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslateCalls = append(m.TranslateCalls, prompt)
	if err := m.scriptedError(prompt); err != nil {
		return "", err
	}
	for substr, reply := range m.Translations {
		if contains(prompt, substr) {
			return reply, nil
		}
	}
	return "mock translation", nil
}

// ExtractTerms mocks a glossary update request.
func (m *MockProvider) ExtractTerms(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", provider.ErrTransient, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TermCalls = append(m.TermCalls, prompt)
	if err := m.scriptedError(prompt); err != nil {
		return "", err
	}
	for substr, reply := range m.Terms {
		if contains(prompt, substr) {
			return reply, nil
		}
	}
	return "no new terms", nil
}

// Name identifies the mock in logs.
func (m *MockProvider) Name() string { return "mock" }

// CallCounts returns how many translate and term calls were made.
func (m *MockProvider) CallCounts() (translate, terms int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.TranslateCalls), len(m.TermCalls)
}

func contains(s, substr string) bool {
	return substr != "" && strings.Contains(s, substr)
}
