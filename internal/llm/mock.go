package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	Err      error

	mu        sync.Mutex
	Prompts   []string
	ImageURLs [][]string
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.record(prompt, nil)
	return m.Response, m.Err
}

func (m *MockClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	m.record(prompt, nil)
	return m.Response, m.Err
}

func (m *MockClient) GenerateWithImages(ctx context.Context, prompt string, imageURLs []string) (string, error) {
	m.record(prompt, imageURLs)
	return m.Response, m.Err
}

// Calls devuelve cuantas veces se invoco el mock.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

func (m *MockClient) record(prompt string, urls []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	m.ImageURLs = append(m.ImageURLs, append([]string(nil), urls...))
}
