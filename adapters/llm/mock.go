package llm

import (
	"context"
	"sync"

	"github.com/khoahotran/studyplan/internal/application/service"
)

// MockResponse is a canned reply for MockClient.
type MockResponse struct {
	Content string
	Err     error
}

// MockClient returns canned responses in FIFO order and records every request.
// With an empty queue it reports the provider as unavailable.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []service.CompletionRequest
}

func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{responses: responses}
}

func (m *MockClient) Complete(_ context.Context, req service.CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return "", &ErrProviderUnavailable{}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp.Content, resp.Err
}

func (m *MockClient) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockClient) ModelID() string { return "mock" }

func (m *MockClient) Provider() string { return "mock" }
