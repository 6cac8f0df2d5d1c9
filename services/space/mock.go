package spacesvc

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/trezcool/darasa/core"
)

// MockService records space requests and returns a canned response; test
// suites swap it in for the Eurus client.
type MockService struct {
	mu       sync.Mutex
	Requests []core.SpaceRequest
	Response json.RawMessage
	Err      error
}

var _ core.SpaceService = (*MockService)(nil)

func NewMockService() *MockService {
	return &MockService{Response: json.RawMessage(`{"space_id": "mock-space"}`)}
}

func (svc *MockService) CreateSpace(ctx context.Context, sreq core.SpaceRequest) (json.RawMessage, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.Requests = append(svc.Requests, sreq)
	if svc.Err != nil {
		return nil, svc.Err
	}
	return svc.Response, nil
}
