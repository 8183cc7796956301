package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

// MockLeadService
type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) CreateLead(ctx context.Context, payload map[string]interface{}) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

// MockDiagnosticService
type MockDiagnosticService struct {
	mock.Mock
}

func (m *MockDiagnosticService) Probe(ctx context.Context) map[string]interface{} {
	args := m.Called(ctx)
	return args.Get(0).(map[string]interface{})
}

// MockDocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) InsertDocument(ctx context.Context, entity string, document interface{}) (string, error) {
	args := m.Called(ctx, entity, document)
	return args.String(0), args.Error(1)
}
