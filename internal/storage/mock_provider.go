package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/luukumag/article-preview/internal/article"
)

// MockProvider is a mock implementation of the Provider interface for testing.
type MockProvider struct {
	mock.Mock
}

// Find is the mock implementation of the Find method.
func (m *MockProvider) Find(ctx context.Context, key article.Key) (article.Article, error) {
	args := m.Called(ctx, key)
	a, _ := args.Get(0).(article.Article)
	return a, args.Error(1) //nolint:wrapcheck
}

// Ping is the mock implementation of the Ping method.
func (m *MockProvider) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0) //nolint:wrapcheck
}

// Close is the mock implementation of the Close method.
func (m *MockProvider) Close() {
	m.Called()
}
