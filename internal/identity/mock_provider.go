package identity

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-entry-board/internal/model"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockProvider) Exchange(ctx context.Context, code string) (model.Identity, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.Identity), args.Error(1)
}
