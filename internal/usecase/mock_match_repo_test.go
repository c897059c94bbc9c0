package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
)

type mockMatchRepo struct {
	mock.Mock
}

func newMockMatchRepo(t interface {
	mock.TestingT
	Cleanup(func())
}) *mockMatchRepo {
	m := &mockMatchRepo{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (that *mockMatchRepo) CreateOrUpdate(ctx context.Context, sessionID string, state *entity.MatchState) error {
	args := that.Called(ctx, sessionID, state)
	return args.Error(0)
}

func (that *mockMatchRepo) GetByID(ctx context.Context, sessionID string) (*entity.MatchState, error) {
	args := that.Called(ctx, sessionID)

	state, _ := args.Get(0).(*entity.MatchState)

	return state, args.Error(1)
}

func (that *mockMatchRepo) DeleteByID(ctx context.Context, sessionID string) error {
	args := that.Called(ctx, sessionID)
	return args.Error(0)
}
