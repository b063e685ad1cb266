package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/peerhaven/audit-backend/models"
)

type ChainVerifier struct {
	mock.Mock
}

func (m *ChainVerifier) VerifyAndStoreReport(ctx context.Context, limit int) (models.VerificationReport, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).(models.VerificationReport), args.Error(1)
}
