package usecases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/peerhaven/audit-backend/mocks"
	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/repositories/clock"
	"github.com/peerhaven/audit-backend/usecases/executor_factory"
)

type IntegrityUsecaseTestSuite struct {
	suite.Suite
	ledgerRepository *mocks.LedgerRepository
	checkRepository  *mocks.IntegrityCheckRepository
	taskQueue        *mocks.TaskQueueRepository
	transaction      *mocks.Transaction
	executorFactory  executor_factory.ExecutorFactoryStub
	clock            *clock.Mock

	now             time.Time
	repositoryError error
}

func (suite *IntegrityUsecaseTestSuite) SetupTest() {
	suite.ledgerRepository = new(mocks.LedgerRepository)
	suite.checkRepository = new(mocks.IntegrityCheckRepository)
	suite.taskQueue = new(mocks.TaskQueueRepository)
	suite.transaction = new(mocks.Transaction)
	suite.executorFactory = executor_factory.NewExecutorFactoryStub()
	suite.now = time.Date(2026, 8, 10, 14, 0, 0, 0, time.UTC)
	suite.clock = clock.NewMock(suite.now)
	suite.repositoryError = errors.New("some repository error")
}

func (suite *IntegrityUsecaseTestSuite) makeUsecase() *IntegrityUsecase {
	return &IntegrityUsecase{
		executorFactory:    suite.executorFactory,
		transactionFactory: executor_factory.TransactionFactoryStub{Tx: suite.transaction},
		ledgerRepository:   suite.ledgerRepository,
		checkRepository:    suite.checkRepository,
		taskQueue:          suite.taskQueue,
		clock:              suite.clock,
		chunkSize:          2,
		maxAttempts:        3,
	}
}

func (suite *IntegrityUsecaseTestSuite) AssertExpectations() {
	t := suite.T()
	suite.ledgerRepository.AssertExpectations(t)
	suite.checkRepository.AssertExpectations(t)
	suite.taskQueue.AssertExpectations(t)
}

// chain builds a valid linked ledger of n entries.
func (suite *IntegrityUsecaseTestSuite) chain(n int) []models.AuditEntry {
	entries := make([]models.AuditEntry, 0, n)
	previousHash := models.SentinelHash
	for i := 1; i <= n; i++ {
		entry := models.AuditEntry{
			SequenceId:   int64(i),
			PreviousHash: previousHash,
			EventType:    models.AuditEventReportResolved,
			ActorType:    models.ActorTypeModerator,
			Action:       fmt.Sprintf("action_%d", i),
			Timestamp:    suite.now.Add(time.Duration(i) * time.Second),
		}
		hash, err := entry.ComputeHash()
		suite.Require().NoError(err)
		entry.EntryHash = hash

		entries = append(entries, entry)
		previousHash = hash
	}
	return entries
}

func (suite *IntegrityUsecaseTestSuite) Test_VerifyChain_full_scan_in_chunks() {
	t := suite.T()

	entries := suite.chain(5)
	bounds := models.LedgerBounds{MinSequenceId: 1, MaxSequenceId: 5}

	suite.ledgerRepository.On("LedgerBounds", mock.Anything, mock.Anything).Return(bounds, nil)
	suite.ledgerRepository.On("ListEntryRange", mock.Anything, mock.Anything, int64(1), int64(5), 2).
		Return(entries[0:2], nil)
	suite.ledgerRepository.On("ListEntryRange", mock.Anything, mock.Anything, int64(3), int64(5), 2).
		Return(entries[2:4], nil)
	suite.ledgerRepository.On("ListEntryRange", mock.Anything, mock.Anything, int64(5), int64(5), 2).
		Return(entries[4:5], nil)

	report, err := suite.makeUsecase().VerifyChain(context.Background(), 0)

	assert.NoError(t, err)
	assert.True(t, report.Passed)
	assert.Equal(t, 5, report.TotalChecked)
	assert.Equal(t, entries[4].EntryHash, report.LastVerifiedHash)

	suite.AssertExpectations()
}

func (suite *IntegrityUsecaseTestSuite) Test_VerifyChain_limit_scans_the_tail() {
	t := suite.T()

	entries := suite.chain(5)
	bounds := models.LedgerBounds{MinSequenceId: 1, MaxSequenceId: 5}

	suite.ledgerRepository.On("LedgerBounds", mock.Anything, mock.Anything).Return(bounds, nil)
	// limit 2 means only sequences 4 and 5 are read, and the origin check is
	// skipped: entry 4's previous hash is legitimately not the sentinel
	suite.ledgerRepository.On("ListEntryRange", mock.Anything, mock.Anything, int64(4), int64(5), 2).
		Return(entries[3:5], nil)

	report, err := suite.makeUsecase().VerifyChain(context.Background(), 2)

	assert.NoError(t, err)
	assert.True(t, report.Passed)
	assert.Equal(t, 2, report.TotalChecked)

	suite.AssertExpectations()
}

func (suite *IntegrityUsecaseTestSuite) Test_VerifyChain_limit_larger_than_ledger() {
	t := suite.T()

	entries := suite.chain(2)
	bounds := models.LedgerBounds{MinSequenceId: 1, MaxSequenceId: 2}

	suite.ledgerRepository.On("LedgerBounds", mock.Anything, mock.Anything).Return(bounds, nil)
	suite.ledgerRepository.On("ListEntryRange", mock.Anything, mock.Anything, int64(1), int64(2), 2).
		Return(entries, nil)

	report, err := suite.makeUsecase().VerifyChain(context.Background(), 100)

	assert.NoError(t, err)
	assert.True(t, report.Passed)
	assert.Equal(t, 2, report.TotalChecked)

	suite.AssertExpectations()
}

func (suite *IntegrityUsecaseTestSuite) Test_VerifyChain_empty_ledger() {
	t := suite.T()

	suite.ledgerRepository.On("LedgerBounds", mock.Anything, mock.Anything).
		Return(models.LedgerBounds{Empty: true}, nil)

	report, err := suite.makeUsecase().VerifyChain(context.Background(), 0)

	assert.NoError(t, err)
	assert.True(t, report.Passed)
	assert.Equal(t, 0, report.TotalChecked)
	assert.Equal(t, 1.0, report.IntegrityScore)
	assert.Equal(t, models.SentinelHash, report.LastVerifiedHash)

	suite.AssertExpectations()
}

func (suite *IntegrityUsecaseTestSuite) Test_VerifyChain_detects_tampering() {
	t := suite.T()

	entries := suite.chain(3)
	entries[1].Action = "tampered"
	bounds := models.LedgerBounds{MinSequenceId: 1, MaxSequenceId: 3}

	suite.ledgerRepository.On("LedgerBounds", mock.Anything, mock.Anything).Return(bounds, nil)
	suite.ledgerRepository.On("ListEntryRange", mock.Anything, mock.Anything, int64(1), int64(3), 2).
		Return(entries[0:2], nil)
	suite.ledgerRepository.On("ListEntryRange", mock.Anything, mock.Anything, int64(3), int64(3), 2).
		Return(entries[2:3], nil)

	report, err := suite.makeUsecase().VerifyChain(context.Background(), 0)

	assert.NoError(t, err)
	assert.False(t, report.Passed)
	assert.Equal(t, []models.IntegrityViolation{
		{SequenceId: 2, Kind: models.ViolationContentTampered},
	}, report.Violations)

	suite.AssertExpectations()
}

func (suite *IntegrityUsecaseTestSuite) Test_VerifyAndStoreReport_persists_both_rows() {
	t := suite.T()

	suite.ledgerRepository.On("LedgerBounds", mock.Anything, mock.Anything).
		Return(models.LedgerBounds{Empty: true}, nil)
	suite.checkRepository.On("InsertIntegrityCheck", mock.Anything, suite.transaction,
		mock.MatchedBy(func(check models.IntegrityCheck) bool {
			return check.Passed && check.TotalChecked == 0
		})).Return(nil)
	suite.checkRepository.On("UpsertLastIntegrityCheck", mock.Anything, suite.transaction,
		mock.Anything).Return(nil)

	report, err := suite.makeUsecase().VerifyAndStoreReport(context.Background(), 0)

	assert.NoError(t, err)
	assert.True(t, report.Passed)

	suite.AssertExpectations()
}

func (suite *IntegrityUsecaseTestSuite) Test_VerifyAndStoreReport_storage_failure() {
	t := suite.T()

	suite.ledgerRepository.On("LedgerBounds", mock.Anything, mock.Anything).
		Return(models.LedgerBounds{Empty: true}, nil)
	suite.checkRepository.On("InsertIntegrityCheck", mock.Anything, suite.transaction, mock.Anything).
		Return(suite.repositoryError)

	_, err := suite.makeUsecase().VerifyAndStoreReport(context.Background(), 0)

	assert.ErrorIs(t, err, suite.repositoryError)

	suite.AssertExpectations()
}

func (suite *IntegrityUsecaseTestSuite) Test_TriggerCheck() {
	t := suite.T()

	suite.taskQueue.On("EnqueueIntegrityCheckTask", mock.Anything, 500, 3).Return(nil)

	err := suite.makeUsecase().TriggerCheck(context.Background(), 500)

	assert.NoError(t, err)
	suite.AssertExpectations()
}

func (suite *IntegrityUsecaseTestSuite) Test_TriggerCheck_negative_limit() {
	t := suite.T()

	err := suite.makeUsecase().TriggerCheck(context.Background(), -1)

	assert.ErrorIs(t, err, models.BadParameterError)
}

func TestIntegrityUsecase(t *testing.T) {
	suite.Run(t, new(IntegrityUsecaseTestSuite))
}
