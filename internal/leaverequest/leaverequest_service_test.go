package leaverequest_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/domain"
	"go-leave/internal/leaverequest"
	leaverequesterrors "go-leave/internal/leaverequest/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRequestRepository struct {
	withTxFn         func(tx *sql.Tx) leaverequest.Repository
	createFn         func(ctx context.Context, lr *leaverequest.LeaveRequest) error
	findByIDFn       func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error)
	findAllFn        func(ctx context.Context, filter leaverequest.ListFilter) ([]leaverequest.LeaveRequest, error)
	updateDecisionFn func(ctx context.Context, lr *leaverequest.LeaveRequest, fromStatus string) (bool, error)
	overlapFn        func(ctx context.Context, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error)
}

func (f *fakeRequestRepository) WithTx(tx *sql.Tx) leaverequest.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRequestRepository) Create(ctx context.Context, lr *leaverequest.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, lr)
	}
	return nil
}

func (f *fakeRequestRepository) FindByID(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) FindAll(ctx context.Context, filter leaverequest.ListFilter) ([]leaverequest.LeaveRequest, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeRequestRepository) UpdateDecision(ctx context.Context, lr *leaverequest.LeaveRequest, fromStatus string) (bool, error) {
	if f.updateDecisionFn != nil {
		return f.updateDecisionFn(ctx, lr, fromStatus)
	}
	return true, nil
}

func (f *fakeRequestRepository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	if f.overlapFn != nil {
		return f.overlapFn(ctx, employeeID, startDate, endDate, excludeID)
	}
	return false, nil
}

type ledgerCall struct {
	employeeID  string
	leaveTypeID string
	year        int
	days        decimal.Decimal
}

type fakeLedger struct {
	reserveErr error
	releaseErr error
	reserveFn  func(ctx context.Context, tx *sql.Tx, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
	reserved   []ledgerCall
	released   []ledgerCall
}

func (f *fakeLedger) Reserve(ctx context.Context, tx *sql.Tx, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	if f.reserveFn != nil {
		return f.reserveFn(ctx, tx, employeeID, leaveTypeID, year, days)
	}
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reserved = append(f.reserved, ledgerCall{employeeID, leaveTypeID, year, days})
	return nil
}

func (f *fakeLedger) Release(ctx context.Context, tx *sql.Tx, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.released = append(f.released, ledgerCall{employeeID, leaveTypeID, year, days})
	return nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
	err     error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service leaverequest.Service
	repo    *fakeRequestRepository
	ledger  *fakeLedger
	outbox  *fakeOutboxRepository
}

func setupServiceTest(t *testing.T, cfg leaverequest.Config) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeRequestRepository{}
	ledger := &fakeLedger{}
	outbox := &fakeOutboxRepository{}
	svc := leaverequest.NewServiceWithOutbox(db, repo, ledger, outbox, cfg)

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		ledger:  ledger,
		outbox:  outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func futureDate(daysFromNow int) string {
	return time.Now().UTC().AddDate(0, 0, daysFromNow).Format("2006-01-02")
}

func TestLeaveRequestService_Submit(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	leaveTypeID := uuid.New()
	actor := domain.Identity{EmployeeID: employeeID.String(), Role: domain.RoleEmployee}

	t.Run("success three day span reserves three days", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		var created *leaverequest.LeaveRequest
		deps.repo.createFn = func(ctx context.Context, lr *leaverequest.LeaveRequest) error {
			created = lr
			return nil
		}

		resp, err := deps.service.Submit(ctx, actor, leaverequest.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   futureDate(1),
			EndDate:     futureDate(3),
			Reason:      "family trip",
		})

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusPending, resp.Status)
		assert.Equal(t, "3", resp.Days)
		assert.Len(t, deps.ledger.reserved, 1)
		assert.True(t, deps.ledger.reserved[0].days.Equal(decimal.NewFromInt(3)))
		assert.Equal(t, employeeID.String(), deps.ledger.reserved[0].employeeID)
		assert.Equal(t, leaveTypeID.String(), deps.ledger.reserved[0].leaveTypeID)
		assert.NotNil(t, created)
		assert.Equal(t, leaverequest.StatusPending, created.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success half day counts as half", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Submit(ctx, actor, leaverequest.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   futureDate(1),
			EndDate:     futureDate(1),
			IsHalfDay:   true,
		})

		assert.NoError(t, err)
		assert.Equal(t, "0.5", resp.Days)
		assert.True(t, resp.IsHalfDay)
		assert.Len(t, deps.ledger.reserved, 1)
		assert.True(t, deps.ledger.reserved[0].days.Equal(decimal.NewFromFloat(0.5)))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative half day over multiple dates", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, actor, leaverequest.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   futureDate(1),
			EndDate:     futureDate(2),
			IsHalfDay:   true,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrHalfDaySpan)
		assert.Empty(t, deps.ledger.reserved)
	})

	t.Run("negative end before start", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, actor, leaverequest.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   futureDate(3),
			EndDate:     futureDate(1),
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrInvalidDateRange)
	})

	t.Run("negative start date beyond grace period", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{GraceDays: 2})
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, actor, leaverequest.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   futureDate(-3),
			EndDate:     futureDate(1),
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrStartDateTooOld)
	})

	t.Run("success start date within grace period", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{GraceDays: 2})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.Submit(ctx, actor, leaverequest.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   futureDate(-1),
			EndDate:     futureDate(1),
		})

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid date format", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, actor, leaverequest.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   "01-02-2026",
			EndDate:     futureDate(3),
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrInvalidDateFormat)
	})

	t.Run("negative overlapping request", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.overlapFn = func(ctx context.Context, eid string, start, end time.Time, excludeID *string) (bool, error) {
			assert.Equal(t, employeeID.String(), eid)
			return true, nil
		}

		_, err := deps.service.Submit(ctx, actor, leaverequest.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   futureDate(1),
			EndDate:     futureDate(3),
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrLeaveOverlap)
		assert.Empty(t, deps.ledger.reserved)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative reservation refused rolls back", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		insufficientErr := errors.New("requested days exceed the remaining leave balance")
		deps.ledger.reserveErr = insufficientErr

		createCalled := false
		deps.repo.createFn = func(ctx context.Context, lr *leaverequest.LeaveRequest) error {
			createCalled = true
			return nil
		}

		_, err := deps.service.Submit(ctx, actor, leaverequest.SubmitLeaveRequest{
			LeaveTypeID: leaveTypeID.String(),
			StartDate:   futureDate(1),
			EndDate:     futureDate(3),
		})

		assert.ErrorIs(t, err, insufficientErr)
		assert.False(t, createCalled)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative concurrent submissions cannot overdraw the balance", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		deps.sqlMock.MatchExpectationsInOrder(false)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.sqlMock.ExpectRollback()

		// Stateful ledger with 5 remaining days; two 3-day requests race.
		var mu sync.Mutex
		remaining := decimal.NewFromInt(5)
		deps.ledger.reserveFn = func(ctx context.Context, tx *sql.Tx, eid, ltid string, year int, days decimal.Decimal) error {
			mu.Lock()
			defer mu.Unlock()
			if days.GreaterThan(remaining) {
				return balanceerrors.ErrInsufficientBalance
			}
			remaining = remaining.Sub(days)
			return nil
		}

		var createMu sync.Mutex
		createdCount := 0
		deps.repo.createFn = func(ctx context.Context, lr *leaverequest.LeaveRequest) error {
			createMu.Lock()
			defer createMu.Unlock()
			createdCount++
			return nil
		}

		spans := [][2]string{
			{futureDate(1), futureDate(3)},
			{futureDate(5), futureDate(7)},
		}
		errs := make(chan error, len(spans))
		for _, span := range spans {
			go func(start, end string) {
				_, err := deps.service.Submit(ctx, actor, leaverequest.SubmitLeaveRequest{
					LeaveTypeID: leaveTypeID.String(),
					StartDate:   start,
					EndDate:     end,
				})
				errs <- err
			}(span[0], span[1])
		}

		var failures []error
		for range spans {
			if err := <-errs; err != nil {
				failures = append(failures, err)
			}
		}

		assert.Len(t, failures, 1)
		assert.ErrorIs(t, failures[0], balanceerrors.ErrInsufficientBalance)
		assert.Equal(t, 1, createdCount)
		assert.True(t, remaining.Equal(decimal.NewFromInt(2)))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveRequestService_GetAll(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("success employee is pinned to own requests", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		var gotFilter leaverequest.ListFilter
		deps.repo.findAllFn = func(ctx context.Context, filter leaverequest.ListFilter) ([]leaverequest.LeaveRequest, error) {
			gotFilter = filter
			return nil, nil
		}

		actor := domain.Identity{EmployeeID: employeeID.String(), Role: domain.RoleEmployee}
		_, err := deps.service.GetAll(ctx, actor, leaverequest.ListFilter{EmployeeID: uuid.NewString(), Year: 2026})

		assert.NoError(t, err)
		assert.Equal(t, employeeID.String(), gotFilter.EmployeeID)
		assert.Equal(t, 2026, gotFilter.Year)
	})

	t.Run("success reviewer filter passes through", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		other := uuid.NewString()
		var gotFilter leaverequest.ListFilter
		deps.repo.findAllFn = func(ctx context.Context, filter leaverequest.ListFilter) ([]leaverequest.LeaveRequest, error) {
			gotFilter = filter
			return nil, nil
		}

		actor := domain.Identity{EmployeeID: employeeID.String(), Role: domain.RoleManager}
		_, err := deps.service.GetAll(ctx, actor, leaverequest.ListFilter{EmployeeID: other})

		assert.NoError(t, err)
		assert.Equal(t, other, gotFilter.EmployeeID)
	})
}

func TestLeaveRequestService_GetByID(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	ownerID := uuid.New()

	pending := func() *leaverequest.LeaveRequest {
		return &leaverequest.LeaveRequest{
			ID:          requestID,
			EmployeeID:  ownerID,
			LeaveTypeID: uuid.New(),
			StartDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
			Days:        decimal.NewFromInt(3),
			Status:      leaverequest.StatusPending,
		}
	}

	t.Run("success owner reads own request", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return pending(), nil
		}

		actor := domain.Identity{EmployeeID: ownerID.String(), Role: domain.RoleEmployee}
		resp, err := deps.service.GetByID(ctx, actor, requestID.String())

		assert.NoError(t, err)
		assert.Equal(t, requestID.String(), resp.ID)
	})

	t.Run("negative other employee is refused", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return pending(), nil
		}

		actor := domain.Identity{EmployeeID: uuid.NewString(), Role: domain.RoleEmployee}
		_, err := deps.service.GetByID(ctx, actor, requestID.String())

		assert.ErrorIs(t, err, leaverequesterrors.ErrNotRequestViewer)
	})

	t.Run("negative unknown request", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return nil, gorm.ErrRecordNotFound
		}

		actor := domain.Identity{EmployeeID: ownerID.String(), Role: domain.RoleEmployee}
		_, err := deps.service.GetByID(ctx, actor, requestID.String())

		assert.ErrorIs(t, err, leaverequesterrors.ErrRequestNotFound)
	})
}

func TestLeaveRequestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	ownerID := uuid.New()
	reviewerID := uuid.New()
	leaveTypeID := uuid.New()

	owner := domain.Identity{EmployeeID: ownerID.String(), Role: domain.RoleEmployee}
	reviewer := domain.Identity{EmployeeID: reviewerID.String(), Role: domain.RoleManager}

	request := func(status string) *leaverequest.LeaveRequest {
		return &leaverequest.LeaveRequest{
			ID:          requestID,
			EmployeeID:  ownerID,
			LeaveTypeID: leaveTypeID,
			StartDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
			Days:        decimal.NewFromInt(3),
			Status:      status,
		}
	}

	t.Run("success approve keeps reservation and queues event", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return request(leaverequest.StatusPending), nil
		}
		var updated *leaverequest.LeaveRequest
		var gotFromStatus string
		deps.repo.updateDecisionFn = func(ctx context.Context, lr *leaverequest.LeaveRequest, fromStatus string) (bool, error) {
			updated = lr
			gotFromStatus = fromStatus
			return true, nil
		}

		comments := "enjoy"
		resp, err := deps.service.UpdateStatus(ctx, reviewer, requestID.String(), leaverequest.UpdateStatusRequest{
			Status:         leaverequest.StatusApproved,
			ReviewComments: &comments,
		})

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusApproved, resp.Status)
		assert.Equal(t, reviewerID.String(), *resp.ReviewedBy)
		assert.NotNil(t, resp.ReviewedAt)
		assert.Equal(t, &comments, resp.ReviewComments)
		assert.Empty(t, deps.ledger.released)
		assert.NotNil(t, updated)
		assert.NotNil(t, updated.ReviewedAt)
		assert.Equal(t, leaverequest.StatusPending, gotFromStatus)

		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave_request_decided", deps.outbox.created[0].EventType)
		assert.Equal(t, requestID.String(), deps.outbox.created[0].AggregateID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success reject releases reserved days", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return request(leaverequest.StatusPending), nil
		}

		resp, err := deps.service.UpdateStatus(ctx, reviewer, requestID.String(), leaverequest.UpdateStatusRequest{
			Status: leaverequest.StatusRejected,
		})

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusRejected, resp.Status)
		assert.Len(t, deps.ledger.released, 1)
		assert.True(t, deps.ledger.released[0].days.Equal(decimal.NewFromInt(3)))
		assert.Equal(t, 2026, deps.ledger.released[0].year)
		assert.Len(t, deps.outbox.created, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success owner cancels pending request", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return request(leaverequest.StatusPending), nil
		}

		resp, err := deps.service.UpdateStatus(ctx, owner, requestID.String(), leaverequest.UpdateStatusRequest{
			Status: leaverequest.StatusCancelled,
		})

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusCancelled, resp.Status)
		assert.Len(t, deps.ledger.released, 1)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success approved request can still be cancelled", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return request(leaverequest.StatusApproved), nil
		}

		resp, err := deps.service.UpdateStatus(ctx, owner, requestID.String(), leaverequest.UpdateStatusRequest{
			Status: leaverequest.StatusCancelled,
		})

		assert.NoError(t, err)
		assert.Equal(t, leaverequest.StatusCancelled, resp.Status)
		assert.Len(t, deps.ledger.released, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative employee cannot approve", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return request(leaverequest.StatusPending), nil
		}
		updateCalled := false
		deps.repo.updateDecisionFn = func(ctx context.Context, lr *leaverequest.LeaveRequest, fromStatus string) (bool, error) {
			updateCalled = true
			return true, nil
		}

		_, err := deps.service.UpdateStatus(ctx, owner, requestID.String(), leaverequest.UpdateStatusRequest{
			Status: leaverequest.StatusApproved,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrReviewerRequired)
		assert.False(t, updateCalled)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative other employee cannot cancel", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return request(leaverequest.StatusPending), nil
		}

		stranger := domain.Identity{EmployeeID: uuid.NewString(), Role: domain.RoleEmployee}
		_, err := deps.service.UpdateStatus(ctx, stranger, requestID.String(), leaverequest.UpdateStatusRequest{
			Status: leaverequest.StatusCancelled,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrNotRequestOwner)
		assert.Empty(t, deps.ledger.released)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative rejected request cannot be approved", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return request(leaverequest.StatusRejected), nil
		}
		updateCalled := false
		deps.repo.updateDecisionFn = func(ctx context.Context, lr *leaverequest.LeaveRequest, fromStatus string) (bool, error) {
			updateCalled = true
			return true, nil
		}

		_, err := deps.service.UpdateStatus(ctx, reviewer, requestID.String(), leaverequest.UpdateStatusRequest{
			Status: leaverequest.StatusApproved,
		})

		assert.Error(t, err)
		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
		assert.Contains(t, appErr.Message, leaverequest.StatusRejected)
		assert.Contains(t, appErr.Message, leaverequest.StatusApproved)
		assert.False(t, updateCalled)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative failed release aborts cancellation", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return request(leaverequest.StatusPending), nil
		}
		deps.ledger.releaseErr = errors.New("connection reset")

		_, err := deps.service.UpdateStatus(ctx, owner, requestID.String(), leaverequest.UpdateStatusRequest{
			Status: leaverequest.StatusCancelled,
		})

		// The tx rolls back, so the claimed status flip is undone with it.
		assert.Error(t, err)
		assert.Empty(t, deps.ledger.released)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown request", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.UpdateStatus(ctx, reviewer, requestID.String(), leaverequest.UpdateStatusRequest{
			Status: leaverequest.StatusApproved,
		})

		assert.ErrorIs(t, err, leaverequesterrors.ErrRequestNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative concurrent cancels release only once", func(t *testing.T) {
		deps := setupServiceTest(t, leaverequest.Config{})
		defer deps.db.Close()

		deps.sqlMock.MatchExpectationsInOrder(false)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.sqlMock.ExpectRollback()

		// Both callers read PENDING before either claims the flip; the loser
		// re-reads and sees the committed CANCELLED row.
		start := make(chan struct{})
		var reads int32
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leaverequest.LeaveRequest, error) {
			if n := atomic.AddInt32(&reads, 1); n <= 2 {
				if n == 2 {
					close(start)
				}
				<-start
				return request(leaverequest.StatusPending), nil
			}
			return request(leaverequest.StatusCancelled), nil
		}

		var mu sync.Mutex
		claimed := false
		deps.repo.updateDecisionFn = func(ctx context.Context, lr *leaverequest.LeaveRequest, fromStatus string) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			if claimed {
				return false, nil
			}
			claimed = true
			return true, nil
		}

		errs := make(chan error, 2)
		for i := 0; i < 2; i++ {
			go func() {
				_, err := deps.service.UpdateStatus(ctx, owner, requestID.String(), leaverequest.UpdateStatusRequest{
					Status: leaverequest.StatusCancelled,
				})
				errs <- err
			}()
		}

		var failures []error
		for i := 0; i < 2; i++ {
			if err := <-errs; err != nil {
				failures = append(failures, err)
			}
		}

		assert.Len(t, failures, 1)
		var appErr *apperror.AppError
		assert.ErrorAs(t, failures[0], &appErr)
		assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
		assert.Len(t, deps.ledger.released, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
