package balance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/domain"
	"go-leave/internal/leavetype"
	"go-leave/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	Provision(ctx context.Context, employeeID string, year int) error
	GetSummaries(ctx context.Context, actor domain.Identity, employeeID string, year int) ([]BalanceSummaryResponse, error)
	Reserve(ctx context.Context, tx *sql.Tx, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
	Release(ctx context.Context, tx *sql.Tx, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
	Adjust(ctx context.Context, id string, req AdjustBalanceRequest) (BalanceResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	types  leavetype.Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, types leavetype.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, types: types, logger: l}
}

// Provision seeds one zeroed balance row per registered leave type for the
// employee and year. Re-invocation is a no-op for rows that already exist.
// A failure on one type does not stop the others; failures are joined and
// returned together.
func (s *service) Provision(ctx context.Context, employeeID string, year int) error {
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return balanceerrors.ErrInvalidEmployeeID
	}

	types, err := s.types.FindAll(ctx)
	if err != nil {
		s.logger.Error("provision list leave types failed", zap.Error(err))
		return err
	}

	var errs []error
	created := 0
	for _, lt := range types {
		lb := &LeaveBalance{
			ID:            uuid.New(),
			EmployeeID:    employeeUUID,
			LeaveTypeID:   lt.ID,
			Year:          year,
			CarryoverDays: decimal.Zero,
			UsedDays:      decimal.Zero,
		}

		if err := s.repo.Create(ctx, lb); err != nil {
			if isDuplicateBalance(err) {
				// Already provisioned, leave used_days untouched.
				continue
			}
			s.logger.Error("provision balance row failed",
				zap.String("employee_id", employeeID),
				zap.String("leave_type", lt.Name),
				zap.Int("year", year),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("leave type %q: %w", lt.Name, err))
			continue
		}
		created++
	}

	s.logger.Info("provision balances done",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("created", created),
		zap.Int("failed", len(errs)),
	)

	return errors.Join(errs...)
}

// GetSummaries returns one summary per registered leave type. Types without
// a provisioned row degrade to the documented zero default instead of
// failing the read. Non-reviewers may only read their own balances.
func (s *service) GetSummaries(ctx context.Context, actor domain.Identity, employeeID string, year int) ([]BalanceSummaryResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, balanceerrors.ErrInvalidEmployeeID
	}
	if !actor.IsReviewer() && actor.EmployeeID != employeeID {
		return nil, balanceerrors.ErrNotBalanceViewer
	}

	rows, err := s.repo.ListSummaries(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}

	resp := make([]BalanceSummaryResponse, len(rows))
	for i, row := range rows {
		summary := BalanceSummaryResponse{
			LeaveTypeID:   row.LeaveTypeID,
			LeaveTypeName: row.LeaveTypeName,
			Year:          year,
			Total:         decimal.Zero,
			Used:          decimal.Zero,
			Remaining:     decimal.Zero,
		}
		if row.Provisioned {
			total := decimal.NewFromInt(int64(row.MaxDays)).Add(row.CarryoverDays)
			remaining := total.Sub(row.UsedDays)
			if remaining.IsNegative() {
				remaining = decimal.Zero
			}
			summary.BalanceID = row.BalanceID
			summary.Total = total
			summary.Used = row.UsedDays
			summary.Remaining = remaining
		}
		resp[i] = summary
	}
	return resp, nil
}

// Reserve atomically consumes days from the (employee, leaveType, year) row.
// When tx is non-nil the reservation joins the caller's transaction so a
// later rollback also undoes it.
func (s *service) Reserve(ctx context.Context, tx *sql.Tx, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	qtx := s.repo
	if tx != nil {
		qtx = s.repo.WithTx(tx)
	}

	updated, err := qtx.Reserve(ctx, employeeID, leaveTypeID, year, days)
	if err != nil {
		s.logger.Error("reserve balance failed",
			zap.String("employee_id", employeeID),
			zap.String("leave_type_id", leaveTypeID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return err
	}
	if updated {
		s.logger.Debug("balance reserved",
			zap.String("employee_id", employeeID),
			zap.String("leave_type_id", leaveTypeID),
			zap.String("days", days.String()),
		)
		return nil
	}

	exists, err := qtx.Exists(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		return err
	}
	if !exists {
		return balanceerrors.ErrBalanceNotProvisioned
	}
	return balanceerrors.ErrInsufficientBalance
}

// Release returns previously reserved days, floored at zero. A missing row
// is an error: the caller is about to mark a request terminal and the ledger
// must not silently diverge from it.
func (s *service) Release(ctx context.Context, tx *sql.Tx, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	qtx := s.repo
	if tx != nil {
		qtx = s.repo.WithTx(tx)
	}

	updated, err := qtx.Release(ctx, employeeID, leaveTypeID, year, days)
	if err != nil {
		s.logger.Error("release balance failed",
			zap.String("employee_id", employeeID),
			zap.String("leave_type_id", leaveTypeID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return err
	}
	if !updated {
		return balanceerrors.ErrBalanceNotProvisioned
	}

	s.logger.Debug("balance released",
		zap.String("employee_id", employeeID),
		zap.String("leave_type_id", leaveTypeID),
		zap.String("days", days.String()),
	)
	return nil
}

// Adjust is the administrative override: an absolute overwrite of year,
// carryover and used that bypasses reserve/release bookkeeping. Auditing is
// the caller's concern.
func (s *service) Adjust(ctx context.Context, id string, req AdjustBalanceRequest) (BalanceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidBalanceID
	}
	if req.Year == nil || req.CarryoverDays == nil || req.UsedDays == nil {
		return BalanceResponse{}, apperror.ErrInvalidInput
	}
	if req.CarryoverDays.IsNegative() || req.UsedDays.IsNegative() {
		return BalanceResponse{}, balanceerrors.ErrNegativeAdjustment
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("adjust balance begin tx failed", zap.Error(err))
		return BalanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lb, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, balanceerrors.ErrBalanceNotFound
		}
		return BalanceResponse{}, err
	}

	lb.Year = *req.Year
	lb.CarryoverDays = *req.CarryoverDays
	lb.UsedDays = *req.UsedDays

	if err := qtx.Update(ctx, lb); err != nil {
		s.logger.Error("adjust balance persist failed", zap.String("balance_id", id), zap.Error(err))
		return BalanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("adjust balance commit failed", zap.Error(err))
		return BalanceResponse{}, err
	}
	s.logger.Info("adjust balance success",
		zap.String("balance_id", id),
		zap.Int("year", lb.Year),
		zap.String("carryover_days", lb.CarryoverDays.String()),
		zap.String("used_days", lb.UsedDays.String()),
	)

	return mapToResponse(*lb), nil
}

func mapToResponse(lb LeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:            lb.ID.String(),
		EmployeeID:    lb.EmployeeID.String(),
		LeaveTypeID:   lb.LeaveTypeID.String(),
		Year:          lb.Year,
		CarryoverDays: lb.CarryoverDays,
		UsedDays:      lb.UsedDays,
	}
}
