package leaverequest

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leaverequest_repo.go -destination=mock/leaverequest_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, lr *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)
	UpdateDecision(ctx context.Context, lr *LeaveRequest, fromStatus string) (bool, error)
	HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error)
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	sqlDB, _ := db.DB()
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

// Create writes the PENDING row through the caller's transaction, so the row
// and the reservation it holds commit or roll back together.
func (r *repository) Create(ctx context.Context, lr *LeaveRequest) error {
	query := `
INSERT INTO leave_requests
	(id, employee_id, leave_type_id, start_date, end_date, days, is_half_day, reason, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
`
	_, err := r.execer().ExecContext(ctx, query,
		lr.ID,
		lr.EmployeeID,
		lr.LeaveTypeID,
		lr.StartDate,
		lr.EndDate,
		lr.Days,
		lr.IsHalfDay,
		lr.Reason,
		lr.Status,
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var lr LeaveRequest
	err := r.db.WithContext(ctx).First(&lr, "id = ?", id).Error
	return &lr, err
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, error) {
	db := r.db.WithContext(ctx).Model(&LeaveRequest{})
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Year != 0 {
		db = db.Where("EXTRACT(YEAR FROM start_date) = ?", filter.Year)
	}

	var requests []LeaveRequest
	err := db.Order("start_date DESC").Find(&requests).Error
	return requests, err
}

// UpdateDecision flips the status only while the row still carries fromStatus.
// The row lock it takes serializes concurrent decisions on the same request;
// the loser matches zero rows and reports false instead of releasing or
// reviewing twice.
func (r *repository) UpdateDecision(ctx context.Context, lr *LeaveRequest, fromStatus string) (bool, error) {
	query := `
UPDATE leave_requests
SET status = $1,
	review_comments = $2,
	reviewed_by = $3,
	reviewed_at = $4,
	updated_at = NOW()
WHERE id = $5
	AND status = $6
`
	res, err := r.execer().ExecContext(ctx, query,
		lr.Status,
		lr.ReviewComments,
		lr.ReviewedBy,
		lr.ReviewedAt,
		lr.ID,
		fromStatus,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// HasOverlappingPeriod only counts requests that still hold a reservation;
// rejected and cancelled ones no longer block the period.
func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	query := `
SELECT COUNT(*)
FROM leave_requests
WHERE employee_id = $1
	AND status IN ($2, $3)
	AND NOT (end_date < $4 OR start_date > $5)
`
	args := []any{employeeID, StatusPending, StatusApproved, startDate, endDate}
	if excludeID != nil && *excludeID != "" {
		query += "	AND id <> $6\n"
		args = append(args, *excludeID)
	}

	var count int64
	if err := r.execer().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
