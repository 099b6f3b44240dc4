package balance

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, lb *LeaveBalance) error
	FindByID(ctx context.Context, id string) (*LeaveBalance, error)
	ListSummaries(ctx context.Context, employeeID string, year int) ([]SummaryRow, error)
	Reserve(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error)
	Release(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error)
	Exists(ctx context.Context, employeeID, leaveTypeID string, year int) (bool, error)
	Update(ctx context.Context, lb *LeaveBalance) error
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

func (r *repository) Create(ctx context.Context, lb *LeaveBalance) error {
	return r.db.WithContext(ctx).Create(lb).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveBalance, error) {
	var lb LeaveBalance
	err := r.db.WithContext(ctx).First(&lb, "id = ?", id).Error
	return &lb, err
}

// ListSummaries walks the registry left-joined against the ledger so every
// registered type shows up, provisioned or not.
func (r *repository) ListSummaries(ctx context.Context, employeeID string, year int) ([]SummaryRow, error) {
	var rows []SummaryRow
	query := `
SELECT
	lb.id::text AS balance_id,
	lt.id::text AS leave_type_id,
	lt.name AS leave_type_name,
	lt.max_days AS max_days,
	COALESCE(lb.carryover_days, 0) AS carryover_days,
	COALESCE(lb.used_days, 0) AS used_days,
	(lb.id IS NOT NULL) AS provisioned
FROM leave_types lt
LEFT JOIN leave_balances lb
	ON lb.leave_type_id = lt.id
	AND lb.employee_id = ?
	AND lb.year = ?
ORDER BY lt.name ASC
`
	err := r.db.WithContext(ctx).Raw(query, employeeID, year).Scan(&rows).Error
	return rows, err
}

// Reserve is the single atomic check-and-increment: used_days grows only
// when the row still has room for the requested amount. Postgres row locking
// serializes concurrent reservations on the same key, so two submissions can
// never both pass the check. Returns false when nothing was updated.
func (r *repository) Reserve(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error) {
	query := `
UPDATE leave_balances lb
SET used_days = lb.used_days + $4, updated_at = NOW()
FROM leave_types lt
WHERE lt.id = lb.leave_type_id
	AND lb.employee_id = $1
	AND lb.leave_type_id = $2
	AND lb.year = $3
	AND lb.used_days + $4 <= lt.max_days + lb.carryover_days
`
	res, err := r.execer().ExecContext(ctx, query, employeeID, leaveTypeID, year, days)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Release gives days back, floored at zero.
func (r *repository) Release(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) (bool, error) {
	query := `
UPDATE leave_balances
SET used_days = GREATEST(used_days - $4, 0), updated_at = NOW()
WHERE employee_id = $1
	AND leave_type_id = $2
	AND year = $3
`
	res, err := r.execer().ExecContext(ctx, query, employeeID, leaveTypeID, year, days)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) Exists(ctx context.Context, employeeID, leaveTypeID string, year int) (bool, error) {
	query := `
SELECT COUNT(*)
FROM leave_balances
WHERE employee_id = $1
	AND leave_type_id = $2
	AND year = $3
`
	var count int64
	if err := r.execer().QueryRowContext(ctx, query, employeeID, leaveTypeID, year).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Update(ctx context.Context, lb *LeaveBalance) error {
	return r.db.WithContext(ctx).Save(lb).Error
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
