package holiday_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-leave/internal/holiday"
	holidayerrors "go-leave/internal/holiday/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeHolidayRepository struct {
	withTxFn        func(tx *sql.Tx) holiday.Repository
	createFn        func(ctx context.Context, h *holiday.Holiday) error
	findAllByYearFn func(ctx context.Context, year int) ([]holiday.Holiday, error)
	findByIDFn      func(ctx context.Context, id string) (*holiday.Holiday, error)
	updateFn        func(ctx context.Context, h *holiday.Holiday) error
	deleteFn        func(ctx context.Context, id string) error
}

func (f *fakeHolidayRepository) WithTx(tx *sql.Tx) holiday.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeHolidayRepository) Create(ctx context.Context, h *holiday.Holiday) error {
	if f.createFn != nil {
		return f.createFn(ctx, h)
	}
	return nil
}

func (f *fakeHolidayRepository) FindAllByYear(ctx context.Context, year int) ([]holiday.Holiday, error) {
	if f.findAllByYearFn != nil {
		return f.findAllByYearFn(ctx, year)
	}
	return nil, nil
}

func (f *fakeHolidayRepository) FindByID(ctx context.Context, id string) (*holiday.Holiday, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeHolidayRepository) Update(ctx context.Context, h *holiday.Holiday) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, h)
	}
	return nil
}

func (f *fakeHolidayRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service holiday.Service
	repo    *fakeHolidayRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeHolidayRepository{}
	svc := holiday.NewService(db, repo)

	return &serviceDeps{db: db, sqlMock: sqlMock, service: svc, repo: repo}
}

func TestHolidayService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.createFn = func(ctx context.Context, h *holiday.Holiday) error {
			assert.Equal(t, "Independence Day", h.Name)
			assert.Equal(t, holiday.TypeNational, h.Type)
			assert.False(t, h.IsOptional)
			return nil
		}

		resp, err := deps.service.Create(ctx, holiday.CreateHolidayRequest{
			Name: "Independence Day",
			Date: "2026-08-17",
			Type: holiday.TypeNational,
		})

		assert.NoError(t, err)
		assert.Equal(t, "2026-08-17", resp.Date)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid date", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, holiday.CreateHolidayRequest{
			Name: "Independence Day",
			Date: "17-08-2026",
			Type: holiday.TypeNational,
		})

		assert.ErrorIs(t, err, holidayerrors.ErrInvalidDateFormat)
	})

	t.Run("negative duplicate name and date", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.createFn = func(ctx context.Context, h *holiday.Holiday) error {
			return errors.New(`duplicate key value violates unique constraint "uq_holidays_name_date"`)
		}

		_, err := deps.service.Create(ctx, holiday.CreateHolidayRequest{
			Name: "Independence Day",
			Date: "2026-08-17",
			Type: holiday.TypeNational,
		})

		assert.ErrorIs(t, err, holidayerrors.ErrDuplicateHoliday)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestHolidayService_GetAllByYear(t *testing.T) {
	ctx := context.Background()

	t.Run("success filters by year", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllByYearFn = func(ctx context.Context, year int) ([]holiday.Holiday, error) {
			assert.Equal(t, 2026, year)
			return []holiday.Holiday{
				{ID: uuid.New(), Name: "New Year", Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Type: holiday.TypeNational},
			}, nil
		}

		resp, err := deps.service.GetAllByYear(ctx, 2026)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "2026-01-01", resp[0].Date)
	})
}

func TestHolidayService_Update(t *testing.T) {
	ctx := context.Background()
	holidayID := uuid.New()

	t.Run("success partial patch", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*holiday.Holiday, error) {
			return &holiday.Holiday{
				ID:   holidayID,
				Name: "Company Day",
				Date: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
				Type: holiday.TypeCompany,
			}, nil
		}

		optional := true
		resp, err := deps.service.Update(ctx, holidayID.String(), holiday.UpdateHolidayRequest{
			IsOptional: &optional,
		})

		assert.NoError(t, err)
		assert.True(t, resp.IsOptional)
		assert.Equal(t, "Company Day", resp.Name)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown holiday", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*holiday.Holiday, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Update(ctx, holidayID.String(), holiday.UpdateHolidayRequest{})

		assert.ErrorIs(t, err, holidayerrors.ErrHolidayNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestHolidayService_Delete(t *testing.T) {
	ctx := context.Background()
	holidayID := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*holiday.Holiday, error) {
			return &holiday.Holiday{ID: holidayID}, nil
		}

		err := deps.service.Delete(ctx, holidayID.String())

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		err := deps.service.Delete(ctx, "bogus")

		assert.ErrorIs(t, err, holidayerrors.ErrInvalidHolidayID)
	})
}
