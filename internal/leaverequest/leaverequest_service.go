package leaverequest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-leave/internal/domain"
	"go-leave/internal/events"
	leaverequesterrors "go-leave/internal/leaverequest/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger is the slice of the balance service the workflow needs. Reserve and
// Release join the workflow's transaction so a rollback undoes both sides.
type Ledger interface {
	Reserve(ctx context.Context, tx *sql.Tx, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
	Release(ctx context.Context, tx *sql.Tx, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
}

// Config carries workflow tuning read from the environment at startup.
// GraceDays is how many days into the past a start date may still fall.
type Config struct {
	GraceDays int
}

//go:generate mockgen -source=leaverequest_service.go -destination=mock/leaverequest_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, actor domain.Identity, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	GetAll(ctx context.Context, actor domain.Identity, filter ListFilter) ([]LeaveRequestResponse, error)
	GetByID(ctx context.Context, actor domain.Identity, id string) (LeaveRequestResponse, error)
	UpdateStatus(ctx context.Context, actor domain.Identity, id string, req UpdateStatusRequest) (LeaveRequestResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	ledger Ledger
	outbox kafka.OutboxRepository
	cfg    Config
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, ledger Ledger, cfg Config, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, ledger, nil, cfg, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	ledger Ledger,
	outboxRepo kafka.OutboxRepository,
	cfg Config,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leaverequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.service")
	}
	return &service{db: db, repo: repo, ledger: ledger, outbox: outboxRepo, cfg: cfg, logger: l}
}

// Submit validates the period, reserves the days and persists the PENDING
// request in one transaction. The reservation happens at submission, not at
// approval, so an approved request never discovers an empty balance.
func (s *service) Submit(ctx context.Context, actor domain.Identity, req SubmitLeaveRequest) (LeaveRequestResponse, error) {
	s.logger.Debug("submit leave request",
		zap.String("employee_id", actor.EmployeeID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Bool("is_half_day", req.IsHalfDay),
	)

	employeeUUID, err := uuid.Parse(actor.EmployeeID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidEmployeeID
	}
	leaveTypeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidLeaveTypeID
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	if startDate.After(endDate) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidDateRange
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if startDate.Before(today.AddDate(0, 0, -s.cfg.GraceDays)) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrStartDateTooOld
	}

	days, err := countDays(startDate, endDate, req.IsHalfDay)
	if err != nil {
		return LeaveRequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit leave request begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, actor.EmployeeID, startDate, endDate, nil)
	if err != nil {
		s.logger.Error("submit leave request overlap check failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if overlap {
		s.logger.Warn("submit leave request overlap detected",
			zap.String("employee_id", actor.EmployeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrLeaveOverlap
	}

	if err := s.ledger.Reserve(ctx, tx, actor.EmployeeID, req.LeaveTypeID, startDate.Year(), days); err != nil {
		s.logger.Warn("submit leave request reservation refused",
			zap.String("employee_id", actor.EmployeeID),
			zap.String("leave_type_id", req.LeaveTypeID),
			zap.String("days", days.String()),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	lr := &LeaveRequest{
		ID:          uuid.New(),
		EmployeeID:  employeeUUID,
		LeaveTypeID: leaveTypeUUID,
		StartDate:   startDate,
		EndDate:     endDate,
		Days:        days,
		IsHalfDay:   req.IsHalfDay,
		Reason:      req.Reason,
		Status:      StatusPending,
	}
	if err := qtx.Create(ctx, lr); err != nil {
		s.logger.Error("submit leave request persist failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit leave request commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	s.logger.Info("submit leave request success",
		zap.String("request_id", lr.ID.String()),
		zap.String("employee_id", actor.EmployeeID),
		zap.String("days", days.String()),
	)

	return mapToResponse(*lr), nil
}

func (s *service) GetAll(ctx context.Context, actor domain.Identity, filter ListFilter) ([]LeaveRequestResponse, error) {
	// Non-reviewers only ever see their own requests, whatever the filter says.
	if !actor.IsReviewer() {
		filter.EmployeeID = actor.EmployeeID
	}

	requests, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Identity, id string) (LeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidRequestID
	}

	lr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}

	if !actor.IsReviewer() && lr.EmployeeID.String() != actor.EmployeeID {
		return LeaveRequestResponse{}, leaverequesterrors.ErrNotRequestViewer
	}
	return mapToResponse(*lr), nil
}

// UpdateStatus applies one transition of the status machine. Rejection and
// cancellation release the reserved days inside the same transaction, so the
// request and the ledger either both move or neither does.
func (s *service) UpdateStatus(ctx context.Context, actor domain.Identity, id string, req UpdateStatusRequest) (LeaveRequestResponse, error) {
	s.logger.Debug("update leave request status",
		zap.String("request_id", id),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("target_status", req.Status),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidRequestID
	}
	actorUUID, err := uuid.Parse(actor.EmployeeID)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave request status begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lr, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	fromStatus := lr.Status

	if !isAllowedStatusTransition(fromStatus, req.Status) {
		s.logger.Warn("update leave request status invalid transition",
			zap.String("request_id", id),
			zap.String("from_status", fromStatus),
			zap.String("to_status", req.Status),
		)
		return LeaveRequestResponse{}, leaverequesterrors.InvalidTransition(fromStatus, req.Status)
	}

	switch req.Status {
	case StatusApproved, StatusRejected:
		// Route RBAC already filters, rechecked here so the rule holds for
		// every caller of the service.
		if !actor.IsReviewer() {
			return LeaveRequestResponse{}, leaverequesterrors.ErrReviewerRequired
		}
		now := time.Now().UTC()
		lr.ReviewedBy = &actorUUID
		lr.ReviewedAt = &now
		lr.ReviewComments = req.ReviewComments
	case StatusCancelled:
		if lr.EmployeeID.String() != actor.EmployeeID && !actor.IsAdministrative() {
			return LeaveRequestResponse{}, leaverequesterrors.ErrNotRequestOwner
		}
	}

	// The guarded flip claims the row before any side effect. If another
	// decision got there first the match fails and nothing below runs, so the
	// reservation can never be released twice.
	lr.Status = req.Status
	updated, err := qtx.UpdateDecision(ctx, lr, fromStatus)
	if err != nil {
		s.logger.Error("update leave request status persist failed",
			zap.String("request_id", id),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}
	if !updated {
		current := fromStatus
		if fresh, ferr := qtx.FindByID(ctx, id); ferr == nil {
			current = fresh.Status
		}
		s.logger.Warn("update leave request status lost race",
			zap.String("request_id", id),
			zap.String("from_status", fromStatus),
			zap.String("current_status", current),
			zap.String("to_status", req.Status),
		)
		return LeaveRequestResponse{}, leaverequesterrors.InvalidTransition(current, req.Status)
	}

	if req.Status == StatusRejected || req.Status == StatusCancelled {
		if err := s.ledger.Release(ctx, tx, lr.EmployeeID.String(), lr.LeaveTypeID.String(), lr.StartDate.Year(), lr.Days); err != nil {
			s.logger.Error("update leave request status release failed",
				zap.String("request_id", id),
				zap.String("target_status", req.Status),
				zap.Error(err),
			)
			return LeaveRequestResponse{}, err
		}
	}

	if (req.Status == StatusApproved || req.Status == StatusRejected) && s.outbox != nil {
		if err := s.queueDecidedEvent(ctx, tx, *lr, actor.EmployeeID); err != nil {
			return LeaveRequestResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave request status commit failed",
			zap.String("request_id", id),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}
	s.logger.Info("update leave request status success",
		zap.String("request_id", id),
		zap.String("status", req.Status),
	)

	return mapToResponse(*lr), nil
}

func (s *service) queueDecidedEvent(ctx context.Context, tx *sql.Tx, lr LeaveRequest, reviewerID string) error {
	payload, err := json.Marshal(events.LeaveRequestDecidedEvent{
		EventType:   "leave_request_decided",
		RequestID:   lr.ID.String(),
		EmployeeID:  lr.EmployeeID.String(),
		LeaveTypeID: lr.LeaveTypeID.String(),
		Status:      lr.Status,
		Days:        lr.Days.String(),
		ReviewedBy:  reviewerID,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   lr.ID.String(),
		EventType:     "leave_request_decided",
		Topic:         events.LeaveRequestDecidedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue leave_request_decided outbox failed",
			zap.String("request_id", lr.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// countDays computes the inclusive span. A half day collapses the span to a
// single date worth 0.5.
func countDays(startDate, endDate time.Time, isHalfDay bool) (decimal.Decimal, error) {
	if isHalfDay {
		if !startDate.Equal(endDate) {
			return decimal.Decimal{}, leaverequesterrors.ErrHalfDaySpan
		}
		return decimal.NewFromFloat(0.5), nil
	}
	span := int64(endDate.Sub(startDate).Hours()/24) + 1
	return decimal.NewFromInt(span), nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaverequesterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(lr LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:             lr.ID.String(),
		EmployeeID:     lr.EmployeeID.String(),
		LeaveTypeID:    lr.LeaveTypeID.String(),
		StartDate:      lr.StartDate.Format("2006-01-02"),
		EndDate:        lr.EndDate.Format("2006-01-02"),
		Days:           lr.Days.String(),
		IsHalfDay:      lr.IsHalfDay,
		Reason:         lr.Reason,
		Status:         lr.Status,
		ReviewComments: lr.ReviewComments,
	}
	if lr.ReviewedBy != nil {
		v := lr.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if lr.ReviewedAt != nil {
		v := lr.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	return resp
}

func mapToListResponse(requests []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(requests))
	for i, lr := range requests {
		resp[i] = mapToResponse(lr)
	}
	return resp
}
