package leavetype

import (
	"time"

	"github.com/google/uuid"
)

type LeaveType struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_leave_types_name"`
	MaxDays int       `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
