package holiday

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeNational = "NATIONAL"
	TypeCompany  = "COMPANY"
	TypeRegional = "REGIONAL"
)

// Holiday is catalog data for calendars and planning screens. It does not
// participate in leave day counting.
type Holiday struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(150);not null;uniqueIndex:uq_holidays_name_date"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:uq_holidays_name_date;index:idx_holidays_date"`
	Type        string    `gorm:"type:varchar(20);not null;default:'NATIONAL'"`
	IsOptional  bool      `gorm:"not null;default:false"`
	Description string    `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
