package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// Nullable: an appointment outlives the professional it referenced.
	ProfessionalID *uint         `gorm:"index" json:"professional_id"`
	Professional   *Professional `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"professional,omitempty"`

	StartTime time.Time     `gorm:"not null;index" json:"start_time"`
	Duration  time.Duration `gorm:"not null" json:"duration"`
	EndTime   time.Time     `gorm:"not null;index" json:"end_time"`

	Status string `gorm:"size:20;not null;default:'pending';index" json:"status"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
