package entity

import (
	"time"

	"github.com/google/uuid"
)

// Hospital is a facility owned by exactly one administrator.
type Hospital struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Location  string    `gorm:"type:varchar(255);not null" json:"location"`
	AdminID   uuid.UUID `gorm:"type:uuid;not null;index" json:"admin_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Hospital) TableName() string {
	return "hospitals"
}

// OwnedBy reports whether adminID owns the hospital.
func (h *Hospital) OwnedBy(adminID uuid.UUID) bool {
	return h.AdminID == adminID
}

// Department belongs to a single hospital. (name, hospital) is soft-unique.
type Department struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	HospitalID uuid.UUID `gorm:"type:uuid;not null;index" json:"hospital_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}
