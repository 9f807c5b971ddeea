package entity

import "github.com/google/uuid"

// AdminProfile represents hospital-administrator profile data
type AdminProfile struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Organization string    `gorm:"type:varchar(255)" json:"organization,omitempty"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AdminProfile) TableName() string {
	return "admin_profiles"
}
