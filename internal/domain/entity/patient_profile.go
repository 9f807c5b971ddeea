package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatientProfile is the patient variant of Profile, read from the identity
// service's patient_profiles table.
type PatientProfile struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	NIK         string    `gorm:"type:char(16);uniqueIndex;not null" json:"nik"`
	PhoneNumber string    `gorm:"type:varchar(20);index" json:"phone_number,omitempty"`
	DateOfBirth time.Time `gorm:"type:date;not null" json:"date_of_birth"`
	Gender      Gender    `gorm:"type:char(1);not null" json:"gender"`
	Address     string    `gorm:"type:text" json:"address,omitempty"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

// Age is the patient's age in whole years on the given day.
func (p *PatientProfile) Age(on time.Time) int {
	years := on.Year() - p.DateOfBirth.Year()
	if on.Month() < p.DateOfBirth.Month() || (on.Month() == p.DateOfBirth.Month() && on.Day() < p.DateOfBirth.Day()) {
		years--
	}
	return years
}

// Gender is stored as a single-letter code.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)
