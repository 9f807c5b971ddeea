package entity

import "github.com/google/uuid"

// DoctorProfile represents doctor-specific profile data. Specialization is
// not stored here: it belongs to each hospital association.
type DoctorProfile struct {
	UserID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	STRNumber         string    `gorm:"column:str_number;type:varchar(50);uniqueIndex;not null" json:"str_number"`
	Qualifications    string    `gorm:"type:text" json:"qualifications,omitempty"`
	YearsOfExperience int       `gorm:"not null;default:0" json:"years_of_experience"`
	Biography         string    `gorm:"type:text" json:"biography,omitempty"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}
