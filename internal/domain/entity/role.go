package entity

// Role is the closed set of actors known to the scheduling core.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// RoleRecord represents a row of the roles lookup table
type RoleRecord struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    Role   `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

func (RoleRecord) TableName() string {
	return "roles"
}

// Role ID constants
const (
	RoleIDAdmin   = 1
	RoleIDDoctor  = 2
	RoleIDPatient = 3
)

// RoleFromID maps a roles table id to its Role.
func RoleFromID(id int) (Role, bool) {
	switch id {
	case RoleIDAdmin:
		return RoleAdmin, true
	case RoleIDDoctor:
		return RoleDoctor, true
	case RoleIDPatient:
		return RolePatient, true
	}
	return "", false
}
