package entity

import "github.com/google/uuid"

// Profile is the closed set of role-specific profile shapes. Every role has
// exactly one implementation; the unexported marker keeps the set closed.
type Profile interface {
	ProfileRole() Role
	OwnerID() uuid.UUID
	// Account is the shared identity row the profile extends.
	Account() *User
	isProfile()
}

func (*AdminProfile) ProfileRole() Role   { return RoleAdmin }
func (*DoctorProfile) ProfileRole() Role  { return RoleDoctor }
func (*PatientProfile) ProfileRole() Role { return RolePatient }

func (p *AdminProfile) OwnerID() uuid.UUID   { return p.UserID }
func (p *DoctorProfile) OwnerID() uuid.UUID  { return p.UserID }
func (p *PatientProfile) OwnerID() uuid.UUID { return p.UserID }

func (p *AdminProfile) Account() *User   { return &p.User }
func (p *DoctorProfile) Account() *User  { return &p.User }
func (p *PatientProfile) Account() *User { return &p.User }

func (*AdminProfile) isProfile()   {}
func (*DoctorProfile) isProfile()  {}
func (*PatientProfile) isProfile() {}
