package models

import (
	"time"
)

// Permission is an ordered privilege tier. Lower values are more privileged:
// root administrators are 0, problem setters 1, regular players 2.
type Permission int

const (
	PermissionRoot   Permission = 0
	PermissionSetter Permission = 1
	PermissionPlayer Permission = 2
)

// MoreTrustedThan reports whether p is strictly more privileged than other.
func (p Permission) MoreTrustedThan(other Permission) bool {
	return p < other
}

// AtLeast reports whether p is at least as privileged as other.
func (p Permission) AtLeast(other Permission) bool {
	return p <= other
}

// Valid reports whether p is one of the three known tiers.
func (p Permission) Valid() bool {
	return p >= PermissionRoot && p <= PermissionPlayer
}

type User struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Name       string     `json:"name" gorm:"uniqueIndex;not null;size:64"`
	Email      *string    `json:"email" gorm:"uniqueIndex;size:255"`
	Password   string     `json:"-" gorm:"not null;size:100"`
	Permission Permission `json:"permission" gorm:"not null;default:2"`

	// Problems this user has been credited for, via the solve link table.
	Problems []Problem `json:"-" gorm:"many2many:userproblemlink;joinForeignKey:UserID;joinReferences:ProblemID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasEmail reports whether the user has a bound contact email.
func (u *User) HasEmail() bool {
	return u.Email != nil && *u.Email != ""
}
