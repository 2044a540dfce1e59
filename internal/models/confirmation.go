package models

import (
	"time"
)

// ConfirmationPurpose names the sensitive action an email code authorizes.
type ConfirmationPurpose string

const (
	PurposeLogin  ConfirmationPurpose = "LOGIN"
	PurposeBind   ConfirmationPurpose = "BIND"
	PurposeModify ConfirmationPurpose = "MODIFY"
)

// Valid reports whether p is one of the known purposes.
func (p ConfirmationPurpose) Valid() bool {
	switch p {
	case PurposeLogin, PurposeBind, PurposeModify:
		return true
	}
	return false
}

// Confirmation is a short-lived one-time email code. Exactly one live row
// exists per (email, option); re-issuing after expiry overwrites the row
// and resets its timestamp.
type Confirmation struct {
	Email      string              `json:"email" gorm:"primaryKey;size:255"`
	Option     ConfirmationPurpose `json:"option" gorm:"primaryKey;size:16"`
	Token      string              `json:"-" gorm:"not null;size:6"`
	CreateTime time.Time           `json:"create_time" gorm:"not null"`
}

func (Confirmation) TableName() string {
	return "confirmations"
}

// Expired reports whether the code has outlived the validity window.
func (c *Confirmation) Expired(window time.Duration, now time.Time) bool {
	return now.Sub(c.CreateTime) > window
}
