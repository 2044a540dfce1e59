package models

import (
	"time"
)

type Problem struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	OwnerID     uint    `json:"owner_id" gorm:"not null;index"`
	Name        string  `json:"name" gorm:"uniqueIndex;not null;size:64"`
	Description *string `json:"description" gorm:"type:text"`

	// Answer is the secret flag. It is nulled out in read responses for
	// anonymous requesters and players (tier >= 2).
	Answer *string `json:"answer" gorm:"size:255"`

	// ScoreInitial is fixed at creation time (positive multiple of 10);
	// ScoreNow starts equal to it and decays as users solve the problem.
	ScoreInitial int `json:"score_initial" gorm:"not null"`
	ScoreNow     int `json:"score_now" gorm:"not null"`

	Solvers []User `json:"-" gorm:"many2many:userproblemlink;joinForeignKey:ProblemID;joinReferences:UserID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Problem) TableName() string {
	return "problems"
}

// DecayStep is the amount ScoreNow drops on each distinct first solve.
func (p *Problem) DecayStep() int {
	return p.ScoreInitial / 10
}

// Redact clears the secret answer before the problem leaves the service.
func (p *Problem) Redact() {
	p.Answer = nil
}
