package models

// UserProblemLink records that a user has been credited for a problem.
// Rows are inserted exactly once per (user, problem) pair and never
// updated or removed; the composite primary key makes the concurrent
// double-solve race fail safely at the storage layer.
type UserProblemLink struct {
	UserID    uint `json:"user_id" gorm:"primaryKey"`
	ProblemID uint `json:"problem_id" gorm:"primaryKey"`
}

func (UserProblemLink) TableName() string {
	return "userproblemlink"
}

// SubmissionStatus is the outcome of an answer submission.
type SubmissionStatus string

const (
	SubmissionAccepted SubmissionStatus = "Accepted"
	SubmissionWrong    SubmissionStatus = "Wrong"
)
