package models

// RankEntry is one row of the leaderboard: a user and the sum of the
// current scores of every problem they have solved.
type RankEntry struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
}
