package model

import "time"

// Mission is a one-shot chore with a fixed token reward.
type Mission struct {
	ID          string
	Title       string
	Reward      int64
	Completed   bool
	CompletedAt time.Time
}

// LearningModule is a lesson in the curriculum.
type LearningModule struct {
	ID          string
	Title       string
	XPReward    int64
	TotalPoints int64
}

// ModuleProgress tracks a user's completions of one module.
type ModuleProgress struct {
	ModuleID        string
	Completions     int
	BestScore       int64
	LastCompletedAt time.Time
}
