package scoringqueue

// RescoreGameJob rescores a stored game and publishes the scoreboard.
type RescoreGameJob struct {
	GameID string `json:"game_id"`
}

// Kind returns the job type identifier for River
func (RescoreGameJob) Kind() string { return "scoring_rescore" }

// JobInfo represents information about a scheduled job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	GameID      string `json:"game_id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
