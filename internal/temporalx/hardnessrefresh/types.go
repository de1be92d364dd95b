package hardnessrefresh

const (
	WorkflowName    = "question_hardness_refresh"
	ActivityRefresh = "question_hardness_refresh_run"

	// WorkflowID keeps the cron a singleton across server restarts.
	WorkflowID = "question-hardness-refresh"
)
