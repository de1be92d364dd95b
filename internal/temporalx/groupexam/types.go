package groupexam

import "fmt"

const (
	WorkflowName  = "group_exam_score"
	ActivityScore = "group_exam_score_run"
)

// WorkflowID keys the scoring workflow by template so rescheduling an exam
// replaces the pending trigger instead of stacking a second one.
func WorkflowID(templateID uint) string {
	return fmt.Sprintf("group-exam-score-%d", templateID)
}
