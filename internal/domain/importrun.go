package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ImportRunStatus string

const (
	ImportRunRunning   ImportRunStatus = "running"
	ImportRunSucceeded ImportRunStatus = "succeeded"
	ImportRunFailed    ImportRunStatus = "failed"
)

// ImportRun records one bulk load of questions or templates from a seed file,
// with a per-record report kept as JSON for operator inspection.
type ImportRun struct {
	ID         uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Source     string          `gorm:"not null;column:source" json:"source"`
	Status     ImportRunStatus `gorm:"not null;default:running;column:status" json:"status"`
	Created    int             `gorm:"not null;default:0;column:created" json:"created"`
	Skipped    int             `gorm:"not null;default:0;column:skipped" json:"skipped"`
	Report     datatypes.JSON  `gorm:"column:report" json:"report,omitempty"`
	StartedAt  time.Time       `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time      `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (ImportRun) TableName() string { return "import_runs" }
