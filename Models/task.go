package Models

import (
	"gorm.io/gorm"
)

type Task struct {
	gorm.Model
	GroupID uint   `json:"group_id" gorm:"not null;index"`
	Task    string `json:"task" gorm:"not null"`
	// DefaultExtraInfo pre-fills the extra-info field when logging this
	// task. Supports the $x substitution token, see TaskText.Expand.
	DefaultExtraInfo string    `json:"default_extra_info"`
	StreakID         *uint     `json:"streak_id"` // optional linked streak
	Logs             []TaskLog `json:"logs,omitempty" gorm:"foreignKey:TaskID"`
}

// TaskLog records the task on a calendar date. Unlike streak logs,
// duplicates per (task, date) are allowed: the same task can be logged
// several times a day. SortOrder positions the log within its
// (date, done) bucket.
type TaskLog struct {
	gorm.Model
	TaskID    uint   `json:"task_id" gorm:"not null;index:idx_task_log_date"`
	Date      string `json:"date" gorm:"not null;index:idx_task_log_date"`
	ExtraInfo string `json:"extra_info"`
	Done      bool   `json:"done"`
	SortOrder int    `json:"sort_order" gorm:"not null;default:0"`
}
