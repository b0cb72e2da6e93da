package Models

import (
	"gorm.io/gorm"
)

type Streak struct {
	gorm.Model
	Name   string      `json:"name" gorm:"not null"`
	Groups []Group     `json:"groups,omitempty" gorm:"many2many:streak_groups;"`
	Logs   []StreakLog `json:"logs,omitempty" gorm:"foreignKey:StreakID"`
}

// StreakLog marks a streak done (or explicitly not done) on a calendar
// date. Dates are YYYY-MM-DD strings; the domain is day-keyed and
// timezone-naive. One log per (streak, date).
type StreakLog struct {
	gorm.Model
	StreakID uint   `json:"streak_id" gorm:"not null;uniqueIndex:idx_streak_log_date"`
	Date     string `json:"date" gorm:"not null;uniqueIndex:idx_streak_log_date"`
	Done     bool   `json:"done"`
	Note     string `json:"note"`
}
