package Models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Group types. A group holds either streaks (via the streak_groups join
// table) or tasks (via tasks.group_id), never both.
const (
	GroupTypeStreaks = "streaks"
	GroupTypeTasks   = "tasks"
)

type Group struct {
	gorm.Model
	Name      string `json:"name" gorm:"not null"`
	Type      string `json:"type" gorm:"not null;index"`
	SortOrder int    `json:"sort_order" gorm:"not null;default:0"`
	// Settings holds per-group view configuration (layout, collapsed
	// sections) as an opaque JSON blob the client owns.
	Settings datatypes.JSON `json:"settings,omitempty"`
	Streaks  []Streak       `json:"streaks,omitempty" gorm:"many2many:streak_groups;"`
	Tasks    []Task         `json:"tasks,omitempty" gorm:"foreignKey:GroupID"`
}

// GroupNote is a free-text note attached to a group on a calendar date.
// One note per (group, date).
type GroupNote struct {
	gorm.Model
	GroupID uint   `json:"group_id" gorm:"not null;uniqueIndex:idx_group_note_date"`
	Date    string `json:"date" gorm:"not null;uniqueIndex:idx_group_note_date"`
	Note    string `json:"note"`
}
