package Models

import (
	"gorm.io/gorm"
)

// PinGroup is a user-curated shortlist of frequently logged tasks under a
// parent task group.
type PinGroup struct {
	gorm.Model
	GroupID   uint           `json:"group_id" gorm:"not null;index"`
	Name      string         `json:"name" gorm:"not null"`
	SortOrder int            `json:"sort_order" gorm:"not null;default:0"`
	Tasks     []PinGroupTask `json:"tasks,omitempty" gorm:"foreignKey:PinGroupID"`
}

type PinGroupTask struct {
	gorm.Model
	PinGroupID uint `json:"pin_group_id" gorm:"not null;index"`
	TaskID     uint `json:"task_id" gorm:"not null"`
	SortOrder  int  `json:"sort_order" gorm:"not null;default:0"`
}
