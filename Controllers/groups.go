package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flawiddsouza/streaks-and-todo-sub000/Dates"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Events"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Models"
)

// GroupController handles group-related API endpoints
type GroupController struct {
	DB *gorm.DB
}

// NewGroupController creates a new GroupController
func NewGroupController(db *gorm.DB) *GroupController {
	return &GroupController{DB: db}
}

// GetGroups retrieves groups, optionally filtered by type, ordered by sort_order
func (c *GroupController) GetGroups(ctx *fiber.Ctx) error {
	query := c.DB.Model(&Models.Group{}).Order("sort_order asc, id asc")
	if groupType := ctx.Query("type"); groupType != "" {
		if groupType != Models.GroupTypeStreaks && groupType != Models.GroupTypeTasks {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Unknown group type"})
		}
		query = query.Where("type = ?", groupType)
	}

	var groups []Models.Group
	if err := query.Find(&groups).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve groups"})
	}

	return ctx.JSON(groups)
}

type GroupInput struct {
	Name     string         `json:"name" validate:"required"`
	Type     string         `json:"type" validate:"required,oneof=streaks tasks"`
	Settings datatypes.JSON `json:"settings"`
}

// CreateGroup creates a new group at the end of the display order
func (c *GroupController) CreateGroup(ctx *fiber.Ctx) error {
	var input GroupInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var maxOrder int
	if err := c.DB.Model(&Models.Group{}).Where("type = ?", input.Type).
		Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create group"})
	}

	group := Models.Group{
		Name:      input.Name,
		Type:      input.Type,
		SortOrder: maxOrder + 1,
		Settings:  input.Settings,
	}
	if err := c.DB.Create(&group).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create group"})
	}

	Events.Publish(Events.GroupUpdated, fiber.Map{"group_id": group.ID})
	return ctx.Status(fiber.StatusCreated).JSON(group)
}

// UpdateGroup renames a group or replaces its settings blob
func (c *GroupController) UpdateGroup(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var group Models.Group
	if err := c.DB.First(&group, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Group not found"})
	}

	var input struct {
		Name     string         `json:"name"`
		Settings datatypes.JSON `json:"settings"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Settings != nil {
		updates["settings"] = input.Settings
	}
	if len(updates) > 0 {
		if err := c.DB.Model(&group).Updates(updates).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update group"})
		}
	}

	Events.Publish(Events.GroupUpdated, fiber.Map{"group_id": group.ID})
	return ctx.JSON(group)
}

// DeleteGroup removes a group along with its tasks, notes and pin groups.
// Streaks survive; only their membership rows go.
func (c *GroupController) DeleteGroup(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var group Models.Group
	if err := c.DB.First(&group, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Group not found"})
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&group).Association("Streaks").Clear(); err != nil {
			return err
		}

		var taskIDs []uint
		tx.Model(&Models.Task{}).Where("group_id = ?", group.ID).Pluck("id", &taskIDs)
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&Models.TaskLog{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&Models.PinGroupTask{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", group.ID).Delete(&Models.Task{}).Error; err != nil {
				return err
			}
		}

		var pinGroupIDs []uint
		tx.Model(&Models.PinGroup{}).Where("group_id = ?", group.ID).Pluck("id", &pinGroupIDs)
		if len(pinGroupIDs) > 0 {
			if err := tx.Where("pin_group_id IN ?", pinGroupIDs).Delete(&Models.PinGroupTask{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", group.ID).Delete(&Models.PinGroup{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("group_id = ?", group.ID).Delete(&Models.GroupNote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete group"})
	}

	Events.Publish(Events.GroupUpdated, fiber.Map{"group_id": group.ID})
	return ctx.JSON(fiber.Map{"message": "Group deleted successfully"})
}

type ReorderGroupsInput struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}

// ReorderGroups renumbers sort_order to match the given id sequence
func (c *GroupController) ReorderGroups(ctx *fiber.Ctx) error {
	var input ReorderGroupsInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range input.IDs {
			if err := tx.Model(&Models.Group{}).Where("id = ?", id).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to reorder groups"})
	}

	Events.Publish(Events.GroupUpdated, nil)
	return ctx.JSON(fiber.Map{"message": "Groups reordered"})
}

// StreakWithStats is a streak plus its logs and the computed running streak
type StreakWithStats struct {
	Models.Streak
	CurrentStreak int `json:"current_streak"`
}

// GetStreakGroup returns a streak group with its streaks, their logs and
// running-streak counts, plus the date window the calendar should render.
func (c *GroupController) GetStreakGroup(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var group Models.Group
	if err := c.DB.Preload("Streaks.Logs", func(db *gorm.DB) *gorm.DB {
		return db.Order("date asc")
	}).First(&group, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Group not found"})
	}
	if group.Type != Models.GroupTypeStreaks {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Not a streak group"})
	}

	var known []string
	for _, streak := range group.Streaks {
		for _, logEntry := range streak.Logs {
			known = append(known, logEntry.Date)
		}
	}
	dates := Dates.GenerateDateRange(known)

	streaks := make([]StreakWithStats, 0, len(group.Streaks))
	for _, streak := range group.Streaks {
		done := make(map[string]bool, len(streak.Logs))
		for _, logEntry := range streak.Logs {
			if logEntry.Done {
				done[logEntry.Date] = true
			}
		}
		streaks = append(streaks, StreakWithStats{
			Streak:        streak,
			CurrentStreak: Dates.RunningStreak(dates, done),
		})
	}
	group.Streaks = nil

	return ctx.JSON(fiber.Map{
		"group":   group,
		"dates":   dates,
		"streaks": streaks,
	})
}

// GetTaskGroup returns a task group with its tasks and logs ordered for
// display: by date, then done bucket, then sort_order.
func (c *GroupController) GetTaskGroup(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var group Models.Group
	if err := c.DB.Preload("Tasks.Logs", func(db *gorm.DB) *gorm.DB {
		return db.Order("date asc, done asc, sort_order asc")
	}).First(&group, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Group not found"})
	}
	if group.Type != Models.GroupTypeTasks {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Not a task group"})
	}

	var known []string
	for _, task := range group.Tasks {
		for _, logEntry := range task.Logs {
			known = append(known, logEntry.Date)
		}
	}

	return ctx.JSON(fiber.Map{
		"group": group,
		"dates": Dates.GenerateDateRange(known),
	})
}

// GetGroupNotes returns notes for a group, optionally windowed by from/to
func (c *GroupController) GetGroupNotes(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	query := c.DB.Where("group_id = ?", id).Order("date asc")
	if from := ctx.Query("from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := ctx.Query("to"); to != "" {
		query = query.Where("date <= ?", to)
	}

	var notes []Models.GroupNote
	if err := query.Find(&notes).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve notes"})
	}
	return ctx.JSON(notes)
}

type GroupNoteInput struct {
	Note string `json:"note"`
}

// SetGroupNote upserts the note for a group on a date. An empty note
// deletes the row.
func (c *GroupController) SetGroupNote(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}
	date := ctx.Params("date")
	if err := validate.Var(date, "datetime=2006-01-02"); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid date, use YYYY-MM-DD"})
	}

	var group Models.Group
	if err := c.DB.First(&group, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Group not found"})
	}

	var input GroupNoteInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if input.Note == "" {
		// hard delete so the (group_id, date) unique index stays usable
		c.DB.Unscoped().Where("group_id = ? AND date = ?", group.ID, date).Delete(&Models.GroupNote{})
		Events.Publish(Events.GroupNoteUpdated, fiber.Map{"group_id": group.ID, "date": date})
		return ctx.JSON(fiber.Map{"message": "Note cleared"})
	}

	// single-statement upsert: concurrent writes cannot race the
	// (group_id, date) unique index
	note := Models.GroupNote{GroupID: group.ID, Date: date, Note: input.Note}
	err = c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"note", "updated_at"}),
	}).Create(&note).Error
	if err == nil {
		err = c.DB.Where("group_id = ? AND date = ?", group.ID, date).First(&note).Error
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to save note"})
	}

	Events.Publish(Events.GroupNoteUpdated, fiber.Map{"group_id": group.ID, "date": date})
	return ctx.JSON(note)
}
