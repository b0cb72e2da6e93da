package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flawiddsouza/streaks-and-todo-sub000/Dates"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Events"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Models"
)

// StreakController handles streak and streak-log API endpoints
type StreakController struct {
	DB *gorm.DB
}

// NewStreakController creates a new StreakController
func NewStreakController(db *gorm.DB) *StreakController {
	return &StreakController{DB: db}
}

type StreakInput struct {
	Name    string `json:"name" validate:"required"`
	GroupID uint   `json:"group_id"`
}

// CreateStreak creates a streak, optionally attaching it to a streak group
func (c *StreakController) CreateStreak(ctx *fiber.Ctx) error {
	var input StreakInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	streak := Models.Streak{Name: input.Name}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&streak).Error; err != nil {
			return err
		}
		if input.GroupID != 0 {
			var group Models.Group
			if err := tx.First(&group, input.GroupID).Error; err != nil {
				return err
			}
			if group.Type != Models.GroupTypeStreaks {
				return gorm.ErrInvalidData
			}
			return tx.Model(&group).Association("Streaks").Append(&streak)
		}
		return nil
	})
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to create streak"})
	}

	Events.Publish(Events.StreakLogUpdated, fiber.Map{"streak_id": streak.ID})
	return ctx.Status(fiber.StatusCreated).JSON(streak)
}

// UpdateStreak renames a streak
func (c *StreakController) UpdateStreak(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid streak ID"})
	}

	var streak Models.Streak
	if err := c.DB.First(&streak, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Streak not found"})
	}

	var input struct {
		Name string `json:"name" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := c.DB.Model(&streak).Update("name", input.Name).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update streak"})
	}

	Events.Publish(Events.StreakLogUpdated, fiber.Map{"streak_id": streak.ID})
	return ctx.JSON(streak)
}

// DeleteStreak removes a streak, its logs, its group memberships, and
// clears any task links pointing at it.
func (c *StreakController) DeleteStreak(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid streak ID"})
	}

	var streak Models.Streak
	if err := c.DB.First(&streak, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Streak not found"})
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&streak).Association("Groups").Clear(); err != nil {
			return err
		}
		// hard delete: the (streak_id, date) unique index must not trip
		// over soft-deleted rows when a date is logged again
		if err := tx.Unscoped().Where("streak_id = ?", streak.ID).Delete(&Models.StreakLog{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&Models.Task{}).Where("streak_id = ?", streak.ID).
			Update("streak_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&streak).Error
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete streak"})
	}

	Events.Publish(Events.StreakLogUpdated, fiber.Map{"streak_id": streak.ID})
	return ctx.JSON(fiber.Map{"message": "Streak deleted successfully"})
}

type StreakMembershipInput struct {
	StreakID uint `json:"streak_id" validate:"required"`
}

// AddStreakToGroup attaches an existing streak to a streak group
func (c *StreakController) AddStreakToGroup(ctx *fiber.Ctx) error {
	groupID, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var input StreakMembershipInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var group Models.Group
	if err := c.DB.First(&group, groupID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Group not found"})
	}
	if group.Type != Models.GroupTypeStreaks {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Not a streak group"})
	}

	var streak Models.Streak
	if err := c.DB.First(&streak, input.StreakID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Streak not found"})
	}

	if err := c.DB.Model(&group).Association("Streaks").Append(&streak); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to add streak to group"})
	}

	Events.Publish(Events.GroupUpdated, fiber.Map{"group_id": group.ID})
	return ctx.JSON(fiber.Map{"message": "Streak added to group"})
}

// RemoveStreakFromGroup detaches a streak from a group without deleting it
func (c *StreakController) RemoveStreakFromGroup(ctx *fiber.Ctx) error {
	groupID, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}
	streakID, err := strconv.Atoi(ctx.Params("streakId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid streak ID"})
	}

	var group Models.Group
	if err := c.DB.First(&group, groupID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Group not found"})
	}
	var streak Models.Streak
	if err := c.DB.First(&streak, streakID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Streak not found"})
	}

	if err := c.DB.Model(&group).Association("Streaks").Delete(&streak); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to remove streak from group"})
	}

	Events.Publish(Events.GroupUpdated, fiber.Map{"group_id": group.ID})
	return ctx.JSON(fiber.Map{"message": "Streak removed from group"})
}

type StreakLogInput struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Done bool   `json:"done"`
	Note string `json:"note"`
}

// SetStreakLog upserts the log for a streak on a date. A streak has at
// most one log per date; setting it again overwrites done and note.
func (c *StreakController) SetStreakLog(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid streak ID"})
	}

	var streak Models.Streak
	if err := c.DB.First(&streak, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Streak not found"})
	}

	var input StreakLogInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// single-statement upsert: concurrent writes cannot race the
	// (streak_id, date) unique index
	logEntry := Models.StreakLog{
		StreakID: streak.ID,
		Date:     input.Date,
		Done:     input.Done,
		Note:     input.Note,
	}
	err = c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "streak_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"done", "note", "updated_at"}),
	}).Create(&logEntry).Error
	if err == nil {
		err = c.DB.Where("streak_id = ? AND date = ?", streak.ID, input.Date).First(&logEntry).Error
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to save streak log"})
	}

	Events.Publish(Events.StreakLogUpdated, fiber.Map{"streak_id": streak.ID, "date": input.Date})
	return ctx.JSON(logEntry)
}

// DeleteStreakLog removes the log for a streak on a date
func (c *StreakController) DeleteStreakLog(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid streak ID"})
	}
	date := ctx.Params("date")
	if err := validate.Var(date, "datetime=2006-01-02"); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid date, use YYYY-MM-DD"})
	}

	result := c.DB.Unscoped().Where("streak_id = ? AND date = ?", id, date).Delete(&Models.StreakLog{})
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete streak log"})
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Streak log not found"})
	}

	Events.Publish(Events.StreakLogUpdated, fiber.Map{"streak_id": id, "date": date})
	return ctx.JSON(fiber.Map{"message": "Streak log deleted successfully"})
}

// GetStreakStats computes the running streak, total done days and longest
// run for a single streak.
func (c *StreakController) GetStreakStats(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid streak ID"})
	}

	var streak Models.Streak
	if err := c.DB.Preload("Logs").First(&streak, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Streak not found"})
	}

	known := make([]string, 0, len(streak.Logs))
	done := make(map[string]bool, len(streak.Logs))
	totalDone := 0
	for _, logEntry := range streak.Logs {
		known = append(known, logEntry.Date)
		if logEntry.Done {
			done[logEntry.Date] = true
			totalDone++
		}
	}
	dates := Dates.GenerateDateRange(known)

	return ctx.JSON(fiber.Map{
		"streak_id":      streak.ID,
		"name":           streak.Name,
		"current_streak": Dates.RunningStreak(dates, done),
		"longest_streak": Dates.LongestRun(dates, done),
		"total_done":     totalDone,
	})
}
