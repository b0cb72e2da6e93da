package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/flawiddsouza/streaks-and-todo-sub000/Events"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Models"
)

// PinGroupController handles the pinned-task shortlist endpoints
type PinGroupController struct {
	DB *gorm.DB
}

// NewPinGroupController creates a new PinGroupController
func NewPinGroupController(db *gorm.DB) *PinGroupController {
	return &PinGroupController{DB: db}
}

// GetPinGroups lists pin groups, optionally for a single parent group,
// with their task entries preloaded in display order.
func (c *PinGroupController) GetPinGroups(ctx *fiber.Ctx) error {
	query := c.DB.Preload("Tasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order asc")
	}).Order("sort_order asc, id asc")

	if groupID := ctx.Query("group_id"); groupID != "" {
		id, err := strconv.Atoi(groupID)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
		}
		query = query.Where("group_id = ?", id)
	}

	var pinGroups []Models.PinGroup
	if err := query.Find(&pinGroups).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve pin groups"})
	}
	return ctx.JSON(pinGroups)
}

type PinGroupInput struct {
	GroupID uint   `json:"group_id" validate:"required"`
	Name    string `json:"name" validate:"required"`
}

// CreatePinGroup creates a pin group under a task group
func (c *PinGroupController) CreatePinGroup(ctx *fiber.Ctx) error {
	var input PinGroupInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var group Models.Group
	if err := c.DB.First(&group, input.GroupID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Group not found"})
	}
	if group.Type != Models.GroupTypeTasks {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Not a task group"})
	}

	var maxOrder int
	if err := c.DB.Model(&Models.PinGroup{}).Where("group_id = ?", group.ID).
		Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create pin group"})
	}

	pinGroup := Models.PinGroup{
		GroupID:   group.ID,
		Name:      input.Name,
		SortOrder: maxOrder + 1,
	}
	if err := c.DB.Create(&pinGroup).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create pin group"})
	}

	Events.Publish(Events.GroupUpdated, fiber.Map{"group_id": group.ID})
	return ctx.Status(fiber.StatusCreated).JSON(pinGroup)
}

// UpdatePinGroup renames a pin group
func (c *PinGroupController) UpdatePinGroup(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid pin group ID"})
	}

	var pinGroup Models.PinGroup
	if err := c.DB.First(&pinGroup, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Pin group not found"})
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

	if err := c.DB.Model(&pinGroup).Update("name", input.Name).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update pin group"})
	}

	Events.Publish(Events.GroupUpdated, fiber.Map{"group_id": pinGroup.GroupID})
	return ctx.JSON(pinGroup)
}

// DeletePinGroup removes a pin group and its entries. The tasks themselves
// are untouched.
func (c *PinGroupController) DeletePinGroup(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid pin group ID"})
	}

	var pinGroup Models.PinGroup
	if err := c.DB.First(&pinGroup, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Pin group not found"})
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pin_group_id = ?", pinGroup.ID).Delete(&Models.PinGroupTask{}).Error; err != nil {
			return err
		}
		return tx.Delete(&pinGroup).Error
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete pin group"})
	}

	Events.Publish(Events.GroupUpdated, fiber.Map{"group_id": pinGroup.GroupID})
	return ctx.JSON(fiber.Map{"message": "Pin group deleted successfully"})
}

type PinTaskInput struct {
	TaskID uint `json:"task_id" validate:"required"`
}

// AddTaskToPinGroup pins a task to the shortlist
func (c *PinGroupController) AddTaskToPinGroup(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid pin group ID"})
	}

	var pinGroup Models.PinGroup
	if err := c.DB.First(&pinGroup, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Pin group not found"})
	}

	var input PinTaskInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var task Models.Task
	if err := c.DB.First(&task, input.TaskID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
	}

	var existing int64
	c.DB.Model(&Models.PinGroupTask{}).
		Where("pin_group_id = ? AND task_id = ?", pinGroup.ID, task.ID).Count(&existing)
	if existing > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Task is already pinned"})
	}

	var maxOrder int
	if err := c.DB.Model(&Models.PinGroupTask{}).Where("pin_group_id = ?", pinGroup.ID).
		Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to pin task"})
	}

	entry := Models.PinGroupTask{
		PinGroupID: pinGroup.ID,
		TaskID:     task.ID,
		SortOrder:  maxOrder + 1,
	}
	if err := c.DB.Create(&entry).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to pin task"})
	}

	Events.Publish(Events.GroupUpdated, fiber.Map{"group_id": pinGroup.GroupID})
	return ctx.Status(fiber.StatusCreated).JSON(entry)
}

// RemoveTaskFromPinGroup unpins a task
func (c *PinGroupController) RemoveTaskFromPinGroup(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid pin group ID"})
	}
	taskID, err := strconv.Atoi(ctx.Params("taskId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var pinGroup Models.PinGroup
	if err := c.DB.First(&pinGroup, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Pin group not found"})
	}

	result := c.DB.Where("pin_group_id = ? AND task_id = ?", pinGroup.ID, taskID).
		Delete(&Models.PinGroupTask{})
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to unpin task"})
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task is not pinned"})
	}

	Events.Publish(Events.GroupUpdated, fiber.Map{"group_id": pinGroup.GroupID})
	return ctx.JSON(fiber.Map{"message": "Task unpinned"})
}

type ReorderPinTasksInput struct {
	TaskIDs []uint `json:"task_ids" validate:"required,min=1"`
}

// ReorderPinGroupTasks renumbers the shortlist to match the given task ids
func (c *PinGroupController) ReorderPinGroupTasks(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid pin group ID"})
	}

	var pinGroup Models.PinGroup
	if err := c.DB.First(&pinGroup, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Pin group not found"})
	}

	var input ReorderPinTasksInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		for i, taskID := range input.TaskIDs {
			if err := tx.Model(&Models.PinGroupTask{}).
				Where("pin_group_id = ? AND task_id = ?", pinGroup.ID, taskID).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to reorder pinned tasks"})
	}

	Events.Publish(Events.GroupUpdated, fiber.Map{"group_id": pinGroup.GroupID})
	return ctx.JSON(fiber.Map{"message": "Pinned tasks reordered"})
}
