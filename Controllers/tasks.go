package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/flawiddsouza/streaks-and-todo-sub000/Events"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Models"
	"github.com/flawiddsouza/streaks-and-todo-sub000/TaskText"
)

// TaskController handles task and task-log API endpoints
type TaskController struct {
	DB *gorm.DB
}

// NewTaskController creates a new TaskController
func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{DB: db}
}

type TaskInput struct {
	GroupID          uint   `json:"group_id" validate:"required"`
	Task             string `json:"task" validate:"required"`
	DefaultExtraInfo string `json:"default_extra_info"`
	StreakID         *uint  `json:"streak_id"`
}

// CreateTask creates a task inside a task group
func (c *TaskController) CreateTask(ctx *fiber.Ctx) error {
	var input TaskInput
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

	task := Models.Task{
		GroupID:          group.ID,
		Task:             input.Task,
		DefaultExtraInfo: input.DefaultExtraInfo,
		StreakID:         input.StreakID,
	}
	if err := c.DB.Create(&task).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create task"})
	}

	Events.Publish(Events.TaskLogUpdated, fiber.Map{"task_id": task.ID})
	return ctx.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask edits task text, default extra info or the linked streak
func (c *TaskController) UpdateTask(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var task Models.Task
	if err := c.DB.First(&task, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
	}

	var input struct {
		Task             *string `json:"task"`
		DefaultExtraInfo *string `json:"default_extra_info"`
		StreakID         *uint   `json:"streak_id"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updates := map[string]interface{}{}
	if input.Task != nil && *input.Task != "" {
		updates["task"] = *input.Task
	}
	if input.DefaultExtraInfo != nil {
		updates["default_extra_info"] = *input.DefaultExtraInfo
	}
	if input.StreakID != nil {
		if *input.StreakID == 0 {
			updates["streak_id"] = nil
		} else {
			updates["streak_id"] = *input.StreakID
		}
	}
	if len(updates) > 0 {
		if err := c.DB.Model(&task).Updates(updates).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update task"})
		}
	}

	Events.Publish(Events.TaskLogUpdated, fiber.Map{"task_id": task.ID})
	return ctx.JSON(task)
}

// DeleteTask removes a task with its logs and pin entries
func (c *TaskController) DeleteTask(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var task Models.Task
	if err := c.DB.First(&task, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&Models.TaskLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&Models.PinGroupTask{}).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete task"})
	}

	Events.Publish(Events.TaskLogUpdated, fiber.Map{"task_id": task.ID})
	return ctx.JSON(fiber.Map{"message": "Task deleted successfully"})
}

type TaskLogInput struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	ExtraInfo string `json:"extra_info"`
	Done      bool   `json:"done"`
}

// AddTaskLog appends a log for a task on a date. Duplicates per date are
// allowed; the new log lands at the tail of its (date, done) bucket. An
// empty extra_info falls back to the task's default.
func (c *TaskController) AddTaskLog(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var task Models.Task
	if err := c.DB.First(&task, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
	}

	var input TaskLogInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	extraInfo := input.ExtraInfo
	if extraInfo == "" {
		extraInfo = task.DefaultExtraInfo
	}

	logEntry, err := c.appendLog(c.DB, task.ID, input.Date, extraInfo, input.Done)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create task log"})
	}

	Events.Publish(Events.TaskLogUpdated, fiber.Map{"task_id": task.ID, "date": input.Date})
	return ctx.Status(fiber.StatusCreated).JSON(logEntry)
}

type NewTaskLogInput struct {
	GroupID uint   `json:"group_id" validate:"required"`
	Text    string `json:"text" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Done    bool   `json:"done"`
}

// CreateTaskWithLog creates a task from free text and logs it in one call.
// "Buy milk (2%)" becomes task "Buy milk" with extra info "2%" on the log.
func (c *TaskController) CreateTaskWithLog(ctx *fiber.Ctx) error {
	var input NewTaskLogInput
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

	parsed := TaskText.Parse(input.Text)
	if parsed.Task == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Task text is empty"})
	}

	var task Models.Task
	var logEntry Models.TaskLog
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		// reuse an existing task with the same text in this group
		err := tx.Where("group_id = ? AND task = ?", group.ID, parsed.Task).First(&task).Error
		if err == gorm.ErrRecordNotFound {
			task = Models.Task{GroupID: group.ID, Task: parsed.Task}
			err = tx.Create(&task).Error
		}
		if err != nil {
			return err
		}

		extraInfo := parsed.ExtraInfo
		if !parsed.HasExtra {
			extraInfo = task.DefaultExtraInfo
		}
		logEntry, err = c.appendLog(tx, task.ID, input.Date, extraInfo, input.Done)
		return err
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create task log"})
	}

	Events.Publish(Events.TaskLogUpdated, fiber.Map{"task_id": task.ID, "date": input.Date})
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"task": task, "log": logEntry})
}

// UpdateTaskLog edits a log. Changing done or date moves the log to the
// tail of its new bucket and renumbers the one it left.
func (c *TaskController) UpdateTaskLog(ctx *fiber.Ctx) error {
	logID, err := strconv.Atoi(ctx.Params("logId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid log ID"})
	}

	var logEntry Models.TaskLog
	if err := c.DB.First(&logEntry, logID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task log not found"})
	}

	var input struct {
		Date      *string `json:"date"`
		ExtraInfo *string `json:"extra_info"`
		Done      *bool   `json:"done"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	newDate, newDone := logEntry.Date, logEntry.Done
	if input.Date != nil {
		if err := validate.Var(*input.Date, "datetime=2006-01-02"); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid date, use YYYY-MM-DD"})
		}
		newDate = *input.Date
	}
	if input.Done != nil {
		newDone = *input.Done
	}
	bucketChanged := newDate != logEntry.Date || newDone != logEntry.Done

	oldDate, oldDone := logEntry.Date, logEntry.Done
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if input.ExtraInfo != nil {
			updates["extra_info"] = *input.ExtraInfo
		}
		if bucketChanged {
			var maxOrder int
			if err := tx.Model(&Models.TaskLog{}).
				Where("date = ? AND done = ? AND id <> ?", newDate, newDone, logEntry.ID).
				Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder).Error; err != nil {
				return err
			}
			updates["date"] = newDate
			updates["done"] = newDone
			updates["sort_order"] = maxOrder + 1
		}
		if len(updates) > 0 {
			if err := tx.Model(&logEntry).Updates(updates).Error; err != nil {
				return err
			}
		}
		if bucketChanged {
			return c.renumberBucket(tx, oldDate, oldDone)
		}
		return nil
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update task log"})
	}

	c.DB.First(&logEntry, logEntry.ID)
	Events.Publish(Events.TaskLogUpdated, fiber.Map{"task_id": logEntry.TaskID, "date": logEntry.Date})
	return ctx.JSON(logEntry)
}

// DeleteTaskLog removes a single log. The task itself stays even when this
// was its last log; views simply stop showing it.
func (c *TaskController) DeleteTaskLog(ctx *fiber.Ctx) error {
	logID, err := strconv.Atoi(ctx.Params("logId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid log ID"})
	}

	var logEntry Models.TaskLog
	if err := c.DB.First(&logEntry, logID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task log not found"})
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&logEntry).Error; err != nil {
			return err
		}
		return c.renumberBucket(tx, logEntry.Date, logEntry.Done)
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete task log"})
	}

	Events.Publish(Events.TaskLogUpdated, fiber.Map{"task_id": logEntry.TaskID, "date": logEntry.Date})
	return ctx.JSON(fiber.Map{"message": "Task log deleted successfully"})
}

type ReorderTaskLogsInput struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Done   bool   `json:"done"`
	LogIDs []uint `json:"log_ids" validate:"required,min=1"`
}

// ReorderTaskLogs renumbers a (date, done) bucket to match the given log
// id sequence. Every log in the bucket must be listed; ids from other
// buckets are rejected (move-log is the endpoint that changes buckets).
func (c *TaskController) ReorderTaskLogs(ctx *fiber.Ctx) error {
	var input ReorderTaskLogsInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var bucket []Models.TaskLog
	if err := c.DB.Where("date = ? AND done = ?", input.Date, input.Done).
		Find(&bucket).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to load task logs"})
	}

	inBucket := make(map[uint]bool, len(bucket))
	for _, logEntry := range bucket {
		inBucket[logEntry.ID] = true
	}
	if len(input.LogIDs) != len(bucket) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "log_ids must list every log in the bucket"})
	}
	for _, id := range input.LogIDs {
		if !inBucket[id] {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "log_ids contains a log outside the bucket"})
		}
		delete(inBucket, id) // catches duplicates
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range input.LogIDs {
			if err := tx.Model(&Models.TaskLog{}).Where("id = ?", id).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to reorder task logs"})
	}

	Events.Publish(Events.TaskLogUpdated, fiber.Map{"date": input.Date})
	return ctx.JSON(fiber.Map{"message": "Task logs reordered"})
}

type MoveTaskLogInput struct {
	LogID       uint   `json:"log_id" validate:"required"`
	TargetLogID uint   `json:"target_log_id" validate:"required"`
	Position    string `json:"position" validate:"required,oneof=before after"`
}

// MoveTaskLog places a log before or after an anchor log. The moved log
// adopts the anchor's (date, done) bucket; both affected buckets come out
// renumbered 0..n-1.
func (c *TaskController) MoveTaskLog(ctx *fiber.Ctx) error {
	var input MoveTaskLogInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if input.LogID == input.TargetLogID {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot move a log relative to itself"})
	}

	var moved, target Models.TaskLog
	if err := c.DB.First(&moved, input.LogID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task log not found"})
	}
	if err := c.DB.First(&target, input.TargetLogID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Target log not found"})
	}

	sameBucket := moved.Date == target.Date && moved.Done == target.Done
	sourceDate, sourceDone := moved.Date, moved.Done

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		// target bucket ordered, without the moved log
		var bucket []Models.TaskLog
		if err := tx.Where("date = ? AND done = ? AND id <> ?", target.Date, target.Done, moved.ID).
			Order("sort_order asc").Find(&bucket).Error; err != nil {
			return err
		}

		anchorIdx := -1
		for i, logEntry := range bucket {
			if logEntry.ID == target.ID {
				anchorIdx = i
				break
			}
		}
		if anchorIdx < 0 {
			return gorm.ErrRecordNotFound
		}

		insertAt := anchorIdx
		if input.Position == "after" {
			insertAt = anchorIdx + 1
		}

		ordered := make([]uint, 0, len(bucket)+1)
		for _, logEntry := range bucket[:insertAt] {
			ordered = append(ordered, logEntry.ID)
		}
		ordered = append(ordered, moved.ID)
		for _, logEntry := range bucket[insertAt:] {
			ordered = append(ordered, logEntry.ID)
		}

		if !sameBucket {
			if err := tx.Model(&moved).
				Updates(map[string]interface{}{"date": target.Date, "done": target.Done}).Error; err != nil {
				return err
			}
		}
		for i, id := range ordered {
			if err := tx.Model(&Models.TaskLog{}).Where("id = ?", id).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		if !sameBucket {
			return c.renumberBucket(tx, sourceDate, sourceDone)
		}
		return nil
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to move task log"})
	}

	Events.Publish(Events.TaskLogUpdated, fiber.Map{"date": target.Date})
	return ctx.JSON(fiber.Map{"message": "Task log moved"})
}

// appendLog inserts a log at the tail of its (date, done) bucket
func (c *TaskController) appendLog(tx *gorm.DB, taskID uint, date, extraInfo string, done bool) (Models.TaskLog, error) {
	var maxOrder int
	if err := tx.Model(&Models.TaskLog{}).Where("date = ? AND done = ?", date, done).
		Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder).Error; err != nil {
		return Models.TaskLog{}, err
	}

	logEntry := Models.TaskLog{
		TaskID:    taskID,
		Date:      date,
		ExtraInfo: extraInfo,
		Done:      done,
		SortOrder: maxOrder + 1,
	}
	return logEntry, tx.Create(&logEntry).Error
}

// renumberBucket rewrites sort_order 0..n-1 for a (date, done) bucket
func (c *TaskController) renumberBucket(tx *gorm.DB, date string, done bool) error {
	var bucket []Models.TaskLog
	if err := tx.Where("date = ? AND done = ?", date, done).
		Order("sort_order asc, id asc").Find(&bucket).Error; err != nil {
		return err
	}
	for i, logEntry := range bucket {
		if logEntry.SortOrder == i {
			continue
		}
		if err := tx.Model(&Models.TaskLog{}).Where("id = ?", logEntry.ID).
			Update("sort_order", i).Error; err != nil {
			return err
		}
	}
	return nil
}
