package Controllers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/flawiddsouza/streaks-and-todo-sub000/Dates"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Models"
	"github.com/flawiddsouza/streaks-and-todo-sub000/TaskText"
)

// ExportController produces xlsx downloads of streak and task history
type ExportController struct {
	DB *gorm.DB
}

// NewExportController creates a new ExportController
func NewExportController(db *gorm.DB) *ExportController {
	return &ExportController{DB: db}
}

// ExportStreaks writes a dates-by-streaks grid: ✓ for done days, the note
// in a trailing comment-style column per streak. Optional group_id query
// restricts the export to one streak group.
func (c *ExportController) ExportStreaks(ctx *fiber.Ctx) error {
	var streaks []Models.Streak
	query := c.DB.Preload("Logs", func(db *gorm.DB) *gorm.DB {
		return db.Order("date asc")
	})
	if groupID := ctx.Query("group_id"); groupID != "" {
		id, err := strconv.Atoi(groupID)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
		}
		query = query.Joins("JOIN streak_groups ON streak_groups.streak_id = streaks.id").
			Where("streak_groups.group_id = ?", id)
	}
	if err := query.Find(&streaks).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to load streaks"})
	}

	var known []string
	logsByStreak := make(map[uint]map[string]Models.StreakLog, len(streaks))
	for _, streak := range streaks {
		byDate := make(map[string]Models.StreakLog, len(streak.Logs))
		for _, logEntry := range streak.Logs {
			known = append(known, logEntry.Date)
			byDate[logEntry.Date] = logEntry
		}
		logsByStreak[streak.ID] = byDate
	}
	dates := Dates.GenerateDateRange(known)

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Streaks"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "Date")
	for i, streak := range streaks {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		f.SetCellValue(sheet, cell, streak.Name)
	}

	for row, date := range dates {
		cell, _ := excelize.CoordinatesToCellName(1, row+2)
		f.SetCellValue(sheet, cell, date)
		for col, streak := range streaks {
			logEntry, ok := logsByStreak[streak.ID][date]
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+2, row+2)
			value := ""
			if logEntry.Done {
				value = "✓"
			}
			if logEntry.Note != "" {
				value = fmt.Sprintf("%s %s", value, logEntry.Note)
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate export"})
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="streaks.xlsx"`)
	return ctx.Send(buf.Bytes())
}

// ExportTasks writes the task log history of a task group, one row per log.
func (c *ExportController) ExportTasks(ctx *fiber.Ctx) error {
	groupID, err := strconv.Atoi(ctx.Query("group_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var group Models.Group
	if err := c.DB.Preload("Tasks.Logs", func(db *gorm.DB) *gorm.DB {
		return db.Order("date asc, done asc, sort_order asc")
	}).First(&group, groupID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Group not found"})
	}
	if group.Type != Models.GroupTypeTasks {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Not a task group"})
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Tasks"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Task", "Done", "Order"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, task := range group.Tasks {
		for _, logEntry := range task.Logs {
			values := []interface{}{
				logEntry.Date,
				TaskText.Format(task.Task, logEntry.ExtraInfo),
				logEntry.Done,
				logEntry.SortOrder,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate export"})
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="tasks.xlsx"`)
	return ctx.Send(buf.Bytes())
}
