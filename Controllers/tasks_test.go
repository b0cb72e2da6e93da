package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flawiddsouza/streaks-and-todo-sub000/Models"
)

func seedTaskWithLogs(t *testing.T, db *gorm.DB, date string, done bool, count int) (Models.Task, []Models.TaskLog) {
	t.Helper()

	group := createGroup(t, db, "Chores", Models.GroupTypeTasks)
	task := Models.Task{GroupID: group.ID, Task: "Dishes"}
	require.NoError(t, db.Create(&task).Error)

	logs := make([]Models.TaskLog, 0, count)
	for i := 0; i < count; i++ {
		logEntry := Models.TaskLog{TaskID: task.ID, Date: date, Done: done, SortOrder: i}
		require.NoError(t, db.Create(&logEntry).Error)
		logs = append(logs, logEntry)
	}
	return task, logs
}

func bucketOrder(t *testing.T, db *gorm.DB, date string, done bool) []uint {
	t.Helper()
	var logs []Models.TaskLog
	require.NoError(t, db.Where("date = ? AND done = ?", date, done).
		Order("sort_order asc").Find(&logs).Error)
	ids := make([]uint, 0, len(logs))
	for _, logEntry := range logs {
		ids = append(ids, logEntry.ID)
		assert.Equal(t, len(ids)-1, logEntry.SortOrder, "sort_order must be dense")
	}
	return ids
}

func TestAddTaskLogAppendsToBucketTail(t *testing.T) {
	app, db, token := setupTest(t)
	task, _ := seedTaskWithLogs(t, db, "2026-08-25", false, 2)

	resp := doRequest(t, app, "POST", fmt.Sprintf("/api/tasks/%d/log", task.ID), token, map[string]interface{}{
		"date": "2026-08-25",
		"done": false,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created Models.TaskLog
	decodeBody(t, resp, &created)
	assert.Equal(t, 2, created.SortOrder)
}

func TestAddTaskLogUsesDefaultExtraInfo(t *testing.T) {
	app, db, token := setupTest(t)

	group := createGroup(t, db, "Chores", Models.GroupTypeTasks)
	task := Models.Task{GroupID: group.ID, Task: "Run", DefaultExtraInfo: "30 mins"}
	require.NoError(t, db.Create(&task).Error)

	resp := doRequest(t, app, "POST", fmt.Sprintf("/api/tasks/%d/log", task.ID), token, map[string]interface{}{
		"date": "2026-08-25",
		"done": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created Models.TaskLog
	decodeBody(t, resp, &created)
	assert.Equal(t, "30 mins", created.ExtraInfo)
}

func TestCreateTaskWithLogParsesExtraInfo(t *testing.T) {
	app, db, token := setupTest(t)
	group := createGroup(t, db, "Chores", Models.GroupTypeTasks)

	resp := doRequest(t, app, "POST", "/api/tasks/new/log", token, map[string]interface{}{
		"group_id": group.ID,
		"text":     "Buy milk (2%)",
		"date":     "2026-08-25",
		"done":     true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Task Models.Task    `json:"task"`
		Log  Models.TaskLog `json:"log"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Buy milk", body.Task.Task)
	assert.Equal(t, "2%", body.Log.ExtraInfo)

	// logging the same text again reuses the task, duplicates the log
	resp = doRequest(t, app, "POST", "/api/tasks/new/log", token, map[string]interface{}{
		"group_id": group.ID,
		"text":     "Buy milk (whole)",
		"date":     "2026-08-25",
		"done":     true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var taskCount, logCount int64
	db.Model(&Models.Task{}).Count(&taskCount)
	db.Model(&Models.TaskLog{}).Count(&logCount)
	assert.EqualValues(t, 1, taskCount)
	assert.EqualValues(t, 2, logCount)
}

func TestReorderTaskLogs(t *testing.T) {
	app, db, token := setupTest(t)
	_, logs := seedTaskWithLogs(t, db, "2026-08-25", false, 3)

	resp := doRequest(t, app, "PUT", "/api/tasks/reorder", token, map[string]interface{}{
		"date":    "2026-08-25",
		"done":    false,
		"log_ids": []uint{logs[2].ID, logs[0].ID, logs[1].ID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ids := bucketOrder(t, db, "2026-08-25", false)
	assert.Equal(t, []uint{logs[2].ID, logs[0].ID, logs[1].ID}, ids)
}

func TestReorderTaskLogsRejectsPartialList(t *testing.T) {
	app, db, token := setupTest(t)
	_, logs := seedTaskWithLogs(t, db, "2026-08-25", false, 3)

	resp := doRequest(t, app, "PUT", "/api/tasks/reorder", token, map[string]interface{}{
		"date":    "2026-08-25",
		"done":    false,
		"log_ids": []uint{logs[0].ID, logs[1].ID},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReorderTaskLogsRejectsForeignLog(t *testing.T) {
	app, db, token := setupTest(t)
	task, logs := seedTaskWithLogs(t, db, "2026-08-25", false, 2)

	// a log in the done bucket of the same date
	other := Models.TaskLog{TaskID: task.ID, Date: "2026-08-25", Done: true}
	require.NoError(t, db.Create(&other).Error)

	resp := doRequest(t, app, "PUT", "/api/tasks/reorder", token, map[string]interface{}{
		"date":    "2026-08-25",
		"done":    false,
		"log_ids": []uint{logs[0].ID, other.ID},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMoveTaskLogWithinBucket(t *testing.T) {
	app, db, token := setupTest(t)
	_, logs := seedTaskWithLogs(t, db, "2026-08-25", false, 3)

	// move the last log before the first
	resp := doRequest(t, app, "POST", "/api/tasks/move-log", token, map[string]interface{}{
		"log_id":        logs[2].ID,
		"target_log_id": logs[0].ID,
		"position":      "before",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ids := bucketOrder(t, db, "2026-08-25", false)
	assert.Equal(t, []uint{logs[2].ID, logs[0].ID, logs[1].ID}, ids)
}

func TestMoveTaskLogAcrossBuckets(t *testing.T) {
	app, db, token := setupTest(t)
	task, pending := seedTaskWithLogs(t, db, "2026-08-25", false, 2)

	doneLog := Models.TaskLog{TaskID: task.ID, Date: "2026-08-26", Done: true, SortOrder: 0}
	require.NoError(t, db.Create(&doneLog).Error)

	resp := doRequest(t, app, "POST", "/api/tasks/move-log", token, map[string]interface{}{
		"log_id":        pending[0].ID,
		"target_log_id": doneLog.ID,
		"position":      "after",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var moved Models.TaskLog
	require.NoError(t, db.First(&moved, pending[0].ID).Error)
	assert.Equal(t, "2026-08-26", moved.Date)
	assert.True(t, moved.Done)

	ids := bucketOrder(t, db, "2026-08-26", true)
	assert.Equal(t, []uint{doneLog.ID, pending[0].ID}, ids)

	// the source bucket is renumbered densely
	ids = bucketOrder(t, db, "2026-08-25", false)
	assert.Equal(t, []uint{pending[1].ID}, ids)
}

func TestMoveTaskLogRejectsSelfAnchor(t *testing.T) {
	app, db, token := setupTest(t)
	_, logs := seedTaskWithLogs(t, db, "2026-08-25", false, 1)

	resp := doRequest(t, app, "POST", "/api/tasks/move-log", token, map[string]interface{}{
		"log_id":        logs[0].ID,
		"target_log_id": logs[0].ID,
		"position":      "before",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateTaskLogMovesBuckets(t *testing.T) {
	app, db, token := setupTest(t)
	task, logs := seedTaskWithLogs(t, db, "2026-08-25", false, 2)

	doneLog := Models.TaskLog{TaskID: task.ID, Date: "2026-08-25", Done: true, SortOrder: 0}
	require.NoError(t, db.Create(&doneLog).Error)

	resp := doRequest(t, app, "PUT", fmt.Sprintf("/api/tasks/log/%d", logs[0].ID), token, map[string]interface{}{
		"done": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated Models.TaskLog
	decodeBody(t, resp, &updated)
	assert.True(t, updated.Done)
	assert.Equal(t, 1, updated.SortOrder, "moved log lands at the tail of the done bucket")

	ids := bucketOrder(t, db, "2026-08-25", false)
	assert.Equal(t, []uint{logs[1].ID}, ids)
}

func TestDeleteTaskLogKeepsTask(t *testing.T) {
	app, db, token := setupTest(t)
	task, logs := seedTaskWithLogs(t, db, "2026-08-25", false, 1)

	resp := doRequest(t, app, "DELETE", fmt.Sprintf("/api/tasks/log/%d", logs[0].ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logCount int64
	db.Model(&Models.TaskLog{}).Count(&logCount)
	assert.EqualValues(t, 0, logCount)

	var reloaded Models.Task
	assert.NoError(t, db.First(&reloaded, task.ID).Error)
}

func TestTaskGroupViewOrdersLogs(t *testing.T) {
	app, db, token := setupTest(t)
	task, _ := seedTaskWithLogs(t, db, "2026-08-25", false, 2)

	require.NoError(t, db.Create(&Models.TaskLog{
		TaskID: task.ID, Date: "2026-08-24", Done: true, SortOrder: 0,
	}).Error)

	resp := doRequest(t, app, "GET", fmt.Sprintf("/api/task-groups/%d", task.GroupID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Dates []string `json:"dates"`
		Group struct {
			Tasks []struct {
				Logs []Models.TaskLog `json:"logs"`
			} `json:"tasks"`
		} `json:"group"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Group.Tasks, 1)
	logs := body.Group.Tasks[0].Logs
	require.Len(t, logs, 3)
	assert.Equal(t, "2026-08-24", logs[0].Date)
	assert.Contains(t, body.Dates, "2026-08-24")
	assert.Contains(t, body.Dates, "2026-08-25")
}
