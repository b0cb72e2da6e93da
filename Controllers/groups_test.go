package Controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flawiddsouza/streaks-and-todo-sub000/Dates"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Models"
)

func TestCreateAndListGroups(t *testing.T) {
	app, _, token := setupTest(t)

	resp := doRequest(t, app, "POST", "/api/groups/", token, map[string]interface{}{
		"name": "Health",
		"type": "streaks",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, app, "POST", "/api/groups/", token, map[string]interface{}{
		"name": "Chores",
		"type": "tasks",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/groups/?type=streaks", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var groups []Models.Group
	decodeBody(t, resp, &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, "Health", groups[0].Name)
}

func TestCreateGroupRejectsUnknownType(t *testing.T) {
	app, _, token := setupTest(t)

	resp := doRequest(t, app, "POST", "/api/groups/", token, map[string]interface{}{
		"name": "Bad",
		"type": "kanban",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateGroupReportsStorageError(t *testing.T) {
	app, db, token := setupTest(t)
	require.NoError(t, db.Migrator().DropTable(&Models.Group{}))

	resp := doRequest(t, app, "POST", "/api/groups/", token, map[string]interface{}{
		"name": "Health",
		"type": "streaks",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestGroupsRequireLogin(t *testing.T) {
	app, _, _ := setupTest(t)

	resp := doRequest(t, app, "GET", "/api/groups/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReorderGroups(t *testing.T) {
	app, db, token := setupTest(t)

	first := createGroup(t, db, "A", Models.GroupTypeStreaks)
	second := createGroup(t, db, "B", Models.GroupTypeStreaks)

	resp := doRequest(t, app, "PUT", "/api/groups/reorder", token, map[string]interface{}{
		"ids": []uint{second.ID, first.ID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/groups/", token, nil)
	var groups []Models.Group
	decodeBody(t, resp, &groups)
	require.Len(t, groups, 2)
	assert.Equal(t, "B", groups[0].Name)
	assert.Equal(t, "A", groups[1].Name)
}

func TestGetStreakGroupComputesRunningStreaks(t *testing.T) {
	app, db, token := setupTest(t)

	group := createGroup(t, db, "Health", Models.GroupTypeStreaks)
	streak := Models.Streak{Name: "Exercise"}
	require.NoError(t, db.Create(&streak).Error)
	require.NoError(t, db.Model(&group).Association("Streaks").Append(&streak))

	now := time.Now()
	for i := 0; i < 3; i++ {
		date := now.AddDate(0, 0, -i).Format(Dates.Layout)
		require.NoError(t, db.Create(&Models.StreakLog{
			StreakID: streak.ID, Date: date, Done: true,
		}).Error)
	}

	resp := doRequest(t, app, "GET", "/api/streak-groups/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Dates   []string `json:"dates"`
		Streaks []struct {
			Name          string `json:"name"`
			CurrentStreak int    `json:"current_streak"`
		} `json:"streaks"`
	}
	decodeBody(t, resp, &body)

	require.Len(t, body.Streaks, 1)
	assert.Equal(t, 3, body.Streaks[0].CurrentStreak)
	assert.Len(t, body.Dates, 7)
	assert.Equal(t, Dates.Today(), body.Dates[len(body.Dates)-1])
}

func TestGetStreakGroupRejectsTaskGroup(t *testing.T) {
	app, db, token := setupTest(t)
	createGroup(t, db, "Chores", Models.GroupTypeTasks)

	resp := doRequest(t, app, "GET", "/api/streak-groups/1", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGroupNotesUpsertAndClear(t *testing.T) {
	app, db, token := setupTest(t)
	group := createGroup(t, db, "Health", Models.GroupTypeStreaks)

	resp := doRequest(t, app, "PUT", "/api/groups/1/notes/2026-08-25", token, map[string]interface{}{
		"note": "slept badly",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// second write overwrites, never duplicates
	resp = doRequest(t, app, "PUT", "/api/groups/1/notes/2026-08-25", token, map[string]interface{}{
		"note": "slept fine actually",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&Models.GroupNote{}).Where("group_id = ?", group.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	var note Models.GroupNote
	db.Where("group_id = ?", group.ID).First(&note)
	assert.Equal(t, "slept fine actually", note.Note)

	// empty note deletes the row
	resp = doRequest(t, app, "PUT", "/api/groups/1/notes/2026-08-25", token, map[string]interface{}{
		"note": "",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	db.Model(&Models.GroupNote{}).Where("group_id = ?", group.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestGroupNoteRejectsBadDate(t *testing.T) {
	app, db, token := setupTest(t)
	createGroup(t, db, "Health", Models.GroupTypeStreaks)

	resp := doRequest(t, app, "PUT", "/api/groups/1/notes/25-08-2026", token, map[string]interface{}{
		"note": "x",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteGroupCascades(t *testing.T) {
	app, db, token := setupTest(t)

	group := createGroup(t, db, "Chores", Models.GroupTypeTasks)
	task := Models.Task{GroupID: group.ID, Task: "Dishes"}
	require.NoError(t, db.Create(&task).Error)
	require.NoError(t, db.Create(&Models.TaskLog{TaskID: task.ID, Date: "2026-08-25"}).Error)

	resp := doRequest(t, app, "DELETE", "/api/groups/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tasks, logs int64
	db.Model(&Models.Task{}).Count(&tasks)
	db.Model(&Models.TaskLog{}).Count(&logs)
	assert.EqualValues(t, 0, tasks)
	assert.EqualValues(t, 0, logs)
}
