package CronJobs

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/flawiddsouza/streaks-and-todo-sub000/Dates"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Events"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Models"
)

// DailyRollover notifies connected clients at midnight that the calendar
// day changed, so they re-window their date ranges, and logs a summary of
// the day that just ended.
type DailyRollover struct {
	cronScheduler  *cron.Cron
	db             *gorm.DB
	runImmediately bool
	jobID          cron.EntryID
}

// NewDailyRollover creates a new rollover job
func NewDailyRollover(db *gorm.DB, runImmediately bool) *DailyRollover {
	return &DailyRollover{
		cronScheduler:  cron.New(cron.WithSeconds()),
		db:             db,
		runImmediately: runImmediately,
	}
}

// Start schedules the rollover at midnight every day
func (d *DailyRollover) Start() error {
	var err error
	d.jobID, err = d.cronScheduler.AddFunc("0 0 0 * * *", func() {
		log.Println("Running daily rollover")
		d.runRollover()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	d.cronScheduler.Start()
	fmt.Println("Daily rollover scheduler started - will run at midnight")

	if d.runImmediately {
		d.runRollover()
	}
	return nil
}

// Stop terminates the scheduler
func (d *DailyRollover) Stop() {
	if d.cronScheduler != nil {
		d.cronScheduler.Stop()
		log.Println("Daily rollover scheduler stopped")
	}
}

// UpdateSchedule changes the rollover schedule.
// Format: "0 0 0 * * *" = at midnight every day
func (d *DailyRollover) UpdateSchedule(schedule string) error {
	d.cronScheduler.Remove(d.jobID)

	var err error
	d.jobID, err = d.cronScheduler.AddFunc(schedule, func() {
		log.Println("Running daily rollover")
		d.runRollover()
	})
	if err != nil {
		return fmt.Errorf("error updating schedule: %w", err)
	}

	log.Printf("Daily rollover schedule updated to: %s\n", schedule)
	return nil
}

// RunManualRollover executes a rollover outside the schedule
func (d *DailyRollover) RunManualRollover() {
	log.Println("Running manual rollover")
	d.runRollover()
}

func (d *DailyRollover) runRollover() {
	today := Dates.Today()
	yesterday := time.Now().AddDate(0, 0, -1).Format(Dates.Layout)

	var streaksDone, tasksDone int64
	if err := d.db.Model(&Models.StreakLog{}).
		Where("date = ? AND done = ?", yesterday, true).
		Count(&streaksDone).Error; err != nil {
		log.Printf("Error counting streak logs for %s: %v", yesterday, err)
	}
	if err := d.db.Model(&Models.TaskLog{}).
		Where("date = ? AND done = ?", yesterday, true).
		Count(&tasksDone).Error; err != nil {
		log.Printf("Error counting task logs for %s: %v", yesterday, err)
	}

	log.Printf("Day rolled over to %s: %d streaks and %d tasks done on %s",
		today, streaksDone, tasksDone, yesterday)

	Events.Publish(Events.DayChanged, map[string]interface{}{
		"date":         today,
		"streaks_done": streaksDone,
		"tasks_done":   tasksDone,
	})
}
