package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/flawiddsouza/streaks-and-todo-sub000/CronJobs"
	"github.com/flawiddsouza/streaks-and-todo-sub000/FiberConfig"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Models"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment")
	}
	setupLogging()

	Models.Connect()

	rollover := CronJobs.NewDailyRollover(Models.DB, false)
	if err := rollover.Start(); err != nil {
		log.Printf("Failed to start daily rollover: %v", err)
	}
	defer rollover.Stop()

	FiberConfig.FiberConfig()
}

func setupLogging() {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
		return
	}

	logFile, err := os.OpenFile("logs/application.log",
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime)
}
