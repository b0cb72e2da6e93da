package Controllers

import (
	"bufio"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flawiddsouza/streaks-and-todo-sub000/middleware"
)

// requestLogPath resolves the same file the logging middleware writes to
func requestLogPath() string {
	return middleware.DefaultLogConfig().LogFilePath
}

// GetLogs returns request log entries, newest first, filtered by date and
// optionally by path and method, paginated.
func GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 50
	}

	dateFrom, dateTo, err := parseLogDateRange(c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	logs, err := readLogsFromFile(requestLogPath(), dateFrom, dateTo)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to read logs"})
	}

	pathFilter := c.Query("path")
	methodFilter := c.Query("method")
	filtered := logs[:0]
	for _, entry := range logs {
		if pathFilter != "" && entry.Path != pathFilter {
			continue
		}
		if methodFilter != "" && entry.Method != methodFilter {
			continue
		}
		filtered = append(filtered, entry)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	total := len(filtered)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return c.JSON(fiber.Map{
		"logs":        filtered[start:end],
		"total_logs":  total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// GetLogStats aggregates request counts, error counts and average latency
// per path over the selected date range.
func GetLogStats(c *fiber.Ctx) error {
	dateFrom, dateTo, err := parseLogDateRange(c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	logs, err := readLogsFromFile(requestLogPath(), dateFrom, dateTo)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to read logs"})
	}

	type pathStats struct {
		Path         string  `json:"path"`
		Count        int     `json:"count"`
		Errors       int     `json:"errors"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	}

	byPath := map[string]*pathStats{}
	for _, entry := range logs {
		stats, ok := byPath[entry.Path]
		if !ok {
			stats = &pathStats{Path: entry.Path}
			byPath[entry.Path] = stats
		}
		stats.Count++
		if entry.Status >= 400 {
			stats.Errors++
		}
		stats.AvgLatencyMs += float64(entry.Latency) / float64(time.Millisecond)
	}

	result := make([]pathStats, 0, len(byPath))
	for _, stats := range byPath {
		if stats.Count > 0 {
			stats.AvgLatencyMs /= float64(stats.Count)
		}
		result = append(result, *stats)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Count > result[j].Count })

	return c.JSON(fiber.Map{
		"total_logs": len(logs),
		"paths":      result,
		"date_from":  dateFrom,
		"date_to":    dateTo,
	})
}

// parseLogDateRange defaults to today when no range is given
func parseLogDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now()
	dateFrom := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dateTo := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())

	if fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return dateFrom, dateTo, fiber.NewError(fiber.StatusBadRequest, "Invalid date_from format. Use YYYY-MM-DD")
		}
		dateFrom = parsed
	}
	if toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return dateFrom, dateTo, fiber.NewError(fiber.StatusBadRequest, "Invalid date_to format. Use YYYY-MM-DD")
		}
		dateTo = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, 999999999, parsed.Location())
	}
	return dateFrom, dateTo, nil
}

// readLogsFromFile parses the JSON-lines request log within a date window
func readLogsFromFile(path string, dateFrom, dateTo time.Time) ([]middleware.LogData, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var logs []middleware.LogData
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var entry middleware.LogData
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			// non-JSON lines (text format runs) are skipped
			continue
		}
		if entry.Timestamp.Before(dateFrom) || entry.Timestamp.After(dateTo) {
			continue
		}
		logs = append(logs, entry)
	}
	return logs, scanner.Err()
}
