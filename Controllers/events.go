package Controllers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/flawiddsouza/streaks-and-todo-sub000/Events"
)

// heartbeat interval for SSE connections; keeps proxies from closing the
// stream during quiet periods
const sseHeartbeat = 30 * time.Second

// StreamEvents serves the SSE feed. Clients treat every event as a hint to
// refetch; nothing here guarantees delivery.
func StreamEvents(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	id, events := Events.Default.Subscribe()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer Events.Default.Unsubscribe(id)

		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				data, err := json.Marshal(event.Payload)
				if err != nil {
					log.Printf("Error marshalling event payload: %v", err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
				if err := w.Flush(); err != nil {
					// client went away
					return
				}
			case <-heartbeat.C:
				fmt.Fprint(w, ": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
