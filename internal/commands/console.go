package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/types"
)

type console struct {
	in       io.Reader
	deviceID string
	quit     func()

	mu  sync.Mutex
	out io.Writer
}

// NewConsole reads operator commands line by line from in. "exit" calls
// quit; end of input just stops reading.
func NewConsole(in io.Reader, out io.Writer, deviceID string, quit func()) types.MessageHandler {
	return &console{in: in, out: out, deviceID: deviceID, quit: quit}
}

func (c *console) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	// the scanner goroutine may stay blocked on a terminal read after ctx
	// is done; it is not tracked by wg
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	c.printf("%s\n", HelpText)
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				log.Println("Console: input closed")
				return
			}
			if !c.handleLine(line, post) {
				return
			}
		}
	}
}

func (c *console) handleLine(line string, post types.PostFn) bool {
	cmd, err := Parse(line)
	if err != nil {
		c.printf("Command not recognized. Type 'help' for options.\n")
		return true
	}

	switch cmd.MessageType {
	case CommandHelp:
		c.printf("%s\n", HelpText)
	case CommandExit:
		c.printf("Exiting.\n")
		c.quit()
		return false
	default:
		post(types.CreateMessage(cmd.MessageType, "console", c.deviceID, cmd.Payload))
	}
	return true
}

func (c *console) Receive(message types.Message) {
	switch m := message.Message.(type) {
	case types.TaskCompleted:
		c.printf("Task %s completed\n", m.ID)
	case types.TaskFailed:
		c.printf("Task %s failed: %s\n", m.ID, m.Reason)
	case types.RoutePlanned:
		c.printf("Route %dx%d -> %dx%d: %s, %d steps\n", m.Start.X, m.Start.Y, m.Goal.X, m.Goal.Y, m.Outcome, m.Steps)
	case types.ObservationRecorded:
		c.printf("Zone %dx%d GPS=(%.6f, %.6f) NDVI=%.2f moisture=%.2f\n", m.Cell.X, m.Cell.Y, m.Geo.Lat, m.Geo.Lon, m.Features.NDVI, m.Features.Moisture)
	}
}

func (c *console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
