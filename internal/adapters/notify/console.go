package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/carterchan9/nba-ev-tracker/internal/ports"
)

// Console implements ports.Notifier by writing one line per event.
type Console struct {
	out io.Writer
}

// NewConsole creates a notifier that writes to stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter creates a notifier for tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Send prints the event with a timestamp and a severity tag.
func (c *Console) Send(_ context.Context, title, body string, level ports.Severity) error {
	_, err := fmt.Fprintf(c.out, "[%s] %s %s — %s\n",
		time.Now().Format("15:04:05"), tag(level), title, body)
	return err
}

func tag(level ports.Severity) string {
	switch level {
	case ports.SeveritySuccess:
		return "[+]"
	case ports.SeverityWarning:
		return "[!]"
	default:
		return "[i]"
	}
}
