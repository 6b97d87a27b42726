// Package feedback hands decision signals to whatever drives the
// physical indicators. The dispatcher boundary is fire-and-forget:
// the scan loop never waits on a light or a tone.
package feedback

import (
	"log"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

// Dispatcher turns a decision into a physical signal.
type Dispatcher interface {
	Dispatch(sig types.FeedbackSignal)
}

// Console logs signals to the process log. Default dispatcher for
// deployments without a feedback bus, and for dev.
type Console struct {
	logger *log.Logger
}

func NewConsole(logger *log.Logger) *Console {
	return &Console{logger: logger}
}

func (c *Console) Dispatch(sig types.FeedbackSignal) {
	c.logger.Printf("feedback: %s", sig)
}
