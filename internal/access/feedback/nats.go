package feedback

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

// NATSDispatcher publishes signals to a local NATS subject consumed by
// the GPIO daemon driving the LEDs and buzzer. Publishes are buffered
// client-side, so Dispatch never blocks the scan loop.
type NATSDispatcher struct {
	conn    *nats.Conn
	subject string
	logger  *log.Logger
}

type signalMessage struct {
	Signal types.FeedbackSignal `json:"signal"`
	At     time.Time            `json:"at"`
}

func NewNATSDispatcher(url, subject string, logger *log.Logger) (*NATSDispatcher, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSDispatcher{conn: nc, subject: subject, logger: logger}, nil
}

func (d *NATSDispatcher) Dispatch(sig types.FeedbackSignal) {
	data, err := json.Marshal(signalMessage{Signal: sig, At: time.Now().UTC()})
	if err != nil {
		d.logger.Printf("feedback marshal failed: %v", err)
		return
	}
	if err := d.conn.Publish(d.subject, data); err != nil {
		// A missed light is not worth disturbing the pipeline over.
		d.logger.Printf("feedback publish failed: %v", err)
	}
}

func (d *NATSDispatcher) Close() {
	d.conn.Close()
}
