package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"batchdesk/internal/core"
)

// MessageType tags table change messages; it doubles as the routing key.
const MessageType = "table.changed"

// TableChangedMessage tells consumers that the primary row store was rewritten.
// It carries no row data: consumers reload the whole table.
type TableChangedMessage struct {
	Op        string    `json:"op"`
	BatchID   string    `json:"batch_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTableChangedMessage(ev core.TableChanged) *TableChangedMessage {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &TableChangedMessage{Op: ev.Op, BatchID: ev.BatchID, Timestamp: ts}
}

func (m *TableChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TableChangedMessageFromJSON(data []byte) (*TableChangedMessage, error) {
	var msg TableChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Op == "" {
		return nil, fmt.Errorf("table changed message without op")
	}
	return &msg, nil
}
