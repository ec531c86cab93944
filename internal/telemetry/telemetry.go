package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	uuid "github.com/google/uuid"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/types"
)

const (
	qos    = 1
	retain = false

	DefaultInterval = 100 * time.Millisecond
)

// Publisher is the part of mqtt.Client telemetry needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type snapshot struct {
	Timestamp int64
	MessageID string

	X          int
	Y          int
	Lat        float64
	Lon        float64
	BatteryPct float64
}

type telemetry struct {
	client   Publisher
	deviceID string
	interval time.Duration

	mu      sync.Mutex
	sent    bool
	current snapshot
}

// New publishes the last known drone position to
// /devices/<deviceID>/events/telemetry, at most once per interval and only
// when it changed. initial is sent on the first tick.
func New(client Publisher, deviceID string, initial types.DroneMoved, interval time.Duration) types.MessageHandler {
	return newTelemetry(client, deviceID, initial, interval)
}

func newTelemetry(client Publisher, deviceID string, initial types.DroneMoved, interval time.Duration) *telemetry {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &telemetry{client: client, deviceID: deviceID, interval: interval}
	t.update(initial)
	return t
}

func Topic(deviceID string) string {
	return fmt.Sprintf("/devices/%s/%s", deviceID, "events/telemetry")
}

func (t *telemetry) Receive(message types.Message) {
	if m, ok := message.Message.(types.DroneMoved); ok {
		t.update(m)
	}
}

func (t *telemetry) update(m types.DroneMoved) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current.X = m.Position.X
	t.current.Y = m.Position.Y
	t.current.Lat = m.Geo.Lat
	t.current.Lon = m.Geo.Lon
	t.current.BatteryPct = m.BatteryPct
	t.sent = false
}

func (t *telemetry) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	topic := Topic(t.deviceID)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b, ok := t.next()
			if !ok {
				// nothing new this round
				continue
			}
			t.client.Publish(topic, qos, retain, string(b))
		case <-ctx.Done():
			log.Println("Telemetry shutting down")
			return
		}
	}
}

func (t *telemetry) next() ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sent {
		return nil, false
	}
	t.current.Timestamp = time.Now().UnixNano() / 1000
	t.current.MessageID = uuid.New().String()
	b, err := json.Marshal(t.current)
	if err != nil {
		log.Printf("Telemetry: could not marshal snapshot: %v", err)
		return nil, false
	}
	t.sent = true
	return b, true
}
