package drone

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
)

const (
	qos            = 1
	retain         = false
	publishTimeout = 10 * time.Second
)

// Publisher is the part of mqtt.Client the actuator needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type command struct {
	Timestamp time.Time   `json:"timestamp"`
	MessageID string      `json:"message_id"`
	Command   string      `json:"command"`
	Payload   interface{} `json:"payload,omitempty"`
}

type moveToPayload struct {
	X   int     `json:"x"`
	Y   int     `json:"y"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type dispensePayload struct {
	Kg   float64 `json:"kg"`
	Kind string  `json:"kind"`
}

type mqttActuator struct {
	client   Publisher
	deviceID string
	timeout  time.Duration
}

// NewMQTTActuator sends every action as a JSON command to
// /devices/<deviceID>/commands/<action>.
func NewMQTTActuator(client Publisher, deviceID string) Actuator {
	return &mqttActuator{client, deviceID, publishTimeout}
}

func (a *mqttActuator) MoveTo(ctx context.Context, cell grid.Cell, geo grid.Geo) error {
	return a.send(ctx, "move-to", moveToPayload{cell.X, cell.Y, geo.Lat, geo.Lon})
}

func (a *mqttActuator) DispensePayload(ctx context.Context, kg float64, kind string) error {
	return a.send(ctx, "dispense-payload", dispensePayload{kg, kind})
}

func (a *mqttActuator) SampleSoil(ctx context.Context) error {
	return a.send(ctx, "sample-soil", nil)
}

func (a *mqttActuator) send(ctx context.Context, name string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := json.Marshal(command{
		Timestamp: time.Now().UTC(),
		MessageID: uuid.New().String(),
		Command:   name,
		Payload:   payload,
	})
	if err != nil {
		return errors.Wrapf(err, "Could not marshal %s command", name)
	}

	topic := fmt.Sprintf("/devices/%s/commands/%s", a.deviceID, name)
	tok := a.client.Publish(topic, qos, retain, b)
	if !tok.WaitTimeout(a.timeout) {
		return errors.Errorf("Could not send %s within %v", name, a.timeout)
	}
	if err := tok.Error(); err != nil {
		return errors.WithMessagef(err, "Could not send %s", name)
	}

	return nil
}
