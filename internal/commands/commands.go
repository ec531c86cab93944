package commands

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/types"
)

const (
	qos              = 1
	subscribeTimeout = 10 * time.Second
)

// Subscriber is the part of mqtt.Client the command handler needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

type commandHandler struct {
	client   Subscriber
	deviceID string
}

// New listens for operator text commands on /devices/<deviceID>/commands/survey
// and posts them to the bus.
func New(client Subscriber, deviceID string) types.MessageHandler {
	return &commandHandler{client, deviceID}
}

func Topic(deviceID string) string {
	return fmt.Sprintf("/devices/%s/commands/survey", deviceID)
}

func (c *commandHandler) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	topic := Topic(c.deviceID)
	tok := c.client.Subscribe(topic, qos, func(_ mqtt.Client, m mqtt.Message) {
		handleCommand(m.Payload(), c.deviceID, post)
	})
	if err := waitToken(tok); err != nil {
		log.Printf("Unable to subscribe to topic '%s': %v", topic, err)
		return
	}
	log.Printf("Commands: listening on '%s'", topic)

	<-ctx.Done()
	log.Println("Commands shutting down")
	c.client.Unsubscribe(topic).WaitTimeout(time.Second)
}

func (c *commandHandler) Receive(message types.Message) {
}

func handleCommand(payload []byte, deviceID string, post types.PostFn) {
	cmd, err := Parse(string(payload))
	if err != nil {
		log.Printf("Could not parse command: %v", err)
		return
	}

	switch cmd.MessageType {
	case CommandHelp:
		log.Println(HelpText)
	case CommandExit:
		log.Println("Commands: exit is only meaningful on the console")
	default:
		post(types.CreateMessage(cmd.MessageType, "operator", deviceID, cmd.Payload))
	}
}

func waitToken(tok mqtt.Token) error {
	if !tok.WaitTimeout(subscribeTimeout) {
		return errors.Errorf("no response within %v", subscribeTimeout)
	}
	return tok.Error()
}
