package journal

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/types"
)

const (
	writeTimeout = 5 * time.Second
	inboxSize    = 64
)

type journal struct {
	store Store
	inbox chan types.Message
}

// New persists ActionRecorded and ObservationRecorded messages from the bus.
func New(store Store) types.MessageHandler {
	return &journal{store, make(chan types.Message, inboxSize)}
}

func (j *journal) Receive(message types.Message) {
	switch message.Message.(type) {
	case types.ActionRecorded, types.ObservationRecorded:
		select {
		case j.inbox <- message:
		default:
			// the store is falling behind
			log.Printf("Journal: dropped %s '%s', inbox full", message.MessageType, message.ID)
		}
	}
}

func (j *journal) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	for {
		select {
		case <-ctx.Done():
			log.Println("Journal shutting down")
			return
		case msg := <-j.inbox:
			if err := j.write(ctx, msg); err != nil {
				log.Printf("Journal: %v", err)
			}
		}
	}
}

func (j *journal) write(ctx context.Context, msg types.Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	switch m := msg.Message.(type) {
	case types.ActionRecorded:
		return j.store.LogAction(ctx, m)
	case types.ObservationRecorded:
		return j.store.LogObservation(ctx, m)
	}
	return nil
}
