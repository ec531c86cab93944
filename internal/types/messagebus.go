package types

import (
	"context"
	"log"
	"sync"

	"github.com/pkg/errors"
)

// ErrBusFull is returned by TryPost when the queue has no room.
var ErrBusFull = errors.New("message bus is full")

// PostFn is handed to handlers. It waits for room on the queue until the
// bus context is done, then drops the message.
type PostFn = func(msg Message)

// SubmitFn queues a message without waiting, e.g. MessageBus.TryPost.
type SubmitFn = func(msg Message) error

// MessageHandler is a component attached to the bus.
//
// The bus starts Run on its own goroutine and counts it on wg; a handler
// adds to wg only for goroutines it starts itself. Receive is called from
// the bus loop for every message and must never block: handlers with a
// bounded inbox drop or reject what does not fit.
type MessageHandler interface {
	Run(ctx context.Context, wg *sync.WaitGroup, post PostFn)
	Receive(message Message)
}

type MessageBus struct {
	queue     chan Message
	receivers []MessageHandler
}

func NewMessageBus(queue chan Message, receivers ...MessageHandler) *MessageBus {
	return &MessageBus{queue, receivers}
}

// TryPost queues a message from outside any handler, e.g. from an HTTP
// request, without waiting.
func (mb *MessageBus) TryPost(msg Message) error {
	mb.warnIfCrowded()
	select {
	case mb.queue <- msg:
		return nil
	default:
		return ErrBusFull
	}
}

// Post queues a message, waiting for room until ctx is done.
func (mb *MessageBus) Post(ctx context.Context, msg Message) error {
	mb.warnIfCrowded()
	select {
	case mb.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *MessageBus) warnIfCrowded() {
	if n, c := len(mb.queue), cap(mb.queue); n > c/2 {
		log.Printf("WARNING: Bus capacity over 50%% [ %d / %d ]", n, c)
	}
}

// Run starts every handler and delivers queued messages to all of them
// until ctx is done. The caller adds Run itself to wg before starting it.
func (mb *MessageBus) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	post := func(msg Message) {
		if err := mb.Post(ctx, msg); err != nil {
			log.Printf("Bus: dropped %s from %s: %v", msg.MessageType, msg.From, err)
		}
	}

	for _, x := range mb.receivers {
		wg.Add(1)
		go func(h MessageHandler) {
			defer wg.Done()
			h.Run(ctx, wg, post)
		}(x)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-mb.queue:
			for _, x := range mb.receivers {
				x.Receive(msg)
			}
		}
	}
}
