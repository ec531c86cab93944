package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/types"
)

const subscriberBuffer = 32

// Stream relays bus messages to websocket clients. It is a bus handler and
// an http.Handler at the same time. Slow clients miss messages rather than
// stalling the bus.
type Stream struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	nextID  int
	clients map[int]chan []byte
	closed  bool
}

func NewStream() *Stream {
	return &Stream{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[int]chan []byte),
	}
}

func (s *Stream) Receive(message types.Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Stream: failed to marshal %s: %v", message.MessageType, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.clients {
		select {
		case ch <- data:
		default:
		}
	}
}

// Run closes every client connection once ctx is done.
func (s *Stream) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	<-ctx.Done()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
}

func (s *Stream) subscribe() (int, chan []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil, false
	}
	s.nextID++
	ch := make(chan []byte, subscriberBuffer)
	s.clients[s.nextID] = ch
	return s.nextID, ch, true
}

func (s *Stream) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.clients[id]; ok {
		close(ch)
		delete(s.clients, id)
	}
}

func (s *Stream) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Stream: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id, ch, ok := s.subscribe()
	if !ok {
		message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
		conn.WriteMessage(websocket.CloseMessage, message)
		return
	}
	defer s.unsubscribe(id)

	// the client only ever closes; reads detect that
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case data, ok := <-ch:
			if !ok {
				message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
				conn.WriteMessage(websocket.CloseMessage, message)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
