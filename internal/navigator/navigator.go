package navigator

import (
	"context"
	"log"
	"sync"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/drone"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/pathfinder"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/types"
)

type Options struct {
	// Battery percentage points used per grid step.
	DrainPerStep float64
	// Search budget for every plan; zero means unlimited.
	MaxExpansions int
	// Where task status is kept; a log with the default retention when nil.
	Tasks *TaskLog
}

const (
	inboxSize = 10
	// ReasonBusy is the failure reason for requests arriving while the
	// inbox is full.
	ReasonBusy = "navigator busy"
)

// navigator is the only writer of the drone state. It handles one request
// at a time, in arrival order.
type navigator struct {
	me       string
	inbox    chan types.Message
	field    *grid.Grid
	sim      *pathfinder.Simulator
	actuator drone.Actuator
	opts     Options
	tasks    *TaskLog
	rejected chan types.Message
}

func New(deviceID string, field *grid.Grid, sim *pathfinder.Simulator, actuator drone.Actuator, opts Options) types.MessageHandler {
	return newNavigator(deviceID, field, sim, actuator, opts)
}

func newNavigator(deviceID string, field *grid.Grid, sim *pathfinder.Simulator, actuator drone.Actuator, opts Options) *navigator {
	tasks := opts.Tasks
	if tasks == nil {
		tasks = NewTaskLog(DefaultTaskRetention)
	}
	return &navigator{
		me:       deviceID,
		inbox:    make(chan types.Message, inboxSize),
		field:    field,
		sim:      sim,
		actuator: actuator,
		opts:     opts,
		tasks:    tasks,
		rejected: make(chan types.Message, inboxSize),
	}
}

func (n *navigator) Run(ctx context.Context, wg *sync.WaitGroup, post types.PostFn) {
	// rejections go out even while a task is in flight
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-n.rejected:
				post(msg)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Println("Navigator shutting down")
			return
		case msg := <-n.inbox:
			out := n.handleMessage(ctx, msg)
			for _, x := range out {
				post(x)
			}
		}
	}
}

func (n *navigator) Receive(message types.Message) {
	switch message.Message.(type) {
	case types.SituationRequest, types.SoilSampleRequest, types.SeedDropRequest, types.RouteRequest:
		select {
		case n.inbox <- message:
		default:
			n.reject(message)
		}
	}
}

// reject fails a request the inbox has no room for. It is called from the
// bus loop, so the reply is only queued; if that queue is full as well the
// request is dropped with a log line.
func (n *navigator) reject(msg types.Message) {
	n.tasks.put(Task{ID: msg.ID, Kind: msg.MessageType, Status: TASK_STATUS_FAILED, Reason: ReasonBusy})

	select {
	case n.rejected <- n.create(types.MessageTaskFailed, "*", types.TaskFailed{ID: msg.ID, Reason: ReasonBusy}):
	default:
		log.Printf("Navigator: dropped %s '%s', inbox full", msg.MessageType, msg.ID)
	}
}

func (n *navigator) handleMessage(ctx context.Context, msg types.Message) []types.Message {
	switch m := msg.Message.(type) {
	case types.SituationRequest:
		return n.handleSituation(msg.ID, m)
	case types.SoilSampleRequest:
		return n.handleSoilSample(ctx, msg.ID, m)
	case types.SeedDropRequest:
		return n.handleSeedDrop(ctx, msg.ID, m)
	case types.RouteRequest:
		return n.handleRoute(ctx, msg.ID, m)
	}

	return []types.Message{}
}

func (n *navigator) create(messageType string, to string, message interface{}) types.Message {
	return types.CreateMessage(messageType, n.me, to, message)
}
