package navigator

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/features"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/pathfinder"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/types"
)

func (n *navigator) handleSituation(id string, msg types.SituationRequest) []types.Message {
	target, err := n.field.Resolve(msg.Target.X, msg.Target.Y)
	if err != nil {
		return []types.Message{n.create(types.MessageTaskFailed, "*", types.TaskFailed{ID: id, Reason: err.Error()})}
	}

	log.Printf("Navigator: zone %dx%d GPS=(%.6f, %.6f)", target.Cell.X, target.Cell.Y, target.Geo.Lat, target.Geo.Lon)

	return []types.Message{
		n.create(types.MessageObservation, "*", types.ObservationRecorded{
			Cell:     target.Cell,
			Geo:      target.Geo,
			Features: features.Sample(target.Cell.X, target.Cell.Y),
		}),
	}
}

func (n *navigator) handleSoilSample(ctx context.Context, id string, msg types.SoilSampleRequest) []types.Message {
	return n.runTask(ctx, id, types.ActionSoilSample, msg.Target, func(ctx context.Context) (types.ActionRecorded, error) {
		if err := n.actuator.SampleSoil(ctx); err != nil {
			return types.ActionRecorded{}, errors.WithMessage(err, "soil sampling failed")
		}
		return types.ActionRecorded{Notes: "Live soil sample requested"}, nil
	})
}

func (n *navigator) handleSeedDrop(ctx context.Context, id string, msg types.SeedDropRequest) []types.Message {
	if !(msg.Kg > 0) {
		return []types.Message{n.create(types.MessageTaskFailed, "*", types.TaskFailed{ID: id, Reason: "seed mass must be positive"})}
	}

	return n.runTask(ctx, id, types.ActionSeedDrop, msg.Target, func(ctx context.Context) (types.ActionRecorded, error) {
		if err := n.actuator.DispensePayload(ctx, msg.Kg, msg.SeedType); err != nil {
			return types.ActionRecorded{}, errors.WithMessage(err, "seed drop failed")
		}
		kg := msg.Kg
		return types.ActionRecorded{Kg: &kg, Notes: msg.SeedType}, nil
	})
}

func (n *navigator) handleRoute(ctx context.Context, id string, msg types.RouteRequest) []types.Message {
	start := n.sim.Start()
	if msg.Start != nil {
		start = *msg.Start
	}

	for _, c := range []grid.Cell{start, msg.Goal} {
		if _, err := n.field.Resolve(c.X, c.Y); err != nil {
			return []types.Message{n.create(types.MessageTaskFailed, "*", types.TaskFailed{ID: id, Reason: err.Error()})}
		}
	}

	budget := pathfinder.Budget{MaxExpansions: n.opts.MaxExpansions}
	if msg.MaxExpansions > 0 {
		budget.MaxExpansions = msg.MaxExpansions
	}

	return []types.Message{n.create(types.MessageRoutePlanned, "*", n.plan(ctx, id, start, msg.Goal, budget))}
}

type actionFn func(ctx context.Context) (types.ActionRecorded, error)

// runTask flies to the target and performs the action there. A missing
// path is not fatal: the drone attempts a direct flight instead.
func (n *navigator) runTask(ctx context.Context, id string, kind string, cell grid.Cell, action actionFn) []types.Message {
	target, err := n.field.Resolve(cell.X, cell.Y)
	if err != nil {
		return []types.Message{n.create(types.MessageTaskFailed, "*", types.TaskFailed{ID: id, Reason: err.Error()})}
	}

	t := &Task{ID: id, Kind: kind, Target: target.Cell, Status: TASK_STATUS_STARTED}
	n.tasks.put(*t)
	result := []types.Message{n.create(types.MessageTaskStarted, "*", types.TaskStarted{ID: id, Kind: kind, Target: target.Cell})}

	start := n.sim.Start()
	route := n.plan(ctx, id, start, target.Cell, pathfinder.Budget{MaxExpansions: n.opts.MaxExpansions})
	result = append(result, n.create(types.MessageRoutePlanned, "*", route))

	steps := route.Steps
	if route.Outcome == pathfinder.Found.String() {
		log.Printf("Navigator: ROUTE steps: %d", route.Steps)
	} else {
		log.Printf("Navigator: No collision-free path found (%s). Attempting direct flight.", route.Outcome)
		steps = start.Manhattan(target.Cell)
	}
	t.Steps = steps

	if err := n.actuator.MoveTo(ctx, target.Cell, target.Geo); err != nil {
		return append(result, n.failTask(t, errors.WithMessage(err, "navigation failed")))
	}

	tracker := n.sim.Drone()
	tracker.MoveTo(target.Cell)
	battery := tracker.Drain(float64(steps) * n.opts.DrainPerStep)
	result = append(result, n.create(types.MessageDroneMoved, "*", types.DroneMoved{
		Position:   target.Cell,
		Geo:        target.Geo,
		BatteryPct: battery,
	}))

	recorded, err := action(ctx)
	if err != nil {
		return append(result, n.failTask(t, err))
	}
	recorded.Type = kind
	recorded.Cell = target.Cell

	t.Status = TASK_STATUS_COMPLETED
	n.tasks.put(*t)
	result = append(result, n.create(types.MessageActionRecorded, "*", recorded))
	result = append(result, n.create(types.MessageTaskCompleted, "*", types.TaskCompleted{ID: id}))

	return result
}

func (n *navigator) failTask(t *Task, err error) types.Message {
	log.Printf("Navigator: task '%s' failed: %v", t.ID, err)
	t.Status = TASK_STATUS_FAILED
	t.Reason = err.Error()
	n.tasks.put(*t)
	return n.create(types.MessageTaskFailed, "*", types.TaskFailed{ID: t.ID, Reason: t.Reason})
}

func (n *navigator) plan(ctx context.Context, id string, start, goal grid.Cell, budget pathfinder.Budget) types.RoutePlanned {
	res := n.sim.Search(ctx, start, goal, budget)

	out := types.RoutePlanned{
		TaskID:   id,
		Start:    start,
		Goal:     goal,
		Outcome:  res.Outcome.String(),
		Path:     res.Path,
		Steps:    res.Path.Steps(),
		Expanded: res.Expanded,
	}

	if n.field.InBounds(start.X, start.Y) && n.field.InBounds(goal.X, goal.Y) {
		fromLat, fromLon := n.field.CellCenterGeo(start.X, start.Y)
		toLat, toLon := n.field.CellCenterGeo(goal.X, goal.Y)
		out.DistanceM = grid.Distance(grid.Geo{Lat: fromLat, Lon: fromLon}, grid.Geo{Lat: toLat, Lon: toLon})
	}
	if res.Outcome == pathfinder.Aborted {
		log.Printf("Navigator: search %dx%d -> %dx%d aborted after %d expansions: %v", start.X, start.Y, goal.X, goal.Y, res.Expanded, res.Err)
	}

	return out
}
