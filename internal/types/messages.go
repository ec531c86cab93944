package types

import (
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/features"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
)

const (
	MessageSituation      = "situation"
	MessageSoilSample     = "collect-soil"
	MessageSeedDrop       = "seed-drop"
	MessageRoute          = "route"
	MessageTaskStarted    = "task-started"
	MessageTaskCompleted  = "task-completed"
	MessageTaskFailed     = "task-failed"
	MessageRoutePlanned   = "route-planned"
	MessageActionRecorded = "action-recorded"
	MessageObservation    = "observation-recorded"
	MessageDroneMoved     = "drone-moved"
)

const (
	ActionSoilSample = "SOIL_SAMPLE"
	ActionSeedDrop   = "SEED_DROP"
)

type SituationRequest struct {
	Target grid.Cell `json:"target"`
}

type SoilSampleRequest struct {
	Target grid.Cell `json:"target"`
}

type SeedDropRequest struct {
	Target   grid.Cell `json:"target"`
	Kg       float64   `json:"kg"`
	SeedType string    `json:"seed_type"`
}

// RouteRequest asks for a plan only. A nil Start means the drone position.
type RouteRequest struct {
	Start         *grid.Cell `json:"start,omitempty"`
	Goal          grid.Cell  `json:"goal"`
	MaxExpansions int        `json:"max_expansions,omitempty"`
}

type TaskStarted struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Target grid.Cell `json:"target"`
}

type TaskCompleted struct {
	ID string `json:"id"`
}

type TaskFailed struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type RoutePlanned struct {
	TaskID    string    `json:"task_id,omitempty"`
	Start     grid.Cell `json:"start"`
	Goal      grid.Cell `json:"goal"`
	Outcome   string    `json:"outcome"`
	Path      grid.Path `json:"path,omitempty"`
	Steps     int       `json:"steps"`
	Expanded  int       `json:"expanded"`
	DistanceM float64   `json:"direct_distance_m"`
}

type ActionRecorded struct {
	Type  string    `json:"type"`
	Cell  grid.Cell `json:"cell"`
	Kg    *float64  `json:"kg,omitempty"`
	Notes string    `json:"notes"`
}

type ObservationRecorded struct {
	Cell     grid.Cell         `json:"cell"`
	Geo      grid.Geo          `json:"geo"`
	Features features.Features `json:"features"`
}

type DroneMoved struct {
	Position   grid.Cell `json:"position"`
	Geo        grid.Geo  `json:"geo"`
	BatteryPct float64   `json:"battery_pct"`
}
