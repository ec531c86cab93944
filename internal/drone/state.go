package drone

import (
	"sync"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
)

type State struct {
	Position   grid.Cell `json:"position"`
	BatteryPct float64   `json:"battery_pct"`
}

func DefaultState() State {
	return State{Position: grid.Cell{X: 0, Y: 0}, BatteryPct: 100}
}

// Tracker holds the state of one simulated drone. A single component (the
// navigator) writes it; any number of readers may call State concurrently.
type Tracker struct {
	mu      sync.RWMutex
	state   State
	version uint64
}

func NewTracker(initial State) *Tracker {
	initial.BatteryPct = clampBattery(initial.BatteryPct)
	return &Tracker{state: initial}
}

func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *Tracker) Position() grid.Cell {
	return t.State().Position
}

// Version increments on every write and lets pollers skip unchanged state.
func (t *Tracker) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

func (t *Tracker) MoveTo(cell grid.Cell) {
	t.mu.Lock()
	t.state.Position = cell
	t.version++
	t.mu.Unlock()
}

func (t *Tracker) SetBattery(pct float64) {
	t.mu.Lock()
	t.state.BatteryPct = clampBattery(pct)
	t.version++
	t.mu.Unlock()
}

// Drain lowers the battery by pct percentage points, never below zero.
func (t *Tracker) Drain(pct float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.BatteryPct = clampBattery(t.state.BatteryPct - pct)
	t.version++
	return t.state.BatteryPct
}

func clampBattery(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
