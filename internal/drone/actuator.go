package drone

import (
	"context"
	"log"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
)

// Actuator performs the physical side of a survey task. Implementations
// receive targets that were already bounds-checked and resolved.
type Actuator interface {
	MoveTo(ctx context.Context, cell grid.Cell, geo grid.Geo) error
	DispensePayload(ctx context.Context, kg float64, kind string) error
	SampleSoil(ctx context.Context) error
}

type logActuator struct {
	deviceID string
}

// NewLogActuator returns a simulated actuator that only logs what a real
// drone would do.
func NewLogActuator(deviceID string) Actuator {
	return &logActuator{deviceID}
}

func (a *logActuator) MoveTo(ctx context.Context, cell grid.Cell, geo grid.Geo) error {
	log.Printf("DRONE %s: Navigating to cell (%d,%d) @ lat=%.6f, lon=%.6f", a.deviceID, cell.X, cell.Y, geo.Lat, geo.Lon)
	return ctx.Err()
}

func (a *logActuator) DispensePayload(ctx context.Context, kg float64, kind string) error {
	log.Printf("DRONE %s: Dropping %.2f kg of %s seeds", a.deviceID, kg, kind)
	return ctx.Err()
}

func (a *logActuator) SampleSoil(ctx context.Context) error {
	log.Printf("DRONE %s: Collecting soil sample...", a.deviceID)
	return ctx.Err()
}
