// Package config loads the drone service configuration from a YAML file.
package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/drone"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/mqttconn"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/obstacle"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/telemetry"
)

const (
	IndexLinear = "linear"
	IndexBucket = "bucket"

	ActuatorLog  = "log"
	ActuatorMQTT = "mqtt"

	DefaultDeviceID = "farm-drone-1"
	DefaultHTTPAddr = ":8080"
)

type Simulation struct {
	Start             grid.Cell     `yaml:"start"`
	BatteryPct        float64       `yaml:"battery_pct"`
	DrainPerStep      float64       `yaml:"drain_per_step"`
	MaxExpansions     int           `yaml:"max_expansions"`
	TelemetryInterval time.Duration `yaml:"telemetry_interval"`
}

type Config struct {
	Field         grid.Config     `yaml:"field"`
	Obstacles     []obstacle.Rect `yaml:"obstacles"`
	ObstacleIndex string          `yaml:"obstacle_index"`
	BucketSize    int             `yaml:"bucket_size"`
	Simulation    Simulation      `yaml:"simulation"`
	Actuator      string          `yaml:"actuator"`
	MQTT          mqttconn.Config `yaml:"mqtt"`
	DatabaseURL   string          `yaml:"database_url"`
	HTTPAddr      string          `yaml:"http_addr"`
}

func Default() Config {
	return Config{
		Field:         grid.DefaultConfig(),
		ObstacleIndex: IndexLinear,
		BucketSize:    obstacle.DefaultBucketSize,
		Simulation: Simulation{
			Start:             drone.DefaultState().Position,
			BatteryPct:        drone.DefaultState().BatteryPct,
			DrainPerStep:      0.01,
			TelemetryInterval: telemetry.DefaultInterval,
		},
		Actuator: ActuatorLog,
		MQTT:     mqttconn.Config{DeviceID: DefaultDeviceID},
		HTTPAddr: DefaultHTTPAddr,
	}
}

// Load reads path on top of Default and validates the result. An empty
// path yields the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "could not read config file")
	}
	if err := decode(data, &cfg); err != nil {
		return cfg, errors.WithMessagef(err, "invalid config file %s", path)
	}

	return cfg, cfg.Validate()
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Validate fails on the first bad value. Field extents and cell size are
// reported as *grid.InvalidConfigError.
func (c Config) Validate() error {
	if err := c.Field.Validate(); err != nil {
		return err
	}

	switch c.ObstacleIndex {
	case IndexLinear:
	case IndexBucket:
		if c.BucketSize <= 0 {
			return &grid.InvalidConfigError{Field: "bucket_size", Value: float64(c.BucketSize)}
		}
	default:
		return errors.Errorf("unknown obstacle_index %q", c.ObstacleIndex)
	}

	s := c.Simulation
	if s.Start.X < 0 || s.Start.X >= c.Field.MaxX || s.Start.Y < 0 || s.Start.Y >= c.Field.MaxY {
		return errors.WithMessage(&grid.OutOfBoundsError{X: s.Start.X, Y: s.Start.Y, MaxX: c.Field.MaxX, MaxY: c.Field.MaxY}, "simulation.start")
	}
	if s.BatteryPct < 0 || s.BatteryPct > 100 {
		return errors.Errorf("simulation.battery_pct must be within 0..100, got %v", s.BatteryPct)
	}
	if s.DrainPerStep < 0 {
		return errors.Errorf("simulation.drain_per_step must not be negative, got %v", s.DrainPerStep)
	}
	if s.MaxExpansions < 0 {
		return errors.Errorf("simulation.max_expansions must not be negative, got %d", s.MaxExpansions)
	}

	switch c.Actuator {
	case ActuatorLog, ActuatorMQTT:
	default:
		return errors.Errorf("unknown actuator %q", c.Actuator)
	}
	if c.MQTT.DeviceID == "" {
		return errors.New("mqtt.device_id is required")
	}

	return nil
}

// Blocker builds the obstacle model selected by ObstacleIndex.
func (c Config) Blocker() obstacle.Blocker {
	if c.ObstacleIndex == IndexBucket {
		return obstacle.NewIndex(c.BucketSize, c.Obstacles...)
	}
	return obstacle.NewSet(c.Obstacles...)
}

func (c Config) InitialState() drone.State {
	return drone.State{Position: c.Simulation.Start, BatteryPct: c.Simulation.BatteryPct}
}
