package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/api"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/commands"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/config"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/drone"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/journal"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/mqttconn"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/navigator"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/pathfinder"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/telemetry"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/types"
)

var (
	deafultFlagSet = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	overrides      = config.RegisterFlags(deafultFlagSet)
	useConsole     = deafultFlagSet.Bool("console", false, "Read operator commands from stdin")
)

func main() {
	if err := deafultFlagSet.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(*overrides.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := overrides.Apply(&cfg); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	deviceID := cfg.MQTT.DeviceID

	// attach sigint & sigterm listeners
	terminationSignals := make(chan os.Signal, 1)
	signal.Notify(terminationSignals, syscall.SIGINT, syscall.SIGTERM)

	// quitFunc will be called when process is terminated
	ctx, quitFunc := context.WithCancel(context.Background())

	// wait group will make sure all goroutines have time to clean up
	var wg sync.WaitGroup

	field, err := grid.New(cfg.Field)
	if err != nil {
		log.Fatal(err)
	}
	tracker := drone.NewTracker(cfg.InitialState())
	sim, err := pathfinder.New(cfg.Field.MaxX, cfg.Field.MaxY, cfg.Blocker(), tracker)
	if err != nil {
		log.Fatal(err)
	}

	store := journal.NewLogStore()
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to create connection pool: %v", err)
		}
		defer pool.Close()

		pg := journal.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		store = pg
	}

	stream := api.NewStream()
	handlers := []types.MessageHandler{
		types.NewLogger(),
		journal.New(store),
		stream,
	}

	actuator := drone.NewLogActuator(deviceID)
	if cfg.Actuator == config.ActuatorMQTT || cfg.MQTT.Broker != "" {
		mqttClient := connectMQTT(ctx, cfg.MQTT)
		defer mqttClient.Disconnect(1000)

		if cfg.Actuator == config.ActuatorMQTT {
			actuator = drone.NewMQTTActuator(mqttClient, deviceID)
		}

		start := tracker.State()
		lat, lon := field.CellCenterGeo(start.Position.X, start.Position.Y)
		handlers = append(handlers,
			commands.New(mqttClient, deviceID),
			telemetry.New(mqttClient, deviceID, types.DroneMoved{
				Position:   start.Position,
				Geo:        grid.Geo{Lat: lat, Lon: lon},
				BatteryPct: start.BatteryPct,
			}, cfg.Simulation.TelemetryInterval),
		)
	}

	consoleExit := make(chan struct{})
	if *useConsole {
		var once sync.Once
		handlers = append(handlers, commands.NewConsole(os.Stdin, os.Stdout, deviceID, func() {
			once.Do(func() { close(consoleExit) })
		}))
	}

	tasks := navigator.NewTaskLog(navigator.DefaultTaskRetention)
	handlers = append(handlers, navigator.New(deviceID, field, sim, actuator, navigator.Options{
		DrainPerStep:  cfg.Simulation.DrainPerStep,
		MaxExpansions: cfg.Simulation.MaxExpansions,
		Tasks:         tasks,
	}))

	messagebus := make(chan types.Message, 100)
	bus := types.NewMessageBus(messagebus, handlers...)
	wg.Add(1)
	go bus.Run(ctx, &wg)

	apiHandler := api.NewHandler(deviceID, field, sim, bus.TryPost, cfg.Simulation.MaxExpansions).
		WithStream(stream).
		WithTasks(tasks)
	router := api.NewRouter(apiHandler)
	wg.Add(1)
	go serveHTTP(ctx, &wg, cfg.HTTPAddr, router)

	log.Printf("Drone '%s' ready on a %dx%d field", deviceID, cfg.Field.MaxX, cfg.Field.MaxY)

	// wait for termination and close quit to signal all
	select {
	case <-terminationSignals:
	case <-consoleExit:
	}
	// cancel the main context
	log.Printf("Shutting down..")
	quitFunc()

	// wait until goroutines have done their cleanup
	log.Printf("Waiting for routines to finish...")
	wg.Wait()
	log.Printf("Signing off - BYE")
}

func connectMQTT(ctx context.Context, cfg mqttconn.Config) mqtt.Client {
	client, err := mqttconn.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect MQTT: %v", err)
	}
	return client
}

func serveHTTP(ctx context.Context, wg *sync.WaitGroup, addr string, handler http.Handler) {
	defer wg.Done()

	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("server error: %v", err)
	}
}
