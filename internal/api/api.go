// Package api exposes the field and the drone over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/commands"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/navigator"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/pathfinder"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/types"
)

type Handler struct {
	deviceID      string
	field         *grid.Grid
	sim           *pathfinder.Simulator
	submit        types.SubmitFn
	maxExpansions int
	stream        *Stream
	tasks         TaskLookup
}

type TaskLookup interface {
	Get(id string) (navigator.Task, bool)
}

// NewHandler serves lookups and route plans synchronously. Commands are
// handed to submit and run by the navigator; submit must not block.
// maxExpansions is the default search budget for route requests.
func NewHandler(deviceID string, field *grid.Grid, sim *pathfinder.Simulator, submit types.SubmitFn, maxExpansions int) *Handler {
	return &Handler{deviceID: deviceID, field: field, sim: sim, submit: submit, maxExpansions: maxExpansions}
}

// WithTasks serves task status on GET /api/tasks/{id}.
func (h *Handler) WithTasks(tasks TaskLookup) *Handler {
	h.tasks = tasks
	return h
}

// WithStream serves s on GET /api/events.
func (h *Handler) WithStream(s *Stream) *Handler {
	h.stream = s
	return h
}

// NewRouter mounts the handler under /api with the usual middleware stack.
func NewRouter(h *Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	router.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Mount("/api", h.Routes())

	return router
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	if h.stream != nil {
		// long lived, so outside the request timeout
		r.Get("/events", h.stream.ServeHTTP)
	}
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/cells/{x}/{y}", h.getCell)
		r.Post("/routes", h.planRoute)
		r.Get("/drone", h.getDrone)
		r.Post("/commands", h.postCommand)
		if h.tasks != nil {
			r.Get("/tasks/{id}", h.getTask)
		}
	})
	return r
}

type cellResponse struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Blocked bool    `json:"blocked"`
}

func (h *Handler) getCell(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "cell coordinates must be integers")
		return
	}

	target, err := h.field.Resolve(x, y)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, cellResponse{
		X:       x,
		Y:       y,
		Lat:     target.Geo.Lat,
		Lon:     target.Geo.Lon,
		Blocked: h.sim.IsBlocked(x, y),
	})
}

type routePayload struct {
	Start         *grid.Cell `json:"start"`
	Goal          *grid.Cell `json:"goal"`
	MaxExpansions int        `json:"max_expansions"`
}

type routeResponse struct {
	Outcome  string    `json:"outcome"`
	Start    grid.Cell `json:"start"`
	Goal     grid.Cell `json:"goal"`
	Path     grid.Path `json:"path"`
	Steps    int       `json:"steps"`
	Expanded int       `json:"expanded"`
	Reason   string    `json:"reason,omitempty"`
}

func (h *Handler) planRoute(w http.ResponseWriter, r *http.Request) {
	var p routePayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if p.Goal == nil {
		writeError(w, http.StatusBadRequest, "goal is required")
		return
	}
	if p.MaxExpansions < 0 {
		writeError(w, http.StatusBadRequest, "max_expansions must not be negative")
		return
	}

	start := h.sim.Start()
	if p.Start != nil {
		start = *p.Start
	}
	for _, c := range []grid.Cell{start, *p.Goal} {
		if _, err := h.field.Resolve(c.X, c.Y); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
	}

	budget := pathfinder.Budget{MaxExpansions: h.maxExpansions}
	if p.MaxExpansions > 0 {
		budget.MaxExpansions = p.MaxExpansions
	}

	res := h.sim.Search(r.Context(), start, *p.Goal, budget)
	resp := routeResponse{
		Outcome:  res.Outcome.String(),
		Start:    start,
		Goal:     *p.Goal,
		Path:     res.Path,
		Steps:    res.Path.Steps(),
		Expanded: res.Expanded,
	}
	if res.Err != nil {
		resp.Reason = res.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

type droneResponse struct {
	DeviceID   string    `json:"device_id"`
	Position   grid.Cell `json:"position"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	BatteryPct float64   `json:"battery_pct"`
}

func (h *Handler) getDrone(w http.ResponseWriter, r *http.Request) {
	state := h.sim.Drone().State()
	lat, lon := h.field.CellCenterGeo(state.Position.X, state.Position.Y)
	writeJSON(w, http.StatusOK, droneResponse{
		DeviceID:   h.deviceID,
		Position:   state.Position,
		Lat:        lat,
		Lon:        lon,
		BatteryPct: state.BatteryPct,
	})
}

type commandPayload struct {
	Text string `json:"text"`
}

type commandResponse struct {
	ID          string `json:"id,omitempty"`
	MessageType string `json:"message_type"`
	Help        string `json:"help,omitempty"`
}

func (h *Handler) postCommand(w http.ResponseWriter, r *http.Request) {
	var p commandPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	cmd, err := commands.Parse(p.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch cmd.MessageType {
	case commands.CommandHelp:
		writeJSON(w, http.StatusOK, commandResponse{MessageType: cmd.MessageType, Help: commands.HelpText})
	case commands.CommandExit:
		writeError(w, http.StatusBadRequest, "exit is only available on the console")
	default:
		msg := types.CreateMessage(cmd.MessageType, "api", h.deviceID, cmd.Payload)
		if err := h.submit(msg); err != nil {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, commandResponse{ID: msg.ID, MessageType: msg.MessageType})
	}
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.tasks.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}
