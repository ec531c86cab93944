package commands

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/types"
)

const (
	CommandHelp = "help"
	CommandExit = "exit"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is a parsed operator command. MessageType is one of the bus
// message types, or CommandHelp / CommandExit with a nil Payload.
type Command struct {
	MessageType string
	Payload     interface{}
}

var (
	situationRe = regexp.MustCompile(`(situation|status).*(?:zone|spot)\s+(\d+)x(\d+)`)
	soilRe      = regexp.MustCompile(`(collect).*(?:soil|soil sample).*(?:zone|spot)\s+(\d+)x(\d+)`)
	seedDropRe  = regexp.MustCompile(`drop\s+(\d+(?:\.\d+)?)\s*(?:kg|kilogram|kilograms)\s+(?:worth\s+of\s+)?([a-zA-Z0-9_-]+)\s+seeds.*(?:at|in|on)\s+(\d+)x(\d+)`)
	routeRe     = regexp.MustCompile(`^route\s+(?:(?:from\s+)?(\d+)x(\d+)\s+)?to\s+(\d+)x(\d+)`)
)

const HelpText = `Available commands:
  help
  exit
  situation zone <X>x<Y>
  collect soil zone <X>x<Y>
  drop <KG> kg <SEEDTYPE> seeds at <X>x<Y>
  route [<X>x<Y>] to <X>x<Y>
Examples:
  situation zone 33x33
  collect soil zone 79x79
  drop 2 kg wheat seeds at 5900x15000
  route 0x0 to 9x9`

// Parse turns free-form operator text into a Command. Matching is case
// insensitive; coordinates are not bounds-checked here.
func Parse(text string) (Command, error) {
	s := strings.ToLower(strings.TrimSpace(text))

	switch s {
	case "exit", "quit", "q":
		return Command{MessageType: CommandExit}, nil
	case "help", "?":
		return Command{MessageType: CommandHelp}, nil
	}

	if m := situationRe.FindStringSubmatch(s); m != nil {
		cell, err := parseCell(m[2], m[3])
		if err != nil {
			return Command{}, err
		}
		return Command{types.MessageSituation, types.SituationRequest{Target: cell}}, nil
	}

	if m := soilRe.FindStringSubmatch(s); m != nil {
		cell, err := parseCell(m[2], m[3])
		if err != nil {
			return Command{}, err
		}
		return Command{types.MessageSoilSample, types.SoilSampleRequest{Target: cell}}, nil
	}

	if m := seedDropRe.FindStringSubmatch(s); m != nil {
		kg, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Command{}, errors.Wrapf(err, "invalid payload mass %q", m[1])
		}
		cell, err := parseCell(m[3], m[4])
		if err != nil {
			return Command{}, err
		}
		return Command{types.MessageSeedDrop, types.SeedDropRequest{Target: cell, Kg: kg, SeedType: m[2]}}, nil
	}

	if m := routeRe.FindStringSubmatch(s); m != nil {
		goal, err := parseCell(m[3], m[4])
		if err != nil {
			return Command{}, err
		}
		req := types.RouteRequest{Goal: goal}
		if m[1] != "" {
			start, err := parseCell(m[1], m[2])
			if err != nil {
				return Command{}, err
			}
			req.Start = &start
		}
		return Command{types.MessageRoute, req}, nil
	}

	return Command{}, errors.Wrapf(ErrUnknownCommand, "%q", s)
}

func parseCell(xs, ys string) (grid.Cell, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return grid.Cell{}, errors.Wrapf(err, "invalid x coordinate %q", xs)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return grid.Cell{}, errors.Wrapf(err, "invalid y coordinate %q", ys)
	}
	return grid.Cell{X: x, Y: y}, nil
}
