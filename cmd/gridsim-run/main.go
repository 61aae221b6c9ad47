// Command gridsim-run drives a gridsim simulation headlessly: it loads a
// map and an optional saved snapshot, sets up a player roster, advances
// a fixed number of ticks, and prints the resulting per-player view as
// JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pthm-cable/gridsim/config"
	"github.com/pthm-cable/gridsim/script"
	"github.com/pthm-cable/gridsim/telemetry"
)

// loggingPlatform logs every narrative event emitted by the demo AI
// loop, so a headless run has some visible sign of the AI cycle firing.
type loggingPlatform struct {
	logger *slog.Logger
}

func (p loggingPlatform) EmitEvent(name string, payload map[string]any) {
	p.logger.Info("event", "name", name, "payload", payload)
}

// parsePlayers parses "id@x,y;id2@x2,y2" into a roster of spawn points.
func parsePlayers(spec string) (map[string]script.PlayerInit, error) {
	roster := make(map[string]script.PlayerInit)
	if spec == "" {
		return roster, nil
	}
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		idAndPos := strings.SplitN(entry, "@", 2)
		if len(idAndPos) != 2 {
			return nil, fmt.Errorf("invalid player entry %q, want id@x,y", entry)
		}
		coords := strings.SplitN(idAndPos[1], ",", 2)
		if len(coords) != 2 {
			return nil, fmt.Errorf("invalid player entry %q, want id@x,y", entry)
		}
		x, err := strconv.Atoi(strings.TrimSpace(coords[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid x in %q: %w", entry, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(coords[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid y in %q: %w", entry, err)
		}
		roster[idAndPos[0]] = script.PlayerInit{Spawn: script.Point{X: x, Y: y}}
	}
	return roster, nil
}

func main() {
	mapPath := flag.String("map", "", "Path to a MapStructure JSON file (required)")
	configPath := flag.String("config", "", "Config YAML overlay (empty = embedded defaults)")
	loadPath := flag.String("load", "", "Path to a previously saved snapshot JSON (optional)")
	savePath := flag.String("save", "", "Path to write the final snapshot JSON (optional)")
	players := flag.String("players", "", `Player roster as "id@x,y;id2@x2,y2"`)
	ticks := flag.Int("ticks", 100, "Number of ticks to advance")
	seed := flag.Int64("seed", 1, "Random seed for the demo AI loop")
	telemetryDir := flag.String("telemetry", "", "Directory to write a tick/event CSV trace (empty = disabled)")
	flag.Parse()

	if *mapPath == "" {
		log.Fatal("--map is required")
	}

	mapData, err := os.ReadFile(*mapPath)
	if err != nil {
		log.Fatalf("reading map file: %v", err)
	}
	var structure script.MapStructure
	if err := json.Unmarshal(mapData, &structure); err != nil {
		log.Fatalf("parsing map file: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	var savedData []byte
	if *loadPath != "" {
		savedData, err = os.ReadFile(*loadPath)
		if err != nil {
			log.Fatalf("reading snapshot file: %v", err)
		}
	}

	roster, err := parsePlayers(*players)
	if err != nil {
		log.Fatalf("parsing --players: %v", err)
	}

	sink, err := telemetry.NewSink(*telemetryDir)
	if err != nil {
		log.Fatalf("setting up telemetry: %v", err)
	}
	defer sink.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	facade, err := script.New(script.InitOptions{
		SavedData: savedData,
		Structure: structure,
		Options: script.Options{
			Logger:    logger,
			Config:    cfg,
			Platform:  loggingPlatform{logger: logger},
			Seed:      *seed,
			Telemetry: sink,
		},
	})
	if err != nil {
		log.Fatalf("initializing simulation: %v", err)
	}

	facade.SetupPlayers(roster)

	var views map[string]script.PlayerView
	for i := 0; i < *ticks; i++ {
		views = facade.Tick()
	}

	out, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		log.Fatalf("encoding result: %v", err)
	}
	fmt.Println(string(out))

	if *savePath != "" {
		snap, err := facade.Save()
		if err != nil {
			log.Fatalf("saving snapshot: %v", err)
		}
		if err := os.WriteFile(*savePath, snap, 0o644); err != nil {
			log.Fatalf("writing snapshot file: %v", err)
		}
	}
}
