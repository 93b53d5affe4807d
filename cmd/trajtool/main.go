// trajtool is a CLI utility for working with trajectory datasets.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/chrismile/trajvis/internal/config"
	"github.com/chrismile/trajvis/internal/engine/trajectory"
	"github.com/chrismile/trajvis/internal/export"
	"github.com/chrismile/trajvis/internal/logger"
	"github.com/chrismile/trajvis/internal/trajdata"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "mesh":
		cmdMesh(args)
	case "section":
		cmdSection(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`trajtool - trajectory dataset utility

Usage:
  trajtool <command> [options]

Commands:
  info <dataset.json>               Show dataset information
  mesh <dataset.json> [options]     Build tube or roll geometry, export OBJ
  section <dataset.json> [options]  Compute sphere cross sections at a cursor

Examples:
  trajtool info trajectories.json
  trajtool mesh trajectories.json -o tubes.obj -radius 0.3
  trajtool mesh trajectories.json -rolls -vars 0,1 -cursor 12 -o rolls.obj
  trajtool section trajectories.json -cursor 12 -sync height`)
}

// loadConfig layers an optional config file over the defaults and the
// command-line overrides on top of both.
func loadConfig(path string, overrides config.Overrides) *config.Config {
	cfg, err := config.Load(path, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func initLogging(cfg *config.Config) {
	if err := logger.Init(cfg.Logging.Level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
}

func loadDataset(path string) (*trajectory.Dataset, *trajectory.SyncState) {
	ds, sync, err := trajdata.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return ds, sync
}

func parseSyncMode(name string) trajectory.SyncMode {
	switch name {
	case "timestep":
		return trajectory.ByTimestep
	case "ascent":
		return trajectory.ByAscentTime
	case "height":
		return trajectory.ByHeight
	default:
		fmt.Fprintf(os.Stderr, "Unknown sync mode: %s (want timestep, ascent or height)\n", name)
		os.Exit(1)
		return trajectory.ByTimestep
	}
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trajtool info <dataset.json>")
		os.Exit(1)
	}
	cfg := loadConfig("", config.Overrides{Debug: *debug})
	initLogging(cfg)
	defer logger.Sync()

	ds, sync := loadDataset(fs.Arg(0))

	totalPoints := 0
	minPoints, maxPoints := 0, 0
	for i, t := range ds.Trajectories {
		n := len(t.Positions)
		totalPoints += n
		if i == 0 || n < minPoints {
			minPoints = n
		}
		if n > maxPoints {
			maxPoints = n
		}
	}

	fmt.Printf("Dataset:      %s\n", fs.Arg(0))
	fmt.Printf("Trajectories: %d\n", len(ds.Trajectories))
	fmt.Printf("Points:       %d (min %d, max %d per trajectory)\n", totalPoints, minPoints, maxPoints)
	fmt.Printf("Reference:    trajectory %d\n", sync.ReferenceTrajectory)
	fmt.Printf("Max ascent:   %d time steps\n", sync.MaxAscentOffset)
	fmt.Println()
	fmt.Println("Variables:")
	for i, name := range ds.VariableNames {
		r := ds.AttributeRange[i]
		fmt.Printf("  %-2d %-20s [%g, %g]\n", i, name, r.Min, r.Max)
	}
}

func cmdMesh(args []string) {
	fs := flag.NewFlagSet("mesh", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to config file")
	output := fs.String("o", "mesh.obj", "Output OBJ path")
	radius := fs.Float64("radius", 0, "Tube radius (overrides config)")
	subdiv := fs.Int("subdivisions", 0, "Radial subdivisions (overrides config)")
	rolls := fs.Bool("rolls", false, "Build roll geometry instead of tubes")
	vars := fs.String("vars", "", "Comma-separated variable indices for rolls")
	cursor := fs.Int("cursor", 0, "Cursor time step (rolls)")
	syncMode := fs.String("sync", "", "Sync mode for rolls (overrides config)")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trajtool mesh <dataset.json> [options]")
		os.Exit(1)
	}
	cfg := loadConfig(*cfgPath, config.Overrides{
		Debug:        *debug,
		Radius:       *radius,
		Subdivisions: *subdiv,
		Sync:         *syncMode,
	})
	initLogging(cfg)
	defer logger.Sync()

	ds, sync := loadDataset(fs.Arg(0))

	if *rolls {
		buildRolls(ds, sync, cfg, *vars, *cursor, *output)
		return
	}

	mesh := trajectory.BuildTubeMesh(ds, trajectory.TubeParams{
		Radius:       cfg.Tube.Radius,
		Subdivisions: cfg.Tube.Subdivisions,
	})
	logger.Info("built tube mesh",
		zap.Int("vertices", len(mesh.Positions)),
		zap.Int("triangles", len(mesh.Indices)/3))

	if err := export.SaveOBJ(*output, "tubes", mesh.Positions, mesh.Normals, mesh.Indices); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d vertices, %d triangles)\n", *output, len(mesh.Positions), len(mesh.Indices)/3)
}

func buildRolls(ds *trajectory.Dataset, sync *trajectory.SyncState, cfg *config.Config, vars string, cursor int, output string) {
	varIndices, err := parseVariableList(vars, ds.NumVariables)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mesh := trajectory.BuildRollsMesh(ds, sync, parseSyncMode(cfg.Sync.Mode), cursor, trajectory.RollsParams{
		TubeRadius:   cfg.Tube.Radius,
		RollsRadius:  cfg.Rolls.Radius,
		RollsWidth:   cfg.Rolls.Width,
		MapThickness: cfg.Rolls.MapThickness,
		Subdivisions: cfg.Tube.Subdivisions,
		Variables:    varIndices,
	})
	if mesh == nil {
		fmt.Fprintln(os.Stderr, "No variables selected, nothing to build")
		os.Exit(1)
	}
	logger.Info("built rolls mesh",
		zap.Int("vertices", len(mesh.Positions)),
		zap.Int("triangles", len(mesh.Indices)/3),
		zap.Ints("variables", varIndices))

	if err := export.SaveOBJ(output, "rolls", mesh.Positions, mesh.Normals, mesh.Indices); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d vertices, %d triangles)\n", output, len(mesh.Positions), len(mesh.Indices)/3)
}

// parseVariableList parses the -vars flag into variable indices. An
// empty list selects every variable of the dataset.
func parseVariableList(s string, numVariables int) ([]int, error) {
	if s == "" {
		all := make([]int, numVariables)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	var out []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parsing variable list %q: %w", s, err)
		}
		if v < 0 || v >= numVariables {
			return nil, fmt.Errorf("variable index %d out of range (dataset has %d variables)", v, numVariables)
		}
		out = append(out, v)
	}
	return out, nil
}

func cmdSection(args []string) {
	fs := flag.NewFlagSet("section", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to config file")
	cursor := fs.Int("cursor", 0, "Cursor time step")
	syncMode := fs.String("sync", "", "Sync mode (overrides config)")
	sphereRadius := fs.Float64("sphere-radius", 0, "Query sphere radius (overrides config)")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trajtool section <dataset.json> [options]")
		os.Exit(1)
	}
	cfg := loadConfig(*cfgPath, config.Overrides{
		Debug:        *debug,
		Sync:         *syncMode,
		SphereRadius: *sphereRadius,
	})
	initLogging(cfg)
	defer logger.Sync()

	ds, sync := loadDataset(fs.Arg(0))

	sections := trajectory.ComputeCrossSections(ds, sync, parseSyncMode(cfg.Sync.Mode), *cursor, cfg.Sphere.Radius, nil)

	fmt.Printf("Cursor %d, sync %s, sphere radius %g\n", *cursor, cfg.Sync.Mode, cfg.Sphere.Radius)
	fmt.Printf("%-6s %-10s %-28s %-28s %s\n", "line", "center", "position", "entrance", "exit")
	for i, idx := range sections.Indices {
		c := sections.Centers[i]
		en := sections.Entrances[i]
		ex := sections.Exits[i]
		fmt.Printf("%-6d %-10.1f (%8.3f %8.3f %8.3f) (%8.3f %8.3f %8.3f) (%8.3f %8.3f %8.3f)\n",
			idx.LineID, idx.Center,
			c.X, c.Y, c.Z,
			en.X, en.Y, en.Z,
			ex.X, ex.Y, ex.Z)
	}
	logger.Info("computed cross sections", zap.Int("trajectories", len(sections.Indices)))
}
