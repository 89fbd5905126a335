// preptool is a CLI utility for scoring dental preparation scans.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/prepcheck/internal/analysis"
	"github.com/Faultbox/prepcheck/internal/logger"
	"github.com/Faultbox/prepcheck/pkg/formats"
	"github.com/Faultbox/prepcheck/pkg/geom"
	"github.com/Faultbox/prepcheck/pkg/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "analyze", "a":
		cmdAnalyze(args)
	case "info":
		cmdInfo(args)
	case "sample":
		cmdSample(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`preptool - dental preparation scan checker

Usage:
  preptool <command> [options]

Commands:
  analyze [-json] [-tilt-x deg] [-tilt-y deg] <file>   Score a preparation mesh
  info <file>                                          Show mesh statistics
  sample [-height h] [-taper deg] <out.stl>            Write a synthetic preparation

Examples:
  preptool analyze scan.stl
  preptool analyze -json -tilt-x 12 scan.obj
  preptool sample -taper 6 -height 2 stump.stl`)
}

func loadMesh(path string) *mesh.Mesh {
	m, err := formats.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return m
}

func cmdAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	tiltX := fs.Float64("tilt-x", 0, "Rotate the scan about X (degrees) before scoring")
	tiltY := fs.Float64("tilt-y", 0, "Rotate the scan about Y (degrees) before scoring")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: preptool analyze [-json] <file>")
		os.Exit(1)
	}

	level := "warn"
	if *debug {
		level = "debug"
	}
	if err := logger.Init(level, logger.FormatConsole, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	m := loadMesh(fs.Arg(0))
	if *tiltX != 0 || *tiltY != 0 {
		m = m.Transform(geom.RotateY(geom.Radians(*tiltY)).Mul(geom.RotateX(geom.Radians(*tiltX))))
	}

	report, err := analysis.New(analysis.Options{Parallel: true}, logger.Log).Analyze(context.Background(), m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		return
	}

	fmt.Printf("File:  %s\n", fs.Arg(0))
	fmt.Printf("Score: %d/100\n\n", report.Score)
	fmt.Printf("  %-18s %9s  %5s  %-8s %s\n", "Metric", "Value", "Score", "Status", "Message")
	fmt.Printf("  %-18s %8.1f°  %5d  %-8s %s\n", "Convergence",
		report.Convergence.Value, report.Convergence.Score, report.Convergence.Status, report.Convergence.Message)
	fmt.Printf("  %-18s %9.2f  %5d  %-8s %s\n", "Occlusal reduction",
		report.OcclusalReduction.Value, report.OcclusalReduction.Score, report.OcclusalReduction.Status, report.OcclusalReduction.Message)
	fmt.Printf("  %-18s %8d%%  %5d  %-8s %s\n", "Finish line",
		report.FinishLine.Clarity, report.FinishLine.Score, report.FinishLine.Status, report.FinishLine.Message)
	fmt.Printf("  %-18s %9.1f  %5d  %-8s %s\n", "Undercut depth",
		report.Undercuts.Depth, report.Undercuts.Score, report.Undercuts.Status, report.Undercuts.Message)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: preptool info <file>")
		os.Exit(1)
	}

	m := loadMesh(fs.Arg(0))
	if err := m.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	fmt.Printf("File:     %s\n", fs.Arg(0))
	fmt.Printf("Faces:    %d\n", m.FaceCount())
	fmt.Printf("Vertices: %d\n", len(m.Vertices))
	fmt.Printf("Edges:    %d\n", m.EdgeCount())
	fmt.Printf("Area:     %.4f\n", m.SurfaceArea())

	if m.FaceCount() == 0 {
		return
	}

	size := m.Bounds.Size()
	fmt.Println()
	fmt.Println("Bounding box:")
	fmt.Printf("  Min:  (%.4f, %.4f, %.4f)\n", m.Bounds.Min.X, m.Bounds.Min.Y, m.Bounds.Min.Z)
	fmt.Printf("  Max:  (%.4f, %.4f, %.4f)\n", m.Bounds.Max.X, m.Bounds.Max.Y, m.Bounds.Max.Z)
	fmt.Printf("  Size: %.4f x %.4f x %.4f\n", size.X, size.Y, size.Z)

	if m.EdgeCount() > 0 {
		minLen, maxLen, sum := m.EdgeLengths[0], m.EdgeLengths[0], 0.0
		for _, l := range m.EdgeLengths {
			minLen = min(minLen, l)
			maxLen = max(maxLen, l)
			sum += l
		}
		fmt.Println()
		fmt.Println("Edge lengths:")
		fmt.Printf("  Min: %.4f\n", minLen)
		fmt.Printf("  Max: %.4f\n", maxLen)
		fmt.Printf("  Avg: %.4f\n", sum/float64(m.EdgeCount()))
	}
}

func cmdSample(args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	radius := fs.Float64("radius", 4, "Base radius")
	height := fs.Float64("height", 2, "Preparation height")
	taper := fs.Float64("taper", 6, "Wall taper in degrees")
	segments := fs.Int("segments", 64, "Number of wall segments")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: preptool sample [options] <out.stl>")
		os.Exit(1)
	}

	f, err := os.Create(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	tris := mesh.Stump(*radius, *height, *taper, *segments)
	if err := formats.WriteBinarySTL(f, "preptool sample", tris); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing STL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d triangles)\n", fs.Arg(0), len(tris))
}
