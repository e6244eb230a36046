// Package main provides the router-cam command line entry point: it
// reads a TOML job file and writes a G-code program for it.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"router-cam/internal/machine"
	"router-cam/internal/pipeline"
	"router-cam/internal/version"
)

func main() {
	jobPath := flag.String("job", "", "Path to TOML job file")
	outPath := flag.String("out", "-", "Output G-code path, - for stdout")
	comment := flag.String("comment", "", "Program header comment (default: job file name)")
	arcs := flag.Bool("arcs", true, "Compress arc-shaped cut runs into G2/G3")
	quiet := flag.Bool("quiet", false, "Suppress progress logging")
	flag.Parse()

	if *jobPath == "" {
		fmt.Println("Usage: router-cam -job <path> [-out gcode.nc] [-arcs=false]")
		os.Exit(1)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !*quiet {
		log.Printf("router-cam v%s", version.Version)
	}

	job, err := machine.LoadJob(*jobPath)
	if err != nil {
		log.Fatalf("Failed to load job: %v", err)
	}
	if !*quiet {
		log.Printf("Loaded %s: %d paths, %s tool %.1fmm, depth %.2fmm, side %s",
			*jobPath, len(job.Paths), job.Tool.Kind, job.Tool.Diameter, job.Depth, job.Side)
	}

	header := *comment
	if header == "" {
		header = *jobPath
	}

	var progress pipeline.Progress
	if !*quiet {
		progress = func(f float64) {
			log.Printf("Progress: %.0f%%", f*100)
		}
	}

	res, err := pipeline.RunVector(job, pipeline.VectorOptions{
		Comment:  header,
		FitArcs:  *arcs,
		Progress: progress,
	})
	if err != nil {
		log.Fatalf("Job failed: %v", err)
	}

	if !*quiet {
		log.Printf("Cutting %.1fmm, plunging %.1fmm, rapids %.1fmm, about %.0fs",
			res.Stats.CuttingDistance, res.Stats.PlungeDistance,
			res.Stats.RapidDistance, res.Stats.EstimatedTime)
	}

	if *outPath == "-" {
		fmt.Print(res.GCode)
		return
	}
	if err := os.WriteFile(*outPath, []byte(res.GCode), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outPath, err)
	}
	if !*quiet {
		log.Printf("Wrote %s (%d bytes)", *outPath, len(res.GCode))
	}
}
