// Command sudoku-ar detects a Sudoku grid (or a binary marker) in a
// sequence of frames, rectifies it, estimates its pose and optionally hands
// the grid cells to a digit recognizer.
//
// Usage: sudoku-ar [options] <frame|dir>...
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sudoku-ar/internal/digits"
	"sudoku-ar/internal/fiducial"
	"sudoku-ar/internal/frames"
	"sudoku-ar/internal/version"

	"gocv.io/x/gocv"
)

var (
	flagConfig     = flag.String("config", "", "YAML parameter file")
	flagMode       = flag.String("mode", "", "Fiducial mode: grid or marker (overrides config, with that mode's defaults)")
	flagSide       = flag.Float64("side", 0, "Fiducial side length in meters (overrides config)")
	flagFocal      = flag.Float64("focal", -1, "Focal length in pixels, 0 = frame width (overrides config)")
	flagRectified  = flag.String("rectified", "", "Write rectified images to this folder")
	flagOverlay    = flag.String("overlay", "", "Write debug overlays to this folder")
	flagCells      = flag.String("cells", "", "Write the 81 grid cells of each frame to this folder")
	flagRecognizer = flag.String("recognizer", "", "External digit recognizer command")
	flagResults    = flag.String("results", "results.txt", "Results file written by the external recognizer")
	flagTesseract  = flag.Bool("tesseract", false, "Recognize digits with Tesseract")
	flagTimeout    = flag.Duration("timeout", 30*time.Second, "External recognizer timeout")
	flagVerbose    = flag.Bool("v", false, "Verbose output")
	flagVersion    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	flag.Parse()

	if *flagVersion {
		fmt.Println(version.String("sudoku-ar"))
		return
	}
	if flag.NArg() == 0 {
		fmt.Println("Usage: sudoku-ar [options] <frame|dir>...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	params, err := loadParams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	detector, err := fiducial.NewDetector(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	recognizer, closeRecognizer, err := newRecognizer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer closeRecognizer()

	paths, err := frames.List(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list frames: %v\n", err)
		os.Exit(1)
	}

	found := 0
	for _, path := range paths {
		ok, err := processFrame(detector, recognizer, path)
		if err != nil {
			log.Printf("%s: %v", path, err)
			continue
		}
		if ok {
			found++
		}
	}
	fmt.Printf("\n%d of %d frames with a %s\n", found, len(paths), params.Mode)
}

func loadParams() (fiducial.Params, error) {
	mode := fiducial.Mode(*flagMode)
	switch mode {
	case "", fiducial.ModeGrid, fiducial.ModeMarker:
	default:
		return fiducial.Params{}, fmt.Errorf("unknown mode %q", *flagMode)
	}

	params := fiducial.DefaultParams()
	if mode == fiducial.ModeMarker {
		params = fiducial.DefaultMarkerParams()
	}
	if *flagConfig != "" {
		p, err := fiducial.LoadParamsForMode(*flagConfig, mode)
		if err != nil {
			return params, err
		}
		params = p
	}

	if *flagSide > 0 {
		params = params.WithSideLength(*flagSide)
	}
	if *flagFocal >= 0 {
		params = params.WithFocalLength(*flagFocal)
	}
	if *flagVerbose {
		params.Verbose = true
	}
	return params, params.Validate()
}

func newRecognizer() (digits.Recognizer, func(), error) {
	switch {
	case *flagTesseract:
		t, err := digits.NewTesseractRecognizer()
		if err != nil {
			return nil, func() {}, err
		}
		return t, func() { t.Close() }, nil
	case *flagRecognizer != "":
		command, args, err := splitCommand(*flagRecognizer)
		if err != nil {
			return nil, func() {}, err
		}
		cellDir := *flagCells
		if cellDir == "" {
			cellDir = "cells"
		}
		r := digits.NewExternalRecognizer(command, args, cellDir, *flagResults)
		r.Timeout = *flagTimeout
		r.Verbose = *flagVerbose
		return r, func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

// splitCommand splits a recognizer command line on whitespace.
func splitCommand(line string) (string, []string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty recognizer command %q", line)
	}
	return fields[0], fields[1:], nil
}

func processFrame(detector *fiducial.Detector, recognizer digits.Recognizer, path string) (bool, error) {
	frame, err := frames.Load(path)
	if err != nil {
		return false, err
	}
	defer frame.Close()

	res, err := detector.Detect(frame)
	if err != nil {
		return false, err
	}
	defer res.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	printResult(path, res)

	if *flagOverlay != "" {
		fiducial.DrawOverlay(&frame, res)
		if err := frames.Save(filepath.Join(*flagOverlay, name+".png"), frame); err != nil {
			log.Printf("%s: %v", path, err)
		}
	}
	if res.Rectified != nil && *flagRectified != "" {
		if err := frames.Save(filepath.Join(*flagRectified, name+".png"), *res.Rectified); err != nil {
			log.Printf("%s: %v", path, err)
		}
	}

	if res.Status != fiducial.StatusFound {
		return false, nil
	}
	if detector.Params().Mode == fiducial.ModeGrid {
		if err := handleCells(detector.Params(), recognizer, *res.Rectified, name); err != nil {
			log.Printf("%s: %v", path, err)
		}
	}
	return true, nil
}

func printResult(path string, res *fiducial.Result) {
	fmt.Printf("%s: %s\n", path, res.Status)
	if res.Status == fiducial.StatusNotFound {
		return
	}
	c := res.Corners
	fmt.Printf("  TL (%.2f, %.2f)  BL (%.2f, %.2f)  BR (%.2f, %.2f)  TR (%.2f, %.2f)\n",
		c.TopLeft().X, c.TopLeft().Y, c.BottomLeft().X, c.BottomLeft().Y,
		c.BottomRight().X, c.BottomRight().Y, c.TopRight().X, c.TopRight().Y)
	if res.Err != nil {
		fmt.Printf("  %v\n", res.Err)
	}
	if res.Status == fiducial.StatusFound && res.Marker != (fiducial.MarkerCode{}) {
		fmt.Printf("  Marker %s\n", res.Marker)
	}
	if res.HasPose {
		t := res.Pose.Translation
		fmt.Printf("  Translation (%.4f, %.4f, %.4f)  distance %.1f cm\n", t.X, t.Y, t.Z, res.Pose.DistanceCM())
	}
}

func handleCells(params fiducial.Params, recognizer digits.Recognizer, rectified gocv.Mat, name string) error {
	if *flagCells == "" && recognizer == nil {
		return nil
	}
	cells, err := digits.ExtractCells(rectified, params.RectifySource == fiducial.RectifyBinary)
	if err != nil {
		return err
	}
	if *flagCells != "" && recognizer == nil {
		if err := digits.SaveCells(filepath.Join(*flagCells, name), cells); err != nil {
			return err
		}
	}
	if recognizer == nil {
		return nil
	}

	grid, err := recognizer.Recognize(context.Background(), cells)
	if err != nil {
		return err
	}
	fmt.Printf("  %d digits recognized\n%s", grid.Filled(), grid)
	return nil
}
