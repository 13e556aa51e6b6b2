// Command celldump writes the 81 normalized cells of the Sudoku grid found
// in each image, for building recognizer training sets.
//
// Usage: celldump [options] <image|dir>...
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sudoku-ar/internal/digits"
	"sudoku-ar/internal/fiducial"
	"sudoku-ar/internal/frames"
)

var (
	flagOut     = flag.String("out", "cells", "Output folder; one subfolder per image")
	flagConfig  = flag.String("config", "", "YAML parameter file")
	flagGray    = flag.Bool("gray", false, "Cut cells from the gray image instead of the binary one")
	flagSkip    = flag.Bool("skip-empty", false, "Do not write cells without a digit")
	flagVerbose = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Usage: celldump [options] <image|dir>...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	params := fiducial.DefaultParams()
	if *flagConfig != "" {
		p, err := fiducial.LoadParams(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		params = p
	}
	params.Mode = fiducial.ModeGrid
	params.Verbose = *flagVerbose
	if *flagGray {
		params.RectifySource = fiducial.RectifyGray
	}

	detector, err := fiducial.NewDetector(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	paths, err := frames.List(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	total := 0
	for _, path := range paths {
		n, err := dump(detector, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}
		fmt.Printf("%s: %d cells\n", path, n)
		total += n
	}
	fmt.Printf("\nTotal: %d cells from %d images\n", total, len(paths))
}

func dump(detector *fiducial.Detector, path string) (int, error) {
	frame, err := frames.Load(path)
	if err != nil {
		return 0, err
	}
	defer frame.Close()

	res, err := detector.Detect(frame)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	if res.Status != fiducial.StatusFound {
		return 0, fmt.Errorf("grid %s", res.Status)
	}

	cells, err := digits.ExtractCells(*res.Rectified, detector.Params().RectifySource == fiducial.RectifyBinary)
	if err != nil {
		return 0, err
	}
	if *flagSkip {
		kept := cells[:0]
		for _, c := range cells {
			if !c.IsEmpty() {
				kept = append(kept, c)
			}
		}
		cells = kept
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := digits.SaveCells(filepath.Join(*flagOut, name), cells); err != nil {
		return 0, err
	}
	return len(cells), nil
}
