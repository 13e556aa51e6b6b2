// Command markertest detects a binary marker in one image and prints its
// code, corners and pose.
package main

import (
	"flag"
	"fmt"
	"os"

	"sudoku-ar/internal/fiducial"
	"sudoku-ar/internal/frames"
)

func main() {
	imagePath := flag.String("image", "", "Path to image (TIFF, PNG, BMP or JPEG)")
	side := flag.Float64("side", 0.045, "Marker side length in meters")
	focal := flag.Float64("focal", 0, "Focal length in pixels (0 = image width)")
	threshold := flag.Int("threshold", 100, "Marker cell threshold (0-255)")
	overlay := flag.String("overlay", "", "Write a debug overlay to this file")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: markertest -image <path> [-side 0.045] [-focal 0] [-threshold 100] [-overlay out.png]")
		os.Exit(1)
	}

	frame, err := frames.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer frame.Close()
	fmt.Printf("Loaded image: %dx%d pixels\n", frame.Cols(), frame.Rows())

	params := fiducial.DefaultMarkerParams().WithSideLength(*side).WithFocalLength(*focal)
	params.MarkerThreshold = *threshold
	params.Verbose = true

	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  Threshold: block %d, C %.0f\n", params.BlockSize, params.Constant)
	fmt.Printf("  Area: min %d, max %d\n", params.MinArea, params.MaxArea)
	fmt.Printf("  Marker threshold: %d\n", params.MarkerThreshold)
	fmt.Printf("  Side: %.3f m, focal %.0f px\n", params.SideLength, params.FocalLength)

	detector, err := fiducial.NewDetector(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	res, err := detector.Detect(frame)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}
	defer res.Close()

	fmt.Printf("\nStatus: %s\n", res.Status)
	if res.Err != nil {
		fmt.Printf("Reason: %v\n", res.Err)
	}
	if res.Status != fiducial.StatusNotFound {
		fmt.Printf("\n%-12s %10s %10s\n", "Corner", "X", "Y")
		names := []string{"top-left", "bottom-left", "bottom-right", "top-right"}
		for i, p := range res.Corners {
			fmt.Printf("%-12s %10.2f %10.2f\n", names[i], p.X, p.Y)
		}
		fmt.Printf("Edge samples not refined: %d\n", unrefined(res.Refinement))
	}

	if res.Status == fiducial.StatusFound {
		fmt.Printf("\nMarker: %s\n", res.Marker)
		fmt.Printf("\nPose:\n")
		m := res.Pose.Matrix
		for r := 0; r < 4; r++ {
			fmt.Printf("  %9.4f %9.4f %9.4f %9.4f\n", m[r*4], m[r*4+1], m[r*4+2], m[r*4+3])
		}
		fmt.Printf("Distance: %.1f cm\n", res.Pose.DistanceCM())
	}

	if *overlay != "" {
		fiducial.DrawOverlay(&frame, res)
		if err := frames.Save(*overlay, frame); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nOverlay written to %s\n", *overlay)
	}
}

func unrefined(r fiducial.Refinement) int {
	n := 0
	for _, side := range r.Samples {
		for _, s := range side {
			if !s.Refined {
				n++
			}
		}
	}
	return n
}
