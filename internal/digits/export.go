package digits

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// CellFileName returns the file name of a cell inside an export folder.
func CellFileName(index int) string {
	return fmt.Sprintf("%d.png", index)
}

// SaveCells writes every cell as <index>.png into dir, creating it if needed.
func SaveCells(dir string, cells []Cell) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cell folder: %w", err)
	}
	for _, c := range cells {
		path := filepath.Join(dir, CellFileName(c.Index))
		if err := imaging.Save(c.Image, path); err != nil {
			return fmt.Errorf("failed to save cell %d: %w", c.Index, err)
		}
	}
	return nil
}
