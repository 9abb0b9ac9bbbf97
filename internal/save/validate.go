package save

import (
	"errors"
	"fmt"
)

// Validate checks that d is structurally complete: a version, every section
// present, and a tile grid that is either empty or Width columns of Height
// tiles.
func Validate(d *GameSaveData) error {
	if d == nil {
		return errors.New("no save data")
	}

	var errs []error
	if d.Version == "" {
		errs = append(errs, errors.New("version is empty"))
	}
	if d.Player == nil {
		errs = append(errs, errors.New("player section missing"))
	}
	if d.Entities == nil {
		errs = append(errs, errors.New("entities section missing"))
	}
	if d.Inventory == nil {
		errs = append(errs, errors.New("inventory section missing"))
	}
	if d.Map == nil {
		errs = append(errs, errors.New("map section missing"))
	} else {
		errs = append(errs, validateMap(d.Map))
	}
	return errors.Join(errs...)
}

func validateMap(m *MapSaveData) error {
	if m.Width < 0 || m.Height < 0 {
		return fmt.Errorf("map dimensions %dx%d are negative", m.Width, m.Height)
	}
	if len(m.TileData) == 0 {
		return nil
	}
	if len(m.TileData) != m.Width {
		return fmt.Errorf("tile grid has %d columns, map width is %d", len(m.TileData), m.Width)
	}
	for x, col := range m.TileData {
		if len(col) != m.Height {
			return fmt.Errorf("tile column %d has %d rows, map height is %d", x, len(col), m.Height)
		}
	}
	return nil
}
