// Package geo wraps the H3 grid library behind string cell ids at the
// game's fixed resolution. Everything above this package treats a cell
// id as an opaque key.
package geo

import (
	"errors"
	"fmt"

	h3 "github.com/uber/h3-go/v4"
)

// Resolution is the only H3 resolution the game operates at. Cell ids
// at any other resolution are rejected as invalid.
const Resolution = 11

var ErrInvalidCell = errors.New("invalid cell id")

// CellFromLatLng returns the id of the cell containing the coordinate.
func CellFromLatLng(lat, lng float64) string {
	return h3.LatLngToCell(h3.NewLatLng(lat, lng), Resolution).String()
}

// IsValidCell reports whether id names a grid cell at the game resolution.
func IsValidCell(id string) bool {
	_, err := parse(id)
	return err == nil
}

// CellCenter returns the geographic center of the cell.
func CellCenter(id string) (lat, lng float64, err error) {
	c, err := parse(id)
	if err != nil {
		return 0, 0, err
	}
	ll := h3.CellToLatLng(c)
	return ll.Lat, ll.Lng, nil
}

// BoundingBox returns the smallest south/west/north/east box enclosing
// the cell's boundary polygon.
func BoundingBox(id string) (south, west, north, east float64, err error) {
	c, err := parse(id)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	boundary := h3.CellToBoundary(c)
	if len(boundary) == 0 {
		return 0, 0, 0, 0, fmt.Errorf("%w: %s has empty boundary", ErrInvalidCell, id)
	}
	south, north = boundary[0].Lat, boundary[0].Lat
	west, east = boundary[0].Lng, boundary[0].Lng
	for _, v := range boundary[1:] {
		if v.Lat < south {
			south = v.Lat
		}
		if v.Lat > north {
			north = v.Lat
		}
		if v.Lng < west {
			west = v.Lng
		}
		if v.Lng > east {
			east = v.Lng
		}
	}
	return south, west, north, east, nil
}

// Disk returns the cell plus every cell within grid distance k.
func Disk(id string, k int) ([]string, error) {
	c, err := parse(id)
	if err != nil {
		return nil, err
	}
	cells := h3.GridDisk(c, k)
	out := make([]string, 0, len(cells))
	for _, cell := range cells {
		out = append(out, cell.String())
	}
	return out, nil
}

// Path returns the shortest cell-to-cell path from one cell to another,
// inclusive of both endpoints.
func Path(from, to string) ([]string, error) {
	a, err := parse(from)
	if err != nil {
		return nil, err
	}
	b, err := parse(to)
	if err != nil {
		return nil, err
	}
	cells := h3.GridPath(a, b)
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: no path from %s to %s", ErrInvalidCell, from, to)
	}
	out := make([]string, 0, len(cells))
	for _, cell := range cells {
		out = append(out, cell.String())
	}
	return out, nil
}

func parse(id string) (h3.Cell, error) {
	if id == "" {
		return 0, ErrInvalidCell
	}
	c := h3.Cell(h3.IndexFromString(id))
	if !c.IsValid() || c.Resolution() != Resolution {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCell, id)
	}
	return c, nil
}
