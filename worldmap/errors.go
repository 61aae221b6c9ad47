package worldmap

import "errors"

// ErrInvalidMap is returned by New when a portal's from/to index falls
// outside the grid.
var ErrInvalidMap = errors.New("worldmap: invalid map")
