package renderer

import (
	"errors"
	"fmt"

	"github.com/achilleasa/lux/tracer"
)

var (
	ErrSceneNotDefined = errors.New("renderer: no scene defined")
	ErrSceneNotActive  = errors.New("renderer: scene has not been activated")
	ErrInterrupted     = errors.New("renderer: interrupted while rendering")
	ErrTilePanic       = errors.New("renderer: panic while rendering tile")
)

// TileError reports a failure while rendering a tile. The tile is never
// merged into the frame.
type TileError struct {
	Tile   tracer.Tile
	Worker int
	Err    error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("renderer: worker %d failed to render tile #%d at %v (size %v): %v", e.Worker, e.Tile.Index, e.Tile.Offset, e.Tile.Size, e.Err)
}

func (e *TileError) Unwrap() error {
	return e.Err
}
