package tracer

import (
	"errors"
	"image"
	"sync"
)

var ErrInvalidTileSize = errors.New("tracer: tile size must be positive")

type direction uint8

const (
	dirRight direction = iota
	dirDown
	dirLeft
	dirUp
)

// TileScheduler emits the tiles of a frame in an outward spiral that starts
// at the tile containing the frame center. Next is safe for concurrent use.
type TileScheduler struct {
	sync.Mutex

	frameW, frameH int
	tileSize       int
	numTiles       image.Point

	// Tile grid coordinates of the next tile to emit.
	tile image.Point

	dir       direction
	stepsLeft int
	numSteps  int
	tilesLeft int
}

// Create a new spiral scheduler for a frameW x frameH frame.
func NewTileScheduler(frameW, frameH, tileSize int) (*TileScheduler, error) {
	if tileSize <= 0 {
		return nil, ErrInvalidTileSize
	}

	s := &TileScheduler{
		frameW:   frameW,
		frameH:   frameH,
		tileSize: tileSize,
	}
	if frameW > 0 && frameH > 0 {
		s.numTiles = image.Pt(
			(frameW+tileSize-1)/tileSize,
			(frameH+tileSize-1)/tileSize,
		)
	}
	s.Reset()
	return s, nil
}

// Rewind the scheduler so the next call to Next emits the center tile.
func (s *TileScheduler) Reset() {
	s.Lock()
	defer s.Unlock()

	s.tile = image.Pt((s.frameW/2)/s.tileSize, (s.frameH/2)/s.tileSize)
	s.dir = dirRight
	s.stepsLeft = 1
	s.numSteps = 1
	s.tilesLeft = s.numTiles.X * s.numTiles.Y
}

// Get the total number of tiles in the frame.
func (s *TileScheduler) TileCount() int {
	return s.numTiles.X * s.numTiles.Y
}

// Get the number of tiles that have not been emitted yet.
func (s *TileScheduler) TilesRemaining() int {
	s.Lock()
	defer s.Unlock()
	return s.tilesLeft
}

// Get the tile size.
func (s *TileScheduler) TileSize() int {
	return s.tileSize
}

// Fill in the next tile. Returns false once every tile has been emitted.
func (s *TileScheduler) Next(tile *Tile) bool {
	s.Lock()
	defer s.Unlock()

	if s.tilesLeft == 0 {
		return false
	}

	offset := s.tile.Mul(s.tileSize)
	tile.Index = s.TileCount() - s.tilesLeft
	tile.Offset = offset
	tile.Size = image.Pt(
		min(s.frameW-offset.X, s.tileSize),
		min(s.frameH-offset.Y, s.tileSize),
	)

	s.tilesLeft--
	if s.tilesLeft == 0 {
		return true
	}

	// Walk the spiral skipping cells that fall outside the tile grid
	for {
		switch s.dir {
		case dirRight:
			s.tile.X++
		case dirDown:
			s.tile.Y++
		case dirLeft:
			s.tile.X--
		case dirUp:
			s.tile.Y--
		}

		s.stepsLeft--
		if s.stepsLeft == 0 {
			s.dir = (s.dir + 1) % 4
			if s.dir == dirLeft || s.dir == dirRight {
				s.numSteps++
			}
			s.stepsLeft = s.numSteps
		}

		if s.tile.X >= 0 && s.tile.Y >= 0 && s.tile.X < s.numTiles.X && s.tile.Y < s.numTiles.Y {
			break
		}
	}

	return true
}
