package physics

import "errors"

var (
	ErrNilBody           = errors.New("physics: body is nil")
	ErrBodyRemoved       = errors.New("physics: body removed from world")
	ErrInvalidShape      = errors.New("physics: invalid fixture shape")
	ErrDegeneratePolygon = errors.New("physics: polygon needs at least 3 points")
	ErrZeroAxis          = errors.New("physics: joint axis has zero length")
)
