package sim

import "errors"

var (
	ErrNoZoneShape        = errors.New("sim: zone spec has no shape")
	ErrAmbiguousZoneShape = errors.New("sim: zone spec has more than one shape")
	ErrDegeneratePolygon  = errors.New("sim: polygon zone needs at least 3 points")
	ErrMissingZoneID      = errors.New("sim: zone id is empty")
	ErrInvalidDimensions  = errors.New("sim: dimensions must be positive")
	ErrUnknownDrivetrain  = errors.New("sim: unknown drivetrain kind")
	ErrUnknownChannel     = errors.New("sim: unknown motor channel")
	ErrBodyNotBound       = errors.New("sim: physics body not created yet")
	ErrLinksConfigured    = errors.New("sim: fixture links already configured")
)
