package grid

import "fmt"

// InvalidConfigError reports a non-positive grid extent or cell size.
type InvalidConfigError struct {
	Field string
	Value float64
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid field config: %s must be positive, got %v", e.Field, e.Value)
}

// OutOfBoundsError reports a cell outside the grid extents.
type OutOfBoundsError struct {
	X, Y       int
	MaxX, MaxY int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("spot %dx%d is outside the field (max %dx%d)", e.X, e.Y, e.MaxX, e.MaxY)
}
