package catalog

import "errors"

var (
	ErrUnitNotFound = errors.New("sellable unit not found")
	ErrEmptyName    = errors.New("unit name cannot be empty")
	ErrInvalidPrice = errors.New("unit price must be positive")
	ErrInvalidKind  = errors.New("unit kind must be stocked or bookable")
)
