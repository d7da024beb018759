package kitchen

import "errors"

var (
	// ErrUnresolved is returned when an ingredient, or a unit of a known
	// ingredient, is missing from the conversion table, or when two operands
	// resolve to different base units.
	ErrUnresolved = errors.New("unresolved conversion")

	ErrInvalidEntry      = errors.New("invalid conversion entry")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrAmbiguousStock is returned when more than one stock item carries the
	// same normalized name. Joining recipes against such stock is unsupported.
	ErrAmbiguousStock = errors.New("ambiguous stock item")
)

// ErrInvalidQuantity is returned for quantities that are not finite numbers.
var ErrInvalidQuantity = errors.New("invalid quantity")
