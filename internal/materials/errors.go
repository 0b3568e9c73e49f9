package materials

import "fmt"

// ShapeError reports a genome whose length or values cannot be mapped onto
// the configured material slots.
type ShapeError struct {
	Length   int
	Expected int
	Reason   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("genome shape error: %s (length %d, expected %d)", e.Reason, e.Length, e.Expected)
}

// CountMismatchError reports a material list whose size differs from the
// configured material count.
type CountMismatchError struct {
	Got      int
	Expected int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("material count mismatch: got %d, expected %d", e.Got, e.Expected)
}
