package brain

import "fmt"

// DataShapeError reports an input tensor whose dimensions do not line up.
// It is fatal at construction.
type DataShapeError struct {
	Field  string
	Want   int
	Got    int
	Reason string
}

func (e *DataShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("data shape: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("data shape: %s: want %d, got %d", e.Field, e.Want, e.Got)
}

func shapeMismatch(field string, want, got int) error {
	return &DataShapeError{Field: field, Want: want, Got: got}
}

func shapeInvalid(field, reason string) error {
	return &DataShapeError{Field: field, Reason: reason}
}
