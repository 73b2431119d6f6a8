package projection

import "fmt"

// RenderError reports that one view could not be drawn. It never aborts the
// other views of the same request.
type RenderError struct {
	View string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s view: %v", e.View, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
