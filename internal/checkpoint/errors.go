package checkpoint

import "fmt"

// DeserializationError reports a checkpoint that is missing, unreadable or
// in a format the loader does not recognize.
type DeserializationError struct {
	Path string
	Err  error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("load checkpoint %s: %v", e.Path, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// CastError reports a parameter whose value cannot be cast to float32.
type CastError struct {
	Name  string
	DType string
	Err   error
}

func (e *CastError) Error() string {
	if e.DType != "" {
		return fmt.Sprintf("parameter %s: cannot cast %s to float32: %v", e.Name, e.DType, e.Err)
	}
	return fmt.Sprintf("parameter %s: %v", e.Name, e.Err)
}

func (e *CastError) Unwrap() error { return e.Err }
