package host

import "fmt"

// NotFoundError reports a missing design entity (bad index, unknown name).
// The dispatcher folds it into an unsuccessful result; it is never fatal.
type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string {
	return e.msg
}

// NotFound builds a NotFoundError from a format string.
func NotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

func invalidSketchIndex(index, count int) *NotFoundError {
	return NotFound("Invalid sketch index %d. Design has %d sketches.", index, count)
}

func invalidBodyIndex(index, count int) *NotFoundError {
	return NotFound("Invalid body index %d. Design has %d bodies.", index, count)
}

func invalidPlaneIndex(index, count int) *NotFoundError {
	return NotFound("Invalid plane_index %d. Design has %d construction planes.", index, count)
}

func invalidFaceIndex(index, count int) *NotFoundError {
	return NotFound("Invalid face_index %d. Body has %d faces.", index, count)
}

func invalidOccurrenceIndex(index, count int) *NotFoundError {
	return NotFound("Invalid occurrence index %d. Has %d occurrences (0-%d)", index, count, count-1)
}
