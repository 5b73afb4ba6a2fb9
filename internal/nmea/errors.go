package nmea

import (
	"errors"
	"fmt"
)

// Frame failures.
var (
	ErrNoStartMarker    = errors.New("missing start marker")
	ErrNoChecksum       = errors.New("missing checksum")
	ErrBadChecksum      = errors.New("checksum digits are not hex")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrBadIdentifier    = errors.New("malformed identifier")
	ErrTooLong          = errors.New("sentence too long")
	ErrNonASCII         = errors.New("non-ascii byte")
)

// Field failures.
var (
	ErrCoordinate  = errors.New("invalid coordinate")
	ErrNumeric     = errors.New("invalid number")
	ErrUnknownCode = errors.New("unknown code")
	ErrTime        = errors.New("invalid time")
	ErrDate        = errors.New("invalid date")
)

// Sentence failures.
var (
	ErrMissingFields = errors.New("missing fields")
	ErrUnsupported   = errors.New("unsupported sentence")
)

// ErrCapacity is wrapped by every *CapacityError.
var ErrCapacity = errors.New("capacity exceeded")

// FrameError reports a line that is not a well formed NMEA frame.
type FrameError struct {
	Err        error
	Calculated byte
	Found      byte
}

func (e *FrameError) Error() string {
	if errors.Is(e.Err, ErrChecksumMismatch) {
		return fmt.Sprintf("nmea: %v (calculated=%02X found=%02X)", e.Err, e.Calculated, e.Found)
	}
	return "nmea: " + e.Err.Error()
}

func (e *FrameError) Unwrap() error { return e.Err }

// FieldError reports a field that could not be decoded.
type FieldError struct {
	Sentence SentenceType
	Index    int
	Name     string
	Value    string
	Err      error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("nmea: %s field %d (%s) %q: %v", e.Sentence, e.Index, e.Name, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// SentenceError reports a frame that could not be turned into a record.
type SentenceError struct {
	Talker string
	Code   string
	Err    error
	// Have and Want are set for ErrMissingFields.
	Have int
	Want int
}

func (e *SentenceError) Error() string {
	if errors.Is(e.Err, ErrMissingFields) {
		return fmt.Sprintf("nmea: %s%s: %v (have=%d want=%d)", e.Talker, e.Code, e.Err, e.Have, e.Want)
	}
	return fmt.Sprintf("nmea: %s%s: %v", e.Talker, e.Code, e.Err)
}

func (e *SentenceError) Unwrap() error { return e.Err }

// CapacityError reports input that would overflow a fixed-size container.
type CapacityError struct {
	What  string
	Limit int
	Got   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("nmea: %s: %v (limit=%d got=%d)", e.What, ErrCapacity, e.Limit, e.Got)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

// ErrorKind returns a short stable label for err, suitable for metrics and
// log keys: "frame", "field", "missing_fields", "unsupported", "capacity"
// or "other". A nil error maps to "".
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var (
		fe *FrameError
		de *FieldError
		se *SentenceError
		ce *CapacityError
	)
	switch {
	case errors.As(err, &ce):
		return "capacity"
	case errors.As(err, &fe):
		return "frame"
	case errors.As(err, &de):
		return "field"
	case errors.As(err, &se):
		if errors.Is(se.Err, ErrUnsupported) {
			return "unsupported"
		}
		return "missing_fields"
	}
	return "other"
}
