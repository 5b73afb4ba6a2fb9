package nmea

import "strings"

const (
	// MaxSentenceLen bounds a line, excluding its CR/LF terminator.
	MaxSentenceLen = 102
	// MaxFields bounds the number of fields after the identifier.
	MaxFields = 40
)

// Frame is a checksum-verified sentence split into fields. The field
// strings alias the parsed line.
type Frame struct {
	Start    byte
	ID       string
	Checksum byte

	fields [MaxFields]string
	n      int
}

// Talker returns the 2-character talker of the identifier.
func (f *Frame) Talker() string { return f.ID[:2] }

// Code returns the 3-character sentence code of the identifier.
func (f *Frame) Code() string { return f.ID[2:] }

// Len returns the number of fields after the identifier.
func (f *Frame) Len() int { return f.n }

// Field returns field i, or "" when i is out of range.
func (f *Frame) Field(i int) string {
	if i < 0 || i >= f.n {
		return ""
	}
	return f.fields[i]
}

// Fields returns the fields after the identifier.
func (f *Frame) Fields() []string { return f.fields[:f.n] }

// Checksum returns the XOR of every byte of body. body is the text between
// the start marker and '*'.
func Checksum(body string) byte {
	var c byte
	for i := 0; i < len(body); i++ {
		c ^= body[i]
	}
	return c
}

// ParseFrame validates the framing of line and splits it. Trailing CR, LF and
// spaces are ignored.
func ParseFrame(line string) (Frame, error) {
	var f Frame
	err := f.decode(line)
	return f, err
}

func (f *Frame) decode(line string) error {
	line = strings.TrimRight(line, "\r\n \t")
	if line == "" || (line[0] != '$' && line[0] != '!') {
		return &FrameError{Err: ErrNoStartMarker}
	}
	if len(line) > MaxSentenceLen {
		return &FrameError{Err: ErrTooLong}
	}
	for i := 0; i < len(line); i++ {
		if line[i] >= 0x80 {
			return &FrameError{Err: ErrNonASCII}
		}
	}

	star := strings.LastIndexByte(line, '*')
	if star < 0 {
		return &FrameError{Err: ErrNoChecksum}
	}
	digits := line[star+1:]
	if len(digits) != 2 {
		return &FrameError{Err: ErrBadChecksum}
	}
	hi, ok1 := hexNibble(digits[0])
	lo, ok2 := hexNibble(digits[1])
	if !ok1 || !ok2 {
		return &FrameError{Err: ErrBadChecksum}
	}
	found := hi<<4 | lo
	body := line[1:star]
	if calc := Checksum(body); calc != found {
		return &FrameError{Err: ErrChecksumMismatch, Calculated: calc, Found: found}
	}

	id, rest, hasFields := strings.Cut(body, ",")
	if !validIdentifier(id) {
		return &FrameError{Err: ErrBadIdentifier}
	}
	f.Start = line[0]
	f.ID = id
	f.Checksum = found
	f.n = 0
	if !hasFields {
		return nil
	}
	for {
		tok, next, more := strings.Cut(rest, ",")
		if f.n == MaxFields {
			return &CapacityError{What: "fields", Limit: MaxFields, Got: strings.Count(body, ",")}
		}
		f.fields[f.n] = tok
		f.n++
		if !more {
			return nil
		}
		rest = next
	}
}

func validIdentifier(id string) bool {
	if len(id) != 5 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
