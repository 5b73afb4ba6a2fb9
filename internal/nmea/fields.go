package nmea

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxTextLen bounds free-text fields such as waypoint ids and TXT bodies.
const MaxTextLen = 64

// YearPivot splits two-digit years: values at or above it are 19xx, values
// below it are 20xx. NMEA 0183 was published in 1983.
const YearPivot = 83

// The decoders below are total: an empty token yields an invalid Opt and a nil
// error, and a non-empty token either decodes or fails.

// DecodeFloat decodes a decimal number with an optional sign.
func DecodeFloat(tok string) (Opt[float64], error) {
	if tok == "" {
		return Opt[float64]{}, nil
	}
	if !isDecimal(tok, true) {
		return Opt[float64]{}, fmt.Errorf("%w: %q", ErrNumeric, tok)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return Opt[float64]{}, fmt.Errorf("%w: %q", ErrNumeric, tok)
	}
	return Some(v), nil
}

// DecodeInt decodes a base-10 integer with an optional sign.
func DecodeInt(tok string) (Opt[int], error) {
	if tok == "" {
		return Opt[int]{}, nil
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return Opt[int]{}, fmt.Errorf("%w: %q", ErrNumeric, tok)
	}
	return Some(v), nil
}

// DecodeHex decodes an unsigned hex integer that fits in bits.
func DecodeHex(tok string, bits int) (Opt[uint32], error) {
	if tok == "" {
		return Opt[uint32]{}, nil
	}
	v, err := strconv.ParseUint(tok, 16, bits)
	if err != nil {
		return Opt[uint32]{}, fmt.Errorf("%w: hex %q", ErrNumeric, tok)
	}
	return Some(uint32(v)), nil
}

// DecodeLatitude decodes DDMM.mmm with an N/S hemisphere into signed decimal
// degrees.
func DecodeLatitude(value, hemi string) (Opt[float64], error) {
	return decodeCoordinate(value, hemi, 2, 'N', 'S', 90)
}

// DecodeLongitude decodes DDDMM.mmm with an E/W hemisphere into signed decimal
// degrees.
func DecodeLongitude(value, hemi string) (Opt[float64], error) {
	return decodeCoordinate(value, hemi, 3, 'E', 'W', 180)
}

func decodeCoordinate(value, hemi string, degDigits int, pos, neg byte, limit float64) (Opt[float64], error) {
	if value == "" && hemi == "" {
		return Opt[float64]{}, nil
	}
	if value == "" || hemi == "" {
		return Opt[float64]{}, fmt.Errorf("%w: incomplete %q %q", ErrCoordinate, value, hemi)
	}
	if len(hemi) != 1 || (hemi[0] != pos && hemi[0] != neg) {
		return Opt[float64]{}, fmt.Errorf("%w: hemisphere %q", ErrCoordinate, hemi)
	}
	if len(value) < degDigits+2 || !isDigits(value[:degDigits+2]) || !isDecimal(value[degDigits:], false) {
		return Opt[float64]{}, fmt.Errorf("%w: %q", ErrCoordinate, value)
	}
	deg, _ := strconv.Atoi(value[:degDigits])
	minutes, err := strconv.ParseFloat(value[degDigits:], 64)
	if err != nil {
		return Opt[float64]{}, fmt.Errorf("%w: %q", ErrCoordinate, value)
	}
	if minutes >= 60 {
		return Opt[float64]{}, fmt.Errorf("%w: minutes %q out of range", ErrCoordinate, value)
	}
	v := float64(deg) + minutes/60
	if v > limit {
		return Opt[float64]{}, fmt.Errorf("%w: %q out of range", ErrCoordinate, value)
	}
	if hemi[0] == neg {
		v = -v
	}
	return Some(v), nil
}

// DecodeTime decodes HHMMSS with an optional fractional second of at most
// nine digits.
func DecodeTime(tok string) (Opt[TimeOfDay], error) {
	if tok == "" {
		return Opt[TimeOfDay]{}, nil
	}
	if len(tok) < 6 || !isDigits(tok[:6]) {
		return Opt[TimeOfDay]{}, fmt.Errorf("%w: %q", ErrTime, tok)
	}
	t := TimeOfDay{
		Hour:   atoi2(tok[0:2]),
		Minute: atoi2(tok[2:4]),
		Second: atoi2(tok[4:6]),
	}
	if frac := tok[6:]; frac != "" {
		if frac[0] != '.' || !isDigits(frac[1:]) || len(frac) > 10 {
			return Opt[TimeOfDay]{}, fmt.Errorf("%w: %q", ErrTime, tok)
		}
		digits := frac[1:]
		ns := 0
		for i := 0; i < 9; i++ {
			ns *= 10
			if i < len(digits) {
				ns += int(digits[i] - '0')
			}
		}
		t.Nanosecond = ns
	}
	if t.Hour > 23 || t.Minute > 59 || t.Second > 59 {
		return Opt[TimeOfDay]{}, fmt.Errorf("%w: %q out of range", ErrTime, tok)
	}
	return Some(t), nil
}

// DecodeDate decodes DDMMYY. Two-digit years pivot on YearPivot.
func DecodeDate(tok string) (Opt[Date], error) {
	if tok == "" {
		return Opt[Date]{}, nil
	}
	if len(tok) != 6 || !isDigits(tok) {
		return Opt[Date]{}, fmt.Errorf("%w: %q", ErrDate, tok)
	}
	yy := atoi2(tok[4:6])
	year := 2000 + yy
	if yy >= YearPivot {
		year = 1900 + yy
	}
	return makeDate(year, atoi2(tok[2:4]), atoi2(tok[0:2]))
}

func makeDate(year, month, day int) (Opt[Date], error) {
	if month < 1 || month > 12 || day < 1 {
		return Opt[Date]{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrDate, year, month, day)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return Opt[Date]{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrDate, year, month, day)
	}
	return Some(Date{Year: year, Month: time.Month(month), Day: day}), nil
}

// DecodeChar decodes a single code letter that must be one of valid.
func DecodeChar(tok, valid string) (Opt[byte], error) {
	if tok == "" {
		return Opt[byte]{}, nil
	}
	if len(tok) != 1 || strings.IndexByte(valid, tok[0]) < 0 {
		return Opt[byte]{}, fmt.Errorf("%w: %q not in %q", ErrUnknownCode, tok, valid)
	}
	return Some(tok[0]), nil
}

// DecodeText bounds a free-text field to MaxTextLen.
func DecodeText(tok string) (Opt[string], error) {
	if tok == "" {
		return Opt[string]{}, nil
	}
	if len(tok) > MaxTextLen {
		return Opt[string]{}, &CapacityError{What: "text", Limit: MaxTextLen, Got: len(tok)}
	}
	return Some(tok), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isDecimal accepts [sign]digits[.digits] with at least one digit.
func isDecimal(s string, signed bool) bool {
	if signed && s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	digits, dot := 0, false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

func atoi2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}

// fieldReader decodes positional fields of one frame and keeps the first
// failure. Later reads after a failure return absent values.
type fieldReader struct {
	typ SentenceType
	f   *Frame
	err error
}

// newFieldReader fails with ErrMissingFields when the frame has fewer than
// min fields.
func newFieldReader(f *Frame, typ SentenceType, min int) (fieldReader, error) {
	if f.Len() < min {
		return fieldReader{}, &SentenceError{Talker: f.Talker(), Code: f.Code(), Err: ErrMissingFields, Have: f.Len(), Want: min}
	}
	return fieldReader{typ: typ, f: f}, nil
}

func (r *fieldReader) meta() Meta {
	return Meta{Talker: r.f.Talker(), Type: r.typ}
}

func (r *fieldReader) fail(i int, name string, err error) {
	if r.err != nil {
		return
	}
	var ce *CapacityError
	if errors.As(err, &ce) {
		r.err = ce
		return
	}
	r.err = &FieldError{Sentence: r.typ, Index: i, Name: name, Value: r.f.Field(i), Err: err}
}

func (r *fieldReader) float(i int, name string) Opt[float64] {
	v, err := DecodeFloat(r.f.Field(i))
	if err != nil {
		r.fail(i, name, err)
	}
	return v
}

func (r *fieldReader) integer(i int, name string) Opt[int] {
	v, err := DecodeInt(r.f.Field(i))
	if err != nil {
		r.fail(i, name, err)
	}
	return v
}

// intRange decodes an integer and fails when it lies outside [lo, hi].
func (r *fieldReader) intRange(i int, name string, lo, hi int) Opt[int] {
	v := r.integer(i, name)
	if v.Valid && (v.Value < lo || v.Value > hi) {
		r.fail(i, name, fmt.Errorf("%w: %d outside [%d, %d]", ErrNumeric, v.Value, lo, hi))
		return Opt[int]{}
	}
	return v
}

func (r *fieldReader) hex(i int, name string, bits int) Opt[uint32] {
	v, err := DecodeHex(r.f.Field(i), bits)
	if err != nil {
		r.fail(i, name, err)
	}
	return v
}

// lat reads the value at i and the hemisphere at i+1.
func (r *fieldReader) lat(i int) Opt[float64] {
	v, err := DecodeLatitude(r.f.Field(i), r.f.Field(i+1))
	if err != nil {
		r.fail(i, "latitude", err)
	}
	return v
}

// lon reads the value at i and the hemisphere at i+1.
func (r *fieldReader) lon(i int) Opt[float64] {
	v, err := DecodeLongitude(r.f.Field(i), r.f.Field(i+1))
	if err != nil {
		r.fail(i, "longitude", err)
	}
	return v
}

func (r *fieldReader) time(i int, name string) Opt[TimeOfDay] {
	v, err := DecodeTime(r.f.Field(i))
	if err != nil {
		r.fail(i, name, err)
	}
	return v
}

func (r *fieldReader) date(i int, name string) Opt[Date] {
	v, err := DecodeDate(r.f.Field(i))
	if err != nil {
		r.fail(i, name, err)
	}
	return v
}

func (r *fieldReader) char(i int, name, valid string) Opt[byte] {
	v, err := DecodeChar(r.f.Field(i), valid)
	if err != nil {
		r.fail(i, name, err)
	}
	return v
}

// unit checks a unit letter that may be omitted.
func (r *fieldReader) unit(i int, name, want string) {
	r.char(i, name, want)
}

// status decodes an A/V flag; A is true.
func (r *fieldReader) status(i int, name string) Opt[bool] {
	return mapOpt(r.char(i, name, "AV"), func(c byte) bool { return c == 'A' })
}

func (r *fieldReader) faa(i int) Opt[FaaMode] {
	return mapOpt(r.char(i, "mode", faaModeLetters), func(c byte) FaaMode { return FaaMode(c) })
}

func (r *fieldReader) text(i int, name string) Opt[string] {
	v, err := DecodeText(r.f.Field(i))
	if err != nil {
		r.fail(i, name, err)
	}
	return v
}

// done returns s, or the first failure recorded while reading it.
func (r *fieldReader) done(s Sentence) (Sentence, error) {
	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}

// DecodeDuration decodes an elapsed time written as HHMMSS[.ss].
func DecodeDuration(tok string) (Opt[time.Duration], error) {
	if tok == "" {
		return Opt[time.Duration]{}, nil
	}
	if len(tok) < 6 || !isDigits(tok[:6]) || !isDecimal(tok, false) {
		return Opt[time.Duration]{}, fmt.Errorf("%w: %q", ErrTime, tok)
	}
	mins, secs := atoi2(tok[2:4]), tok[4:]
	if mins > 59 {
		return Opt[time.Duration]{}, fmt.Errorf("%w: %q out of range", ErrTime, tok)
	}
	s, err := strconv.ParseFloat(secs, 64)
	if err != nil || s >= 60 {
		return Opt[time.Duration]{}, fmt.Errorf("%w: %q", ErrTime, tok)
	}
	d := time.Duration(atoi2(tok[0:2]))*time.Hour + time.Duration(mins)*time.Minute + time.Duration(s*float64(time.Second))
	return Some(d), nil
}

func (r *fieldReader) duration(i int, name string) Opt[time.Duration] {
	v, err := DecodeDuration(r.f.Field(i))
	if err != nil {
		r.fail(i, name, err)
	}
	return v
}

// required fails when a mandatory field is empty.
func (r *fieldReader) required(i int, name string, v Opt[int]) int {
	if !v.Valid {
		r.fail(i, name, fmt.Errorf("%w: required", ErrNumeric))
	}
	return v.Value
}

// directed reads a magnitude at i and its direction letter at i+1. The neg
// letter flips the sign.
func (r *fieldReader) directed(i int, name string, pos, neg byte) Opt[float64] {
	v := r.float(i, name)
	d := r.char(i+1, name+" direction", string([]byte{pos, neg}))
	if v.Valid && d.Valid && d.Value == neg {
		v.Value = -v.Value
	}
	return v
}

func narrow[T ~int8 | ~uint8 | ~uint16](o Opt[int]) Opt[T] {
	return mapOpt(o, func(v int) T { return T(v) })
}
