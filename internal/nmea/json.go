package nmea

import "encoding/json"

// JSON encodings used by the debug API. Absent values encode as null and
// enums as their names.

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (t SentenceType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (s System) MarshalText() ([]byte, error)       { return []byte(s.String()), nil }
func (q FixQuality) MarshalText() ([]byte, error)   { return []byte(q.String()), nil }
func (m FixMode) MarshalText() ([]byte, error)      { return []byte(m.String()), nil }
func (m FaaMode) MarshalText() ([]byte, error)      { return []byte(m.String()), nil }
func (t TimeOfDay) MarshalText() ([]byte, error)    { return []byte(t.String()), nil }
func (d Date) MarshalText() ([]byte, error)         { return []byte(d.String()), nil }
