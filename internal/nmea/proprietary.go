package nmea

// RMZ is the Garmin PGRMZ altitude sentence.
type RMZ struct {
	Meta
	AltitudeFeet Opt[int]
	// FixType is 1 (none), 2 (2D) or 3 (3D).
	FixType Opt[FixMode]
}

// AltitudeMeters converts AltitudeFeet.
func (z RMZ) AltitudeMeters() Opt[float64] {
	return mapOpt(z.AltitudeFeet, func(ft int) float64 { return float64(ft) * 0.3048 })
}

func parseRMZ(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeRMZ, 3)
	if err != nil {
		return nil, err
	}
	s := RMZ{
		Meta:         r.meta(),
		AltitudeFeet: r.integer(0, "altitude"),
		FixType:      mapOpt(r.intRange(2, "fix type", 1, 3), func(v int) FixMode { return FixMode(v) }),
	}
	r.unit(1, "altitude units", "f")
	return r.done(s)
}
