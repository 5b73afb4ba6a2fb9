package nmea

// DBK is depth below keel.
type DBK struct {
	Meta
	Feet    Opt[float64]
	Meters  Opt[float64]
	Fathoms Opt[float64]
}

// DBS is depth below surface.
type DBS struct {
	Meta
	Feet    Opt[float64]
	Meters  Opt[float64]
	Fathoms Opt[float64]
}

func (r *fieldReader) depthTriple() (feet, meters, fathoms Opt[float64]) {
	feet = r.float(0, "feet")
	meters = r.float(2, "meters")
	fathoms = r.float(4, "fathoms")
	r.unit(1, "feet units", "f")
	r.unit(3, "meters units", "M")
	r.unit(5, "fathoms units", "F")
	return feet, meters, fathoms
}

func parseDBK(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeDBK, 6)
	if err != nil {
		return nil, err
	}
	s := DBK{Meta: r.meta()}
	s.Feet, s.Meters, s.Fathoms = r.depthTriple()
	return r.done(s)
}

func parseDBS(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeDBS, 6)
	if err != nil {
		return nil, err
	}
	s := DBS{Meta: r.meta()}
	s.Feet, s.Meters, s.Fathoms = r.depthTriple()
	return r.done(s)
}

// DPT is depth of water relative to the transducer.
type DPT struct {
	Meta
	Depth Opt[float64]
	// Offset is positive to the waterline, negative to the keel.
	Offset   Opt[float64]
	MaxRange Opt[float64]
}

// BelowSurface returns depth plus a positive offset.
func (d DPT) BelowSurface() Opt[float64] {
	if !d.Depth.Valid || !d.Offset.Valid || d.Offset.Value < 0 {
		return Opt[float64]{}
	}
	return Some(d.Depth.Value + d.Offset.Value)
}

func parseDPT(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeDPT, 2)
	if err != nil {
		return nil, err
	}
	s := DPT{
		Meta:     r.meta(),
		Depth:    r.float(0, "depth"),
		Offset:   r.float(1, "offset"),
		MaxRange: r.float(2, "max range"),
	}
	return r.done(s)
}
