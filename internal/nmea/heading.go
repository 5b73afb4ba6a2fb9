package nmea

// HDT is the true heading sentence.
type HDT struct {
	Meta
	Heading Opt[float64]
}

func parseHDT(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeHDT, 2)
	if err != nil {
		return nil, err
	}
	s := HDT{Meta: r.meta(), Heading: r.float(0, "heading")}
	r.unit(1, "heading ref", "T")
	return r.done(s)
}

// VHW is water speed and heading.
type VHW struct {
	Meta
	HeadingTrue     Opt[float64]
	HeadingMagnetic Opt[float64]
	SpeedKnots      Opt[float64]
	SpeedKPH        Opt[float64]
}

func parseVHW(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeVHW, 8)
	if err != nil {
		return nil, err
	}
	s := VHW{
		Meta:            r.meta(),
		HeadingTrue:     r.float(0, "heading true"),
		HeadingMagnetic: r.float(2, "heading magnetic"),
		SpeedKnots:      r.float(4, "speed knots"),
		SpeedKPH:        r.float(6, "speed kph"),
	}
	r.unit(1, "heading true ref", "T")
	r.unit(3, "heading magnetic ref", "M")
	r.unit(5, "speed knots units", "N")
	r.unit(7, "speed kph units", "K")
	return r.done(s)
}
