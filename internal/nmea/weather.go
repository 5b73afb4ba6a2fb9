package nmea

// MDA is the meteorological composite sentence.
type MDA struct {
	Meta
	PressureInHg     Opt[float64]
	PressureBar      Opt[float64]
	AirTemp          Opt[float64]
	WaterTemp        Opt[float64]
	RelativeHumidity Opt[float64]
	AbsoluteHumidity Opt[float64]
	DewPoint         Opt[float64]
	WindDirTrue      Opt[float64]
	WindDirMagnetic  Opt[float64]
	WindSpeedKnots   Opt[float64]
	WindSpeedMPS     Opt[float64]
}

func parseMDA(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeMDA, 20)
	if err != nil {
		return nil, err
	}
	s := MDA{
		Meta:             r.meta(),
		PressureInHg:     r.float(0, "pressure inhg"),
		PressureBar:      r.float(2, "pressure bar"),
		AirTemp:          r.float(4, "air temperature"),
		WaterTemp:        r.float(6, "water temperature"),
		RelativeHumidity: r.float(8, "relative humidity"),
		AbsoluteHumidity: r.float(9, "absolute humidity"),
		DewPoint:         r.float(10, "dew point"),
		WindDirTrue:      r.float(12, "wind direction true"),
		WindDirMagnetic:  r.float(14, "wind direction magnetic"),
		WindSpeedKnots:   r.float(16, "wind speed knots"),
		WindSpeedMPS:     r.float(18, "wind speed m/s"),
	}
	r.unit(1, "pressure inhg units", "I")
	r.unit(3, "pressure bar units", "B")
	r.unit(5, "air temperature units", "C")
	r.unit(7, "water temperature units", "C")
	r.unit(11, "dew point units", "C")
	r.unit(13, "wind direction true ref", "T")
	r.unit(15, "wind direction magnetic ref", "M")
	r.unit(17, "wind speed knots units", "N")
	r.unit(19, "wind speed m/s units", "M")
	return r.done(s)
}

// MTW is water temperature in degrees Celsius.
type MTW struct {
	Meta
	Temperature Opt[float64]
}

func parseMTW(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeMTW, 2)
	if err != nil {
		return nil, err
	}
	s := MTW{Meta: r.meta(), Temperature: r.float(0, "temperature")}
	r.unit(1, "temperature units", "C")
	return r.done(s)
}

// WindReference is 'R' (relative) or 'T' (theoretical).
type WindReference byte

const (
	WindRelative    WindReference = 'R'
	WindTheoretical WindReference = 'T'
)

// SpeedUnit is the MWV wind speed unit letter.
type SpeedUnit byte

const (
	SpeedKPH   SpeedUnit = 'K'
	SpeedMPS   SpeedUnit = 'M'
	SpeedKnots SpeedUnit = 'N'
	SpeedMPH   SpeedUnit = 'S'
)

// MWV is wind speed and angle.
type MWV struct {
	Meta
	Angle     Opt[float64]
	Reference Opt[WindReference]
	Speed     Opt[float64]
	Unit      Opt[SpeedUnit]
	Valid     Opt[bool]
}

// SpeedMetersPerSecond converts Speed using Unit.
func (m MWV) SpeedMetersPerSecond() Opt[float64] {
	if !m.Speed.Valid || !m.Unit.Valid {
		return Opt[float64]{}
	}
	v := m.Speed.Value
	switch m.Unit.Value {
	case SpeedKPH:
		v /= 3.6
	case SpeedKnots:
		v *= 1852.0 / 3600.0
	case SpeedMPH:
		v *= 1609.344 / 3600.0
	}
	return Some(v)
}

func parseMWV(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeMWV, 5)
	if err != nil {
		return nil, err
	}
	s := MWV{
		Meta:      r.meta(),
		Angle:     r.float(0, "angle"),
		Reference: mapOpt(r.char(1, "reference", "RT"), func(c byte) WindReference { return WindReference(c) }),
		Speed:     r.float(2, "speed"),
		Unit:      mapOpt(r.char(3, "speed units", "KMNS"), func(c byte) SpeedUnit { return SpeedUnit(c) }),
		Valid:     r.status(4, "status"),
	}
	return r.done(s)
}
