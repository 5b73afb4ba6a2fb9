package nmea

// GGA is the GPS fix data sentence.
type GGA struct {
	Meta
	Time       Opt[TimeOfDay]
	Latitude   Opt[float64]
	Longitude  Opt[float64]
	Quality    Opt[FixQuality]
	Satellites Opt[int]
	HDOP       Opt[float64]
	// Altitude is metres above mean sea level.
	Altitude        Opt[float64]
	GeoidSeparation Opt[float64]
	DGPSAge         Opt[float64]
	DGPSStation     Opt[int]
}

func parseGGA(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeGGA, 12)
	if err != nil {
		return nil, err
	}
	s := GGA{
		Meta:            r.meta(),
		Time:            r.time(0, "time"),
		Latitude:        r.lat(1),
		Longitude:       r.lon(3),
		Quality:         mapOpt(r.intRange(5, "quality", 0, 8), func(v int) FixQuality { return FixQuality(v) }),
		Satellites:      r.intRange(6, "satellites", 0, 99),
		HDOP:            r.float(7, "hdop"),
		Altitude:        r.float(8, "altitude"),
		GeoidSeparation: r.float(10, "geoid separation"),
		DGPSAge:         r.float(12, "dgps age"),
		DGPSStation:     r.intRange(13, "dgps station", 0, 1023),
	}
	r.unit(9, "altitude units", "M")
	r.unit(11, "geoid units", "M")
	return r.done(s)
}

// RMC is the recommended minimum navigation sentence.
type RMC struct {
	Meta
	Time Opt[TimeOfDay]
	// Valid is the A/V status flag.
	Valid      Opt[bool]
	Latitude   Opt[float64]
	Longitude  Opt[float64]
	SpeedKnots Opt[float64]
	// Course is degrees true.
	Course Opt[float64]
	Date   Opt[Date]
	// MagneticVariation is degrees, east positive.
	MagneticVariation Opt[float64]
	Mode              Opt[FaaMode]
	// NavStatus is the NMEA 4.1 safety letter (S, C, U or V).
	NavStatus Opt[byte]
}

func parseRMC(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeRMC, 11)
	if err != nil {
		return nil, err
	}
	s := RMC{
		Meta:              r.meta(),
		Time:              r.time(0, "time"),
		Valid:             r.status(1, "status"),
		Latitude:          r.lat(2),
		Longitude:         r.lon(4),
		SpeedKnots:        r.float(6, "speed"),
		Course:            r.float(7, "course"),
		Date:              r.date(8, "date"),
		MagneticVariation: r.directed(9, "magnetic variation", 'E', 'W'),
		Mode:              r.faa(11),
		NavStatus:         r.char(12, "nav status", "SCUV"),
	}
	return r.done(s)
}

// GLL is the geographic position sentence.
type GLL struct {
	Meta
	Latitude  Opt[float64]
	Longitude Opt[float64]
	Time      Opt[TimeOfDay]
	Valid     Opt[bool]
	Mode      Opt[FaaMode]
}

func parseGLL(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeGLL, 6)
	if err != nil {
		return nil, err
	}
	s := GLL{
		Meta:      r.meta(),
		Latitude:  r.lat(0),
		Longitude: r.lon(2),
		Time:      r.time(4, "time"),
		Valid:     r.status(5, "status"),
		Mode:      r.faa(6),
	}
	return r.done(s)
}

// MaxGNSModes bounds the per-constellation mode letters of GNS.
const MaxGNSModes = 8

// GNS is the multi-constellation fix data sentence.
type GNS struct {
	Meta
	Time      Opt[TimeOfDay]
	Latitude  Opt[float64]
	Longitude Opt[float64]
	// Modes holds one FAA letter per constellation, GPS first.
	Modes           Opt[string]
	Satellites      Opt[int]
	HDOP            Opt[float64]
	Altitude        Opt[float64]
	GeoidSeparation Opt[float64]
	DGPSAge         Opt[float64]
	DGPSStation     Opt[int]
	NavStatus       Opt[byte]
}

// Mode returns the first constellation's mode.
func (g GNS) Mode() Opt[FaaMode] {
	if !g.Modes.Valid {
		return Opt[FaaMode]{}
	}
	return Some(FaaMode(g.Modes.Value[0]))
}

func parseGNS(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeGNS, 12)
	if err != nil {
		return nil, err
	}
	s := GNS{
		Meta:            r.meta(),
		Time:            r.time(0, "time"),
		Latitude:        r.lat(1),
		Longitude:       r.lon(3),
		Modes:           r.modes(5),
		Satellites:      r.intRange(6, "satellites", 0, 99),
		HDOP:            r.float(7, "hdop"),
		Altitude:        r.float(8, "altitude"),
		GeoidSeparation: r.float(9, "geoid separation"),
		DGPSAge:         r.float(10, "dgps age"),
		DGPSStation:     r.intRange(11, "dgps station", 0, 1023),
		NavStatus:       r.char(12, "nav status", "SCUV"),
	}
	return r.done(s)
}

func (r *fieldReader) modes(i int) Opt[string] {
	tok := r.f.Field(i)
	if tok == "" {
		return Opt[string]{}
	}
	if len(tok) > MaxGNSModes {
		r.fail(i, "mode", &CapacityError{What: "gns modes", Limit: MaxGNSModes, Got: len(tok)})
		return Opt[string]{}
	}
	for j := 0; j < len(tok); j++ {
		if _, err := DecodeChar(tok[j:j+1], faaModeLetters); err != nil {
			r.fail(i, "mode", err)
			return Opt[string]{}
		}
	}
	return Some(tok)
}

// VTG is the track made good and ground speed sentence.
type VTG struct {
	Meta
	CourseTrue     Opt[float64]
	CourseMagnetic Opt[float64]
	SpeedKnots     Opt[float64]
	SpeedKPH       Opt[float64]
	Mode           Opt[FaaMode]
}

func parseVTG(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeVTG, 8)
	if err != nil {
		return nil, err
	}
	s := VTG{
		Meta:           r.meta(),
		CourseTrue:     r.float(0, "course true"),
		CourseMagnetic: r.float(2, "course magnetic"),
		SpeedKnots:     r.float(4, "speed knots"),
		SpeedKPH:       r.float(6, "speed kph"),
		Mode:           r.faa(8),
	}
	r.unit(1, "course true ref", "T")
	r.unit(3, "course magnetic ref", "M")
	r.unit(5, "speed knots units", "N")
	r.unit(7, "speed kph units", "K")
	return r.done(s)
}

// ZDA is the time and date sentence.
type ZDA struct {
	Meta
	Time Opt[TimeOfDay]
	Date Opt[Date]
	// Local zone offset; minutes carry the sign of hours.
	ZoneHours   Opt[int]
	ZoneMinutes Opt[int]
}

func parseZDA(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeZDA, 6)
	if err != nil {
		return nil, err
	}
	s := ZDA{
		Meta:        r.meta(),
		Time:        r.time(0, "time"),
		ZoneHours:   r.intRange(4, "zone hours", -13, 13),
		ZoneMinutes: r.intRange(5, "zone minutes", 0, 59),
	}
	day := r.intRange(1, "day", 1, 31)
	month := r.intRange(2, "month", 1, 12)
	year := r.intRange(3, "year", 1000, 9999)
	switch {
	case day.Valid && month.Valid && year.Valid:
		d, err := makeDate(year.Value, month.Value, day.Value)
		if err != nil {
			r.fail(1, "date", err)
		}
		s.Date = d
	case day.Valid || month.Valid || year.Valid:
		r.fail(1, "date", ErrDate)
	}
	return r.done(s)
}

// GST is the pseudorange error statistics sentence. Deviations are metres.
type GST struct {
	Meta
	Time           Opt[TimeOfDay]
	RMS            Opt[float64]
	SemiMajor      Opt[float64]
	SemiMinor      Opt[float64]
	Orientation    Opt[float64]
	LatitudeSigma  Opt[float64]
	LongitudeSigma Opt[float64]
	AltitudeSigma  Opt[float64]
}

func parseGST(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeGST, 8)
	if err != nil {
		return nil, err
	}
	s := GST{
		Meta:           r.meta(),
		Time:           r.time(0, "time"),
		RMS:            r.float(1, "rms"),
		SemiMajor:      r.float(2, "semi-major"),
		SemiMinor:      r.float(3, "semi-minor"),
		Orientation:    r.float(4, "orientation"),
		LatitudeSigma:  r.float(5, "latitude sigma"),
		LongitudeSigma: r.float(6, "longitude sigma"),
		AltitudeSigma:  r.float(7, "altitude sigma"),
	}
	return r.done(s)
}

// GBS is the satellite fault detection sentence.
type GBS struct {
	Meta
	Time              Opt[TimeOfDay]
	LatitudeError     Opt[float64]
	LongitudeError    Opt[float64]
	AltitudeError     Opt[float64]
	FailedSatellite   Opt[int]
	MissedProbability Opt[float64]
	Bias              Opt[float64]
	BiasSigma         Opt[float64]
	SystemID          Opt[uint32]
	SignalID          Opt[uint32]
}

func parseGBS(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeGBS, 8)
	if err != nil {
		return nil, err
	}
	s := GBS{
		Meta:              r.meta(),
		Time:              r.time(0, "time"),
		LatitudeError:     r.float(1, "latitude error"),
		LongitudeError:    r.float(2, "longitude error"),
		AltitudeError:     r.float(3, "altitude error"),
		FailedSatellite:   r.intRange(4, "failed satellite", 1, 999),
		MissedProbability: r.float(5, "missed probability"),
		Bias:              r.float(6, "bias"),
		BiasSigma:         r.float(7, "bias sigma"),
		SystemID:          r.hex(8, "system id", 4),
		SignalID:          r.hex(9, "signal id", 4),
	}
	return r.done(s)
}
