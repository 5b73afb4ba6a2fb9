package nmea

// TargetStatus is the TTM tracking state letter.
type TargetStatus byte

const (
	TargetLost      TargetStatus = 'L'
	TargetAcquiring TargetStatus = 'Q'
	TargetTracking  TargetStatus = 'T'
)

// TTM is a tracked radar target.
type TTM struct {
	Meta
	Number      Opt[int]
	Distance    Opt[float64]
	Bearing     Opt[float64]
	BearingRef  Opt[byte]
	Speed       Opt[float64]
	Course      Opt[float64]
	CourseRef   Opt[byte]
	CPADistance Opt[float64]
	// CPATime is minutes; negative once the closest point has passed.
	CPATime         Opt[float64]
	Units           Opt[SpeedUnit]
	Name            Opt[string]
	Status          Opt[TargetStatus]
	ReferenceTarget bool
	Time            Opt[TimeOfDay]
	// Acquisition is 'A' (automatic) or 'M' (manual).
	Acquisition Opt[byte]
}

func parseTTM(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeTTM, 13)
	if err != nil {
		return nil, err
	}
	s := TTM{
		Meta:            r.meta(),
		Number:          r.intRange(0, "target number", 0, 99),
		Distance:        r.float(1, "distance"),
		Bearing:         r.float(2, "bearing"),
		BearingRef:      r.char(3, "bearing reference", "TR"),
		Speed:           r.float(4, "speed"),
		Course:          r.float(5, "course"),
		CourseRef:       r.char(6, "course reference", "TR"),
		CPADistance:     r.float(7, "cpa distance"),
		CPATime:         r.float(8, "cpa time"),
		Units:           mapOpt(r.char(9, "units", "KNS"), func(c byte) SpeedUnit { return SpeedUnit(c) }),
		Name:            r.text(10, "name"),
		Status:          mapOpt(r.char(11, "status", "LQT"), func(c byte) TargetStatus { return TargetStatus(c) }),
		ReferenceTarget: r.char(12, "reference target", "R").Valid,
		Time:            r.time(13, "time"),
		Acquisition:     r.char(14, "acquisition", "AM"),
	}
	return r.done(s)
}
