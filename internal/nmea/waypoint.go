package nmea

import "time"

// BearingRef is 'M' (magnetic) or 'T' (true).
type BearingRef byte

const (
	BearingMagnetic BearingRef = 'M'
	BearingTrue     BearingRef = 'T'
)

func (r *fieldReader) bearingRef(i int) Opt[BearingRef] {
	return mapOpt(r.char(i, "bearing reference", "MT"), func(c byte) BearingRef { return BearingRef(c) })
}

// AAM is the waypoint arrival alarm sentence.
type AAM struct {
	Meta
	ArrivalEntered  Opt[bool]
	PerpendicularOK Opt[bool]
	// Radius is nautical miles.
	Radius   Opt[float64]
	Waypoint Opt[string]
}

func parseAAM(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeAAM, 5)
	if err != nil {
		return nil, err
	}
	s := AAM{
		Meta:            r.meta(),
		ArrivalEntered:  r.status(0, "arrival"),
		PerpendicularOK: r.status(1, "perpendicular"),
		Radius:          r.float(2, "radius"),
		Waypoint:        r.text(4, "waypoint"),
	}
	r.unit(3, "radius units", "N")
	return r.done(s)
}

// CrossTrack is the autopilot steering block shared by APA and APB.
type CrossTrack struct {
	Status1 Opt[bool]
	Status2 Opt[bool]
	// Error is positive when the correction is to the right.
	Error           Opt[float64]
	Units           Opt[byte]
	ArrivalEntered  Opt[bool]
	PerpendicularOK Opt[bool]
	Bearing         Opt[float64]
	BearingRef      Opt[BearingRef]
	Waypoint        Opt[string]
}

func (r *fieldReader) crossTrack() CrossTrack {
	return CrossTrack{
		Status1:         r.status(0, "status 1"),
		Status2:         r.status(1, "status 2"),
		Error:           r.directed(2, "cross track error", 'R', 'L'),
		Units:           r.char(4, "cross track units", "NK"),
		ArrivalEntered:  r.status(5, "arrival"),
		PerpendicularOK: r.status(6, "perpendicular"),
		Bearing:         r.float(7, "bearing origin to destination"),
		BearingRef:      r.bearingRef(8),
		Waypoint:        r.text(9, "waypoint"),
	}
}

// APA is the autopilot sentence "A".
type APA struct {
	Meta
	CrossTrack
}

func parseAPA(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeAPA, 10)
	if err != nil {
		return nil, err
	}
	return r.done(APA{Meta: r.meta(), CrossTrack: r.crossTrack()})
}

// APB is the autopilot sentence "B".
type APB struct {
	Meta
	CrossTrack
	BearingToDest    Opt[float64]
	BearingToDestRef Opt[BearingRef]
	HeadingToSteer   Opt[float64]
	HeadingRef       Opt[BearingRef]
	Mode             Opt[FaaMode]
}

func parseAPB(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeAPB, 14)
	if err != nil {
		return nil, err
	}
	s := APB{
		Meta:             r.meta(),
		CrossTrack:       r.crossTrack(),
		BearingToDest:    r.float(10, "bearing to destination"),
		BearingToDestRef: r.bearingRef(11),
		HeadingToSteer:   r.float(12, "heading to steer"),
		HeadingRef:       r.bearingRef(13),
		Mode:             r.faa(14),
	}
	return r.done(s)
}

// BOD is the bearing from origin to destination sentence.
type BOD struct {
	Meta
	BearingTrue     Opt[float64]
	BearingMagnetic Opt[float64]
	To              Opt[string]
	From            Opt[string]
}

func parseBOD(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeBOD, 5)
	if err != nil {
		return nil, err
	}
	s := BOD{
		Meta:            r.meta(),
		BearingTrue:     r.float(0, "bearing true"),
		BearingMagnetic: r.float(2, "bearing magnetic"),
		To:              r.text(4, "to waypoint"),
		From:            r.text(5, "from waypoint"),
	}
	r.unit(1, "bearing true ref", "T")
	r.unit(3, "bearing magnetic ref", "M")
	return r.done(s)
}

// BWC is the bearing and distance to waypoint (great circle) sentence.
type BWC struct {
	Meta
	Time            Opt[TimeOfDay]
	Latitude        Opt[float64]
	Longitude       Opt[float64]
	BearingTrue     Opt[float64]
	BearingMagnetic Opt[float64]
	// Distance is nautical miles.
	Distance Opt[float64]
	Waypoint Opt[string]
	Mode     Opt[FaaMode]
}

func parseBWC(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeBWC, 12)
	if err != nil {
		return nil, err
	}
	s := BWC{
		Meta:            r.meta(),
		Time:            r.time(0, "time"),
		Latitude:        r.lat(1),
		Longitude:       r.lon(3),
		BearingTrue:     r.float(5, "bearing true"),
		BearingMagnetic: r.float(7, "bearing magnetic"),
		Distance:        r.float(9, "distance"),
		Waypoint:        r.text(11, "waypoint"),
		Mode:            r.faa(12),
	}
	r.unit(6, "bearing true ref", "T")
	r.unit(8, "bearing magnetic ref", "M")
	r.unit(10, "distance units", "N")
	return r.done(s)
}

// BWW is the bearing waypoint to waypoint sentence.
type BWW struct {
	Meta
	BearingTrue     Opt[float64]
	BearingMagnetic Opt[float64]
	To              Opt[string]
	From            Opt[string]
}

func parseBWW(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeBWW, 6)
	if err != nil {
		return nil, err
	}
	s := BWW{
		Meta:            r.meta(),
		BearingTrue:     r.float(0, "bearing true"),
		BearingMagnetic: r.float(2, "bearing magnetic"),
		To:              r.text(4, "to waypoint"),
		From:            r.text(5, "from waypoint"),
	}
	r.unit(1, "bearing true ref", "T")
	r.unit(3, "bearing magnetic ref", "M")
	return r.done(s)
}

// WNC is the distance waypoint to waypoint sentence.
type WNC struct {
	Meta
	DistanceNM Opt[float64]
	DistanceKM Opt[float64]
	To         Opt[string]
	From       Opt[string]
}

func parseWNC(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeWNC, 6)
	if err != nil {
		return nil, err
	}
	s := WNC{
		Meta:       r.meta(),
		DistanceNM: r.float(0, "distance nm"),
		DistanceKM: r.float(2, "distance km"),
		To:         r.text(4, "to waypoint"),
		From:       r.text(5, "from waypoint"),
	}
	r.unit(1, "distance nm units", "N")
	r.unit(3, "distance km units", "K")
	return r.done(s)
}

// ZFO is the UTC and time from origin waypoint sentence.
type ZFO struct {
	Meta
	Time     Opt[TimeOfDay]
	Elapsed  Opt[time.Duration]
	Waypoint Opt[string]
}

func parseZFO(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeZFO, 3)
	if err != nil {
		return nil, err
	}
	s := ZFO{
		Meta:     r.meta(),
		Time:     r.time(0, "time"),
		Elapsed:  r.duration(1, "elapsed"),
		Waypoint: r.text(2, "waypoint"),
	}
	return r.done(s)
}

// ZTG is the UTC and time to destination waypoint sentence.
type ZTG struct {
	Meta
	Time     Opt[TimeOfDay]
	ToGo     Opt[time.Duration]
	Waypoint Opt[string]
}

func parseZTG(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeZTG, 3)
	if err != nil {
		return nil, err
	}
	s := ZTG{
		Meta:     r.meta(),
		Time:     r.time(0, "time"),
		ToGo:     r.duration(1, "time to go"),
		Waypoint: r.text(2, "waypoint"),
	}
	return r.done(s)
}
