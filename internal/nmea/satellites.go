package nmea

import (
	"fmt"
	"time"
)

const (
	// MaxFixPRNs is the number of PRN slots in GSA.
	MaxFixPRNs = 12
	// SatellitesPerPage is the number of satellite blocks in one GSV.
	SatellitesPerPage = 4
	// MaxGSVPages bounds the page count of a GSV group.
	MaxGSVPages = 9
)

// FixMode is the GSA 2D/3D indicator.
type FixMode uint8

const (
	FixModeNone FixMode = 1
	FixMode2D   FixMode = 2
	FixMode3D   FixMode = 3
)

func (m FixMode) String() string {
	switch m {
	case FixModeNone:
		return "none"
	case FixMode2D:
		return "2d"
	case FixMode3D:
		return "3d"
	}
	return "unknown"
}

// GSA is the DOP and active satellites sentence.
type GSA struct {
	Meta
	// Selection is 'A' (automatic) or 'M' (manual).
	Selection Opt[byte]
	FixMode   Opt[FixMode]
	PRNs      [MaxFixPRNs]uint16
	NumPRNs   int
	PDOP      Opt[float64]
	HDOP      Opt[float64]
	VDOP      Opt[float64]
	SystemID  Opt[uint32]
}

// UsedPRNs returns the PRNs used in the fix.
func (g *GSA) UsedPRNs() []uint16 { return g.PRNs[:g.NumPRNs] }

func parseGSA(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeGSA, 17)
	if err != nil {
		return nil, err
	}
	s := GSA{
		Meta:      r.meta(),
		Selection: r.char(0, "selection", "AM"),
		FixMode:   mapOpt(r.intRange(1, "fix mode", 1, 3), func(v int) FixMode { return FixMode(v) }),
	}
	// Some receivers list more than 12 PRNs; the DOPs stay the last three
	// fields then.
	dop := 14
	if f.Len() > 18 {
		dop = f.Len() - 3
	} else {
		s.SystemID = r.hex(17, "system id", 4)
	}
	for i := 2; i < dop; i++ {
		prn := r.intRange(i, "prn", 1, 999)
		if !prn.Valid {
			continue
		}
		if s.NumPRNs == MaxFixPRNs {
			r.fail(i, "prn", &CapacityError{What: "gsa prns", Limit: MaxFixPRNs, Got: s.NumPRNs + 1})
			break
		}
		s.PRNs[s.NumPRNs] = uint16(prn.Value)
		s.NumPRNs++
	}
	s.PDOP = r.float(dop, "pdop")
	s.HDOP = r.float(dop+1, "hdop")
	s.VDOP = r.float(dop+2, "vdop")
	return r.done(s)
}

// Satellite is one GSV block. Every member may be empty on the wire.
type Satellite struct {
	System    System
	PRN       Opt[uint16]
	Elevation Opt[int8]
	Azimuth   Opt[uint16]
	SNR       Opt[uint8]
}

// GSV is one page of the satellites-in-view group.
type GSV struct {
	Meta
	Pages    int
	Page     int
	InView   Opt[int]
	Sats     [SatellitesPerPage]Satellite
	NumSats  int
	SignalID Opt[uint32]
}

// Satellites returns the blocks carried by this page.
func (g *GSV) Satellites() []Satellite { return g.Sats[:g.NumSats] }

func parseGSV(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeGSV, 3)
	if err != nil {
		return nil, err
	}
	rest := f.Len() - 3
	if rest%4 == 2 || rest%4 == 3 {
		want := 3 + (rest/4+1)*4
		return nil, &SentenceError{Talker: f.Talker(), Code: f.Code(), Err: ErrMissingFields, Have: f.Len(), Want: want}
	}
	if blocks := rest / 4; blocks > SatellitesPerPage {
		return nil, &CapacityError{What: "gsv satellites", Limit: SatellitesPerPage, Got: blocks}
	}
	pages := r.required(0, "pages", r.intRange(0, "pages", 1, 99))
	if pages > MaxGSVPages {
		return nil, &CapacityError{What: "gsv pages", Limit: MaxGSVPages, Got: pages}
	}
	s := GSV{
		Meta:   r.meta(),
		Pages:  pages,
		Page:   r.required(1, "page", r.intRange(1, "page", 1, MaxGSVPages)),
		InView: r.intRange(2, "in view", 0, 99),
	}
	if r.err == nil && s.Page > s.Pages {
		r.fail(1, "page", fmt.Errorf("%w: page %d of %d", ErrNumeric, s.Page, s.Pages))
	}
	sys := SystemFromTalker(f.Talker())
	for b := 0; b < rest/4; b++ {
		i := 3 + b*4
		sat := Satellite{
			System:    sys,
			PRN:       narrow[uint16](r.intRange(i, "prn", 1, 999)),
			Elevation: narrow[int8](r.intRange(i+1, "elevation", -90, 90)),
			Azimuth:   narrow[uint16](r.intRange(i+2, "azimuth", 0, 360)),
			SNR:       narrow[uint8](r.intRange(i+3, "snr", 0, 99)),
		}
		if !sat.PRN.Valid && !sat.Elevation.Valid && !sat.Azimuth.Valid && !sat.SNR.Valid {
			continue
		}
		s.Sats[s.NumSats] = sat
		s.NumSats++
	}
	if rest%4 == 1 {
		s.SignalID = r.hex(f.Len()-1, "signal id", 4)
	}
	return r.done(s)
}

// ALM is one GPS almanac page. Orbital terms are raw hex words.
type ALM struct {
	Meta
	Total  int
	Number int
	PRN    Opt[int]
	// Week is the GPS week as transmitted, usually modulo 1024.
	Week           Opt[int]
	Health         Opt[uint32]
	Eccentricity   Opt[uint32]
	ReferenceTime  Opt[uint32]
	Inclination    Opt[uint32]
	RightAscension Opt[uint32]
	SqrtSemiMajor  Opt[uint32]
	Perigee        Opt[uint32]
	AscendingNode  Opt[uint32]
	MeanAnomaly    Opt[uint32]
	ClockBias      Opt[uint32]
	ClockDrift     Opt[uint32]
}

func parseALM(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeALM, 15)
	if err != nil {
		return nil, err
	}
	s := ALM{
		Meta:           r.meta(),
		Total:          r.required(0, "total", r.intRange(0, "total", 1, 99)),
		Number:         r.required(1, "number", r.intRange(1, "number", 1, 99)),
		PRN:            r.intRange(2, "prn", 1, 99),
		Week:           r.intRange(3, "week", 0, 9999),
		Health:         r.hex(4, "health", 8),
		Eccentricity:   r.hex(5, "eccentricity", 16),
		ReferenceTime:  r.hex(6, "reference time", 8),
		Inclination:    r.hex(7, "inclination", 16),
		RightAscension: r.hex(8, "right ascension rate", 16),
		SqrtSemiMajor:  r.hex(9, "sqrt semi-major axis", 24),
		Perigee:        r.hex(10, "argument of perigee", 24),
		AscendingNode:  r.hex(11, "ascending node", 24),
		MeanAnomaly:    r.hex(12, "mean anomaly", 24),
		ClockBias:      r.hex(13, "af0", 11),
		ClockDrift:     r.hex(14, "af1", 11),
	}
	return r.done(s)
}

var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// FullWeek resolves a 10-bit week against now, taking the most recent
// rollover that does not put the week in the future. Weeks already past 1023
// are returned unchanged.
func (a ALM) FullWeek(now time.Time) Opt[int] {
	if !a.Week.Valid || now.Before(gpsEpoch) {
		return Opt[int]{}
	}
	current := int(now.Sub(gpsEpoch) / (7 * 24 * time.Hour))
	if a.Week.Value >= 1024 || current < a.Week.Value {
		return Some(a.Week.Value)
	}
	return Some(a.Week.Value + (current-a.Week.Value)/1024*1024)
}
