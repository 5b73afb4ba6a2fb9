package nav

import (
	"sort"

	"nmeafix/internal/nmea"
)

// MaxSatellites bounds one satellites-in-view group.
const MaxSatellites = nmea.MaxGSVPages * nmea.SatellitesPerPage

// SatelliteList is a fixed-capacity list of satellites.
type SatelliteList struct {
	sats [MaxSatellites]nmea.Satellite
	n    int
}

func (l SatelliteList) Len() int { return l.n }

// All returns the satellites in arrival order.
func (l SatelliteList) All() []nmea.Satellite { return l.sats[:l.n] }

func (l *SatelliteList) push(s nmea.Satellite) error {
	if l.n == MaxSatellites {
		return &nmea.CapacityError{What: "satellites in view", Limit: MaxSatellites, Got: l.n + 1}
	}
	l.sats[l.n] = s
	l.n++
	return nil
}

// PRNList holds the satellites used in the fix.
type PRNList struct {
	prns [nmea.MaxFixPRNs]uint16
	n    int
}

func (l PRNList) Len() int { return l.n }

func (l PRNList) All() []uint16 { return l.prns[:l.n] }

// pageGroup accumulates the GSV pages of one constellation. A group that did
// not start at page 1 is tracked to its end but never published.
type pageGroup struct {
	active    bool
	total     int
	last      int
	fromStart bool
	buf       SatelliteList
}

func (n *Navigator) applyGSV(g *nmea.GSV) error {
	if g.Pages > nmea.MaxGSVPages {
		return &nmea.CapacityError{What: "gsv pages", Limit: nmea.MaxGSVPages, Got: g.Pages}
	}
	if g.Pages < 1 || g.Page < 1 || g.Page > g.Pages {
		return &nmea.FieldError{Sentence: nmea.TypeGSV, Index: 1, Name: "page", Err: nmea.ErrNumeric}
	}
	sys := nmea.SystemFromTalker(g.Talker)
	grp := n.groups[sys]
	switch {
	case g.Page == 1:
		grp = pageGroup{active: true, total: g.Pages, fromStart: true}
	case grp.active && grp.total == g.Pages && g.Page == grp.last+1:
	default:
		grp = pageGroup{active: true, total: g.Pages}
	}
	for _, sat := range g.Satellites() {
		if err := grp.buf.push(sat); err != nil {
			return err
		}
	}
	grp.last = g.Page

	merge(&n.snap.InViewCount, g.InView)
	if g.Page == g.Pages {
		if grp.fromStart {
			n.snap.SatellitesInView = grp.buf
			n.snap.systems[sys] = grp.buf
		}
		grp = pageGroup{}
	}
	n.groups[sys] = grp
	return nil
}

// Satellites merges the latest complete group of every constellation, ordered
// by constellation then PRN.
func (s *Snapshot) Satellites() []nmea.Satellite {
	var out []nmea.Satellite
	for i := range s.systems {
		out = append(out, s.systems[i].All()...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].System != out[j].System {
			return out[i].System < out[j].System
		}
		return out[i].PRN.Value < out[j].PRN.Value
	})
	return out
}

// SystemSatellites returns the latest complete group of one constellation.
func (s *Snapshot) SystemSatellites(sys nmea.System) []nmea.Satellite {
	if sys >= nmea.SystemCount {
		return nil
	}
	return s.systems[sys].All()
}
