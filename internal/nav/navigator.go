package nav

import (
	"errors"
	"fmt"

	"nmeafix/internal/nmea"
)

var ErrEmptyNavConfig = errors.New("nav: no sentence types required")

// Navigator parses lines and folds them into a Snapshot.
type Navigator struct {
	parser *nmea.Parser
	snap   Snapshot
	groups [nmea.SystemCount]pageGroup

	required nmea.Capabilities
	seen     nmea.Capabilities
	epoch    nmea.Opt[nmea.TimeOfDay]
}

// New returns a Navigator that accepts the sentence types in caps.
func New(caps nmea.Capabilities) *Navigator {
	return &Navigator{parser: nmea.NewParser(caps)}
}

// NewForNavigation returns a Navigator that accepts only the required types
// and reports Ready once all of them arrived for the same fix time.
func NewForNavigation(required nmea.Capabilities) (*Navigator, error) {
	if required.Empty() {
		return nil, ErrEmptyNavConfig
	}
	if extra := required &^ nmea.CapNavigation; extra != 0 {
		return nil, fmt.Errorf("nav: %v do not contribute to a fix", extra)
	}
	n := New(required)
	n.required = required
	return n, nil
}

func (n *Navigator) Capabilities() nmea.Capabilities { return n.parser.Capabilities() }

// Parse decodes line and folds it. On error the snapshot is unchanged.
func (n *Navigator) Parse(line string) (nmea.Sentence, error) {
	s, err := n.parser.Parse(line)
	if err != nil {
		return nil, err
	}
	if err := n.Apply(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply folds an already decoded sentence. Types that carry no navigation
// data are accepted and ignored.
func (n *Navigator) Apply(s nmea.Sentence) error {
	if n.required != 0 && n.invalidFix(s) {
		n.clearPosition()
		return nil
	}
	snap := &n.snap
	var at nmea.Opt[nmea.TimeOfDay]
	switch v := s.(type) {
	case nmea.GGA:
		at = v.Time
		merge(&snap.Time, v.Time)
		merge(&snap.Latitude, v.Latitude)
		merge(&snap.Longitude, v.Longitude)
		merge(&snap.FixQuality, v.Quality)
		merge(&snap.SatellitesUsed, v.Satellites)
		merge(&snap.HDOP, v.HDOP)
		merge(&snap.Altitude, v.Altitude)
		merge(&snap.GeoidSeparation, v.GeoidSeparation)
	case nmea.RMC:
		at = v.Time
		merge(&snap.Time, v.Time)
		merge(&snap.FixValid, v.Valid)
		merge(&snap.Latitude, v.Latitude)
		merge(&snap.Longitude, v.Longitude)
		merge(&snap.SpeedKnots, v.SpeedKnots)
		merge(&snap.Course, v.Course)
		merge(&snap.Date, v.Date)
		merge(&snap.MagneticVariation, v.MagneticVariation)
		merge(&snap.Mode, v.Mode)
	case nmea.GLL:
		at = v.Time
		merge(&snap.Latitude, v.Latitude)
		merge(&snap.Longitude, v.Longitude)
		merge(&snap.Time, v.Time)
		merge(&snap.FixValid, v.Valid)
		merge(&snap.Mode, v.Mode)
	case nmea.GNS:
		at = v.Time
		merge(&snap.Time, v.Time)
		merge(&snap.Latitude, v.Latitude)
		merge(&snap.Longitude, v.Longitude)
		merge(&snap.Mode, v.Mode())
		merge(&snap.SatellitesUsed, v.Satellites)
		merge(&snap.HDOP, v.HDOP)
		merge(&snap.Altitude, v.Altitude)
		merge(&snap.GeoidSeparation, v.GeoidSeparation)
	case nmea.VTG:
		speed := v.SpeedKnots
		if !speed.Valid && v.SpeedKPH.Valid {
			speed = nmea.Some(v.SpeedKPH.Value / 1.852)
		}
		merge(&snap.Course, v.CourseTrue)
		merge(&snap.SpeedKnots, speed)
		merge(&snap.Mode, v.Mode)
	case nmea.GSA:
		merge(&snap.FixMode, v.FixMode)
		if v.NumPRNs > 0 {
			copy(snap.FixPRNs.prns[:], v.UsedPRNs())
			snap.FixPRNs.n = v.NumPRNs
		}
		merge(&snap.PDOP, v.PDOP)
		merge(&snap.HDOP, v.HDOP)
		merge(&snap.VDOP, v.VDOP)
	case nmea.GSV:
		if err := n.applyGSV(&v); err != nil {
			return err
		}
	case nmea.ZDA:
		at = v.Time
		merge(&snap.Time, v.Time)
		merge(&snap.Date, v.Date)
	case nmea.HDT:
		merge(&snap.Heading, v.Heading)
	case nmea.TXT:
		merge(&snap.Text, v.Text)
	case nmea.RMZ:
		merge(&snap.BaroAltitudeFeet, v.AltitudeFeet)
	}
	n.markSeen(s.Kind(), at)
	return nil
}

// invalidFix reports whether s declares the current fix unusable. VTG counts
// only when it is required.
func (n *Navigator) invalidFix(s nmea.Sentence) bool {
	switch v := s.(type) {
	case nmea.GGA:
		return !v.Quality.Valid || v.Quality.Value == nmea.FixInvalid
	case nmea.RMC:
		return !v.Valid.Valid || !v.Valid.Value
	case nmea.GNS:
		m := v.Mode()
		return !m.Valid || !m.Value.Valid()
	case nmea.VTG:
		return n.required.Has(nmea.TypeVTG) &&
			(!v.CourseTrue.Valid || (!v.SpeedKnots.Valid && !v.SpeedKPH.Valid))
	}
	return false
}

// clearPosition drops everything but the satellites in view and restarts the
// readiness round.
func (n *Navigator) clearPosition() {
	old := n.snap
	n.snap = Snapshot{
		InViewCount:      old.InViewCount,
		SatellitesInView: old.SatellitesInView,
		systems:          old.systems,
	}
	n.seen = 0
	n.epoch = nmea.Opt[nmea.TimeOfDay]{}
}

// markSeen tracks which required types arrived since the fix time last
// changed.
func (n *Navigator) markSeen(t nmea.SentenceType, at nmea.Opt[nmea.TimeOfDay]) {
	if n.required == 0 {
		return
	}
	if at.Valid && at != n.epoch {
		n.epoch = at
		n.seen = 0
	}
	n.seen = n.seen.With(t)
}

// Ready reports whether every required type arrived with a valid fix for the
// current fix time. An invalid GGA, RMC or GNS (or an incomplete required VTG)
// clears the position and starts over. It is always false for a Navigator
// built with New.
func (n *Navigator) Ready() bool {
	return n.required != 0 && n.seen.Contains(n.required)
}

// Snapshot returns a copy of the current state.
func (n *Navigator) Snapshot() Snapshot { return n.snap }

// Reset clears the snapshot and any partial GSV groups.
func (n *Navigator) Reset() {
	n.snap = Snapshot{}
	n.groups = [nmea.SystemCount]pageGroup{}
	n.seen = 0
	n.epoch = nmea.Opt[nmea.TimeOfDay]{}
}
