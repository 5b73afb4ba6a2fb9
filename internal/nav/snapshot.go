package nav

import (
	"time"

	"nmeafix/internal/nmea"
)

// Snapshot is the merged navigation state. Every member keeps the last value
// any sentence supplied for it.
type Snapshot struct {
	Time              nmea.Opt[nmea.TimeOfDay]
	Date              nmea.Opt[nmea.Date]
	Latitude          nmea.Opt[float64]
	Longitude         nmea.Opt[float64]
	Altitude          nmea.Opt[float64]
	GeoidSeparation   nmea.Opt[float64]
	SpeedKnots        nmea.Opt[float64]
	Course            nmea.Opt[float64]
	MagneticVariation nmea.Opt[float64]
	Heading           nmea.Opt[float64]

	FixQuality nmea.Opt[nmea.FixQuality]
	FixMode    nmea.Opt[nmea.FixMode]
	// FixValid is the A/V status of RMC and GLL.
	FixValid       nmea.Opt[bool]
	Mode           nmea.Opt[nmea.FaaMode]
	SatellitesUsed nmea.Opt[int]
	FixPRNs        PRNList
	HDOP           nmea.Opt[float64]
	VDOP           nmea.Opt[float64]
	PDOP           nmea.Opt[float64]

	InViewCount nmea.Opt[int]
	// SatellitesInView is the most recently completed GSV group of any
	// constellation.
	SatellitesInView SatelliteList

	BaroAltitudeFeet nmea.Opt[int]
	Text             nmea.Opt[string]

	systems [nmea.SystemCount]SatelliteList
}

// Timestamp combines Date and Time.
func (s *Snapshot) Timestamp() (time.Time, bool) {
	if !s.Date.Valid || !s.Time.Valid {
		return time.Time{}, false
	}
	return s.Date.Value.At(s.Time.Value), true
}

// EllipsoidAltitude is Altitude plus GeoidSeparation.
func (s *Snapshot) EllipsoidAltitude() nmea.Opt[float64] {
	if !s.Altitude.Valid || !s.GeoidSeparation.Valid {
		return nmea.Opt[float64]{}
	}
	return nmea.Some(s.Altitude.Value + s.GeoidSeparation.Value)
}

// HasPosition reports whether a position is known and the last quality or
// status seen did not mark it invalid.
func (s *Snapshot) HasPosition() bool {
	if !s.Latitude.Valid || !s.Longitude.Valid {
		return false
	}
	if s.FixQuality.Valid && !s.FixQuality.Value.HasFix() {
		return false
	}
	if s.FixValid.Valid && !s.FixValid.Value {
		return false
	}
	return true
}

func merge[T any](dst *nmea.Opt[T], src nmea.Opt[T]) {
	if src.Valid {
		*dst = src
	}
}
