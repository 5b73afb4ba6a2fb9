package gps

import (
	"math"

	"nmeafix/internal/nav"
	"nmeafix/internal/nmea"
)

const feetPerMeter = 3.28084

// Snapshot is the JSON view of the service state. Optional values are
// pointers so absent data is omitted rather than reported as zero.
type Snapshot struct {
	Enabled bool `json:"enabled"`
	Valid   bool `json:"valid"`

	Source string `json:"source,omitempty"`
	Device string `json:"device,omitempty"`
	Baud   int    `json:"baud,omitempty"`

	LatDeg       *float64 `json:"lat_deg,omitempty"`
	LonDeg       *float64 `json:"lon_deg,omitempty"`
	AltMeters    *float64 `json:"alt_m,omitempty"`
	AltFeet      *int     `json:"alt_feet,omitempty"`
	GeoidSepM    *float64 `json:"geoid_sep_m,omitempty"`
	BaroAltFeet  *int     `json:"baro_alt_feet,omitempty"`
	GroundKt     *float64 `json:"ground_kt,omitempty"`
	TrackDeg     *float64 `json:"track_deg,omitempty"`
	HeadingDeg   *float64 `json:"heading_deg,omitempty"`
	MagVarDeg    *float64 `json:"mag_var_deg,omitempty"`
	FixQuality   string   `json:"fix_quality,omitempty"`
	FixMode      string   `json:"fix_mode,omitempty"`
	FaaMode      string   `json:"faa_mode,omitempty"`
	Satellites   *int     `json:"satellites,omitempty"`
	FixPRNs      []uint16 `json:"fix_prns,omitempty"`
	HDOP         *float64 `json:"hdop,omitempty"`
	VDOP         *float64 `json:"vdop,omitempty"`
	PDOP         *float64 `json:"pdop,omitempty"`
	InView       *int     `json:"in_view,omitempty"`
	SatsInView   []Sat    `json:"sats_in_view,omitempty"`
	FixUTC       string   `json:"fix_utc,omitempty"`
	Text         string   `json:"text,omitempty"`
	LastSentence string   `json:"last_sentence,omitempty"`

	Lines    uint64 `json:"lines"`
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`

	LastLineUTC string `json:"last_line_utc,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

// Sat is one satellite of the last completed view.
type Sat struct {
	System       string `json:"system"`
	PRN          *int   `json:"prn,omitempty"`
	ElevationDeg *int   `json:"elevation_deg,omitempty"`
	AzimuthDeg   *int   `json:"azimuth_deg,omitempty"`
	SNR          *int   `json:"snr,omitempty"`
}

// buildSnapshot refreshes the fix members of cur from fix. Service members
// (source, counters, errors) are kept.
func buildSnapshot(cur Snapshot, fix *nav.Snapshot) Snapshot {
	out := Snapshot{
		Enabled:      cur.Enabled,
		Valid:        fix.HasPosition(),
		Source:       cur.Source,
		Device:       cur.Device,
		Baud:         cur.Baud,
		LastSentence: cur.LastSentence,
		LastLineUTC:  cur.LastLineUTC,
		LastError:    cur.LastError,

		LatDeg:      ptr(fix.Latitude),
		LonDeg:      ptr(fix.Longitude),
		AltMeters:   ptr(fix.Altitude),
		GeoidSepM:   ptr(fix.GeoidSeparation),
		BaroAltFeet: ptr(fix.BaroAltitudeFeet),
		GroundKt:    ptr(fix.SpeedKnots),
		TrackDeg:    ptr(fix.Course),
		HeadingDeg:  ptr(fix.Heading),
		MagVarDeg:   ptr(fix.MagneticVariation),
		Satellites:  ptr(fix.SatellitesUsed),
		HDOP:        ptr(fix.HDOP),
		VDOP:        ptr(fix.VDOP),
		PDOP:        ptr(fix.PDOP),
		InView:      ptr(fix.InViewCount),
		Text:        fix.Text.Or(""),
	}
	if fix.Altitude.Valid {
		ft := int(math.Round(fix.Altitude.Value * feetPerMeter))
		out.AltFeet = &ft
	}
	if q, ok := fix.FixQuality.Get(); ok {
		out.FixQuality = q.String()
	}
	if m, ok := fix.FixMode.Get(); ok {
		out.FixMode = m.String()
	}
	if m, ok := fix.Mode.Get(); ok {
		out.FaaMode = m.String()
	}
	if prns := fix.FixPRNs.All(); len(prns) > 0 {
		out.FixPRNs = append([]uint16(nil), prns...)
	}
	for _, sat := range fix.Satellites() {
		out.SatsInView = append(out.SatsInView, Sat{
			System:       sat.System.String(),
			PRN:          intPtr(sat.PRN),
			ElevationDeg: intPtr(sat.Elevation),
			AzimuthDeg:   intPtr(sat.Azimuth),
			SNR:          intPtr(sat.SNR),
		})
	}
	if ts, ok := fix.Timestamp(); ok {
		out.FixUTC = ts.Format("2006-01-02T15:04:05.000Z")
	} else if tod, ok := fix.Time.Get(); ok {
		out.FixUTC = tod.String()
	}
	return out
}

func ptr[T any](o nmea.Opt[T]) *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

func intPtr[T ~int8 | ~uint8 | ~uint16](o nmea.Opt[T]) *int {
	if !o.Valid {
		return nil
	}
	v := int(o.Value)
	return &v
}
