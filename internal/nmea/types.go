package nmea

import (
	"fmt"
	"time"
)

// SentenceType identifies one of the supported sentence formats by its
// 3-character code.
type SentenceType uint8

const (
	TypeUnknown SentenceType = iota
	TypeAAM
	TypeALM
	TypeAPA
	TypeAPB
	TypeBOD
	TypeBWC
	TypeBWW
	TypeDBK
	TypeDBS
	TypeDPT
	TypeGBS
	TypeGGA
	TypeGLL
	TypeGNS
	TypeGSA
	TypeGST
	TypeGSV
	TypeHDT
	TypeMDA
	TypeMTW
	TypeMWV
	TypeRMC
	TypeRMZ
	TypeTTM
	TypeTXT
	TypeVHW
	TypeVTG
	TypeWNC
	TypeZDA
	TypeZFO
	TypeZTG

	typeCount
)

var typeCodes = [typeCount]string{
	TypeUnknown: "",
	TypeAAM:     "AAM",
	TypeALM:     "ALM",
	TypeAPA:     "APA",
	TypeAPB:     "APB",
	TypeBOD:     "BOD",
	TypeBWC:     "BWC",
	TypeBWW:     "BWW",
	TypeDBK:     "DBK",
	TypeDBS:     "DBS",
	TypeDPT:     "DPT",
	TypeGBS:     "GBS",
	TypeGGA:     "GGA",
	TypeGLL:     "GLL",
	TypeGNS:     "GNS",
	TypeGSA:     "GSA",
	TypeGST:     "GST",
	TypeGSV:     "GSV",
	TypeHDT:     "HDT",
	TypeMDA:     "MDA",
	TypeMTW:     "MTW",
	TypeMWV:     "MWV",
	TypeRMC:     "RMC",
	TypeRMZ:     "RMZ",
	TypeTTM:     "TTM",
	TypeTXT:     "TXT",
	TypeVHW:     "VHW",
	TypeVTG:     "VTG",
	TypeWNC:     "WNC",
	TypeZDA:     "ZDA",
	TypeZFO:     "ZFO",
	TypeZTG:     "ZTG",
}

func (t SentenceType) String() string {
	if t == TypeUnknown || t >= typeCount {
		return "unknown"
	}
	return typeCodes[t]
}

// TypeFromCode maps a 3-character code to its type, or TypeUnknown.
func TypeFromCode(code string) SentenceType {
	for t := TypeAAM; t < typeCount; t++ {
		if typeCodes[t] == code {
			return t
		}
	}
	return TypeUnknown
}

// AllTypes lists every supported sentence type in code order.
func AllTypes() []SentenceType {
	out := make([]SentenceType, 0, typeCount-1)
	for t := TypeAAM; t < typeCount; t++ {
		out = append(out, t)
	}
	return out
}

// Sentence is one decoded record. The set of implementations is closed; use a
// type switch over the record types of this package.
type Sentence interface {
	Kind() SentenceType
	TalkerID() string
	sentence()
}

// Meta is embedded in every record.
type Meta struct {
	Talker string
	Type   SentenceType
}

func (m Meta) Kind() SentenceType { return m.Type }
func (m Meta) TalkerID() string   { return m.Talker }
func (Meta) sentence()            {}

// System is a satellite constellation, derived from the talker.
type System uint8

const (
	SystemUnknown System = iota
	SystemGPS
	SystemGLONASS
	SystemGalileo
	SystemBeiDou
	SystemQZSS
	SystemNavIC
	// SystemMulti is the combined "GN" talker.
	SystemMulti

	SystemCount
)

var systemNames = [SystemCount]string{"unknown", "gps", "glonass", "galileo", "beidou", "qzss", "navic", "multi"}

func (s System) String() string {
	if s >= SystemCount {
		return "unknown"
	}
	return systemNames[s]
}

// SystemFromTalker maps a 2-character talker to its constellation.
func SystemFromTalker(talker string) System {
	switch talker {
	case "GP":
		return SystemGPS
	case "GL":
		return SystemGLONASS
	case "GA":
		return SystemGalileo
	case "GB", "BD":
		return SystemBeiDou
	case "GQ", "QZ":
		return SystemQZSS
	case "GI":
		return SystemNavIC
	case "GN":
		return SystemMulti
	default:
		return SystemUnknown
	}
}

// FixQuality is the GGA quality indicator.
type FixQuality uint8

const (
	FixInvalid FixQuality = iota
	FixGPS
	FixDGPS
	FixPPS
	FixRTK
	FixFloatRTK
	FixEstimated
	FixManual
	FixSimulation
)

var fixQualityNames = [...]string{"invalid", "gps", "dgps", "pps", "rtk", "float-rtk", "estimated", "manual", "simulation"}

func (q FixQuality) String() string {
	if int(q) >= len(fixQualityNames) {
		return fmt.Sprintf("quality(%d)", uint8(q))
	}
	return fixQualityNames[q]
}

// HasFix reports whether the quality indicates a usable position.
func (q FixQuality) HasFix() bool {
	return q != FixInvalid && q != FixManual && q != FixSimulation
}

// FaaMode is the positioning mode letter appended by NMEA 2.3 and later.
type FaaMode byte

const (
	FaaAutonomous   FaaMode = 'A'
	FaaCaution      FaaMode = 'C'
	FaaDifferential FaaMode = 'D'
	FaaEstimated    FaaMode = 'E'
	FaaFloatRTK     FaaMode = 'F'
	FaaManual       FaaMode = 'M'
	FaaNotValid     FaaMode = 'N'
	FaaPrecise      FaaMode = 'P'
	FaaRTK          FaaMode = 'R'
	FaaSimulator    FaaMode = 'S'
	FaaUnsafe       FaaMode = 'U'
)

const faaModeLetters = "ACDEFMNPRSU"

func (m FaaMode) String() string { return string(rune(m)) }

// Valid reports whether the mode yields a usable position.
func (m FaaMode) Valid() bool {
	switch m {
	case FaaAutonomous, FaaDifferential, FaaFloatRTK, FaaPrecise, FaaRTK:
		return true
	}
	return false
}

// TimeOfDay is a UTC time without a date.
type TimeOfDay struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// Duration returns the offset from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second +
		time.Duration(t.Nanosecond)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hour, t.Minute, t.Second, t.Nanosecond/int(time.Millisecond))
}

// Date is a calendar date in UTC.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// At combines the date with a time of day.
func (d Date) At(t TimeOfDay) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, t.Second, t.Nanosecond, time.UTC)
}
