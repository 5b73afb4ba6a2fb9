package nav

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"nmeafix/internal/nmea"
)

func nmeaLine(payload string) string {
	return fmt.Sprintf("$%s*%02X", payload, nmea.Checksum(payload))
}

const (
	ggaLine = "$GPGGA,092750.000,5321.6802,N,00630.3372,W,1,8,1.03,61.7,M,55.2,M,,*76"
	gsaLine = "$GPGSA,A,3,10,07,05,02,29,04,08,13,,,,,1.72,1.03,1.38*0A"
	gsv1    = "$GPGSV,3,1,11,10,63,137,17,07,61,098,15,05,59,290,20,08,54,157,30*70"
	gsv2    = "$GPGSV,3,2,11,02,39,223,19,13,28,070,17,26,23,252,,04,14,186,14*79"
	gsv3    = "$GPGSV,3,3,11,29,09,301,24,16,09,020,,36,,,*76"
	rmcLine = "$GPRMC,092750.000,A,5321.6802,N,00630.3372,W,0.02,31.66,280511,,,A*43"
)

func mustParse(t *testing.T, n *Navigator, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if _, err := n.Parse(line); err != nil {
			t.Fatalf("parse %q: %v", line, err)
		}
	}
}

func prns(sats []nmea.Satellite) []uint16 {
	out := make([]uint16, len(sats))
	for i, s := range sats {
		out[i] = s.PRN.Value
	}
	return out
}

func TestNavigator_GGA(t *testing.T) {
	n := New(nmea.CapAll)
	mustParse(t, n, ggaLine)
	snap := n.Snapshot()
	if math.Abs(snap.Latitude.Value-53.361336) > 1e-6 || math.Abs(snap.Longitude.Value+6.505620) > 1e-6 {
		t.Fatalf("lat=%v lon=%v", snap.Latitude, snap.Longitude)
	}
	if snap.FixQuality != nmea.Some(nmea.FixGPS) || snap.SatellitesUsed != nmea.Some(8) || snap.Altitude != nmea.Some(61.7) {
		t.Fatalf("quality=%v sats=%v alt=%v", snap.FixQuality, snap.SatellitesUsed, snap.Altitude)
	}
	if !snap.HasPosition() {
		t.Fatalf("expected position")
	}
	if got := snap.EllipsoidAltitude(); math.Abs(got.Value-116.9) > 1e-9 {
		t.Fatalf("ellipsoid altitude=%v", got)
	}
	if _, ok := snap.Timestamp(); ok {
		t.Fatalf("timestamp without date")
	}
}

func TestNavigator_Idempotent(t *testing.T) {
	n := New(nmea.CapAll)
	mustParse(t, n, ggaLine, rmcLine)
	once := n.Snapshot()
	mustParse(t, n, rmcLine)
	if n.Snapshot() != once {
		t.Fatalf("reapplying a sentence changed the snapshot")
	}
}

func TestNavigator_FieldIndependence(t *testing.T) {
	n := New(nmea.CapAll)
	mustParse(t, n, ggaLine)
	before := n.Snapshot()

	// RMC without a position only touches time, status, speed, course and date.
	mustParse(t, n, nmeaLine("GPRMC,092751.000,A,,,,,0.50,45.0,280511,,,A"))
	after := n.Snapshot()
	if after.Latitude != before.Latitude || after.Longitude != before.Longitude || after.Altitude != before.Altitude {
		t.Fatalf("position changed: %v,%v", after.Latitude, after.Longitude)
	}
	if after.SpeedKnots != nmea.Some(0.5) || after.Course != nmea.Some(45.0) {
		t.Fatalf("speed=%v course=%v", after.SpeedKnots, after.Course)
	}
	if after.Time.Value.Second != 51 {
		t.Fatalf("time=%v", after.Time)
	}
	ts, ok := after.Timestamp()
	if !ok || !ts.Equal(time.Date(2011, time.May, 28, 9, 27, 51, 0, time.UTC)) {
		t.Fatalf("timestamp=%v ok=%v", ts, ok)
	}
	if after.MagneticVariation.Valid {
		t.Fatalf("expected absent magnetic variation")
	}
}

func TestNavigator_GSVReassembly(t *testing.T) {
	n := New(nmea.CapAll)
	mustParse(t, n, gsv1, gsv2)
	snap := n.Snapshot()
	if snap.SatellitesInView.Len() != 0 {
		t.Fatalf("published before the last page: %d", snap.SatellitesInView.Len())
	}
	mustParse(t, n, gsv3)
	snap = n.Snapshot()
	got := prns(snap.SatellitesInView.All())
	want := []uint16{10, 7, 5, 8, 2, 13, 26, 4, 29, 16, 36}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("prns=%v want %v", got, want)
	}
	if snap.InViewCount != nmea.Some(11) {
		t.Fatalf("in view=%v", snap.InViewCount)
	}
	last := snap.SatellitesInView.All()[10]
	if last.PRN != nmea.Some[uint16](36) || last.Elevation.Valid || last.Azimuth.Valid || last.SNR.Valid {
		t.Fatalf("last=%+v", last)
	}
}

func TestNavigator_GSVStartsOverOnPageOne(t *testing.T) {
	n := New(nmea.CapAll)
	mustParse(t, n, gsv2, gsv1)
	if n.Snapshot().SatellitesInView.Len() != 0 {
		t.Fatalf("unexpected publish")
	}
	mustParse(t, n, gsv2, gsv3)
	if got := n.Snapshot().SatellitesInView.Len(); got != 11 {
		t.Fatalf("in view=%d want 11", got)
	}
}

func TestNavigator_GSVMidSequenceNeverPublished(t *testing.T) {
	n := New(nmea.CapAll)
	mustParse(t, n, gsv2, gsv3)
	if got := n.Snapshot().SatellitesInView.Len(); got != 0 {
		t.Fatalf("partial group published: %d", got)
	}

	// A skipped page discards the group.
	mustParse(t, n, gsv1, gsv3)
	if got := n.Snapshot().SatellitesInView.Len(); got != 0 {
		t.Fatalf("group with a gap published: %d", got)
	}

	mustParse(t, n, gsv1, gsv2, gsv3)
	if got := n.Snapshot().SatellitesInView.Len(); got != 11 {
		t.Fatalf("in view=%d want 11", got)
	}

	// Out of order pages keep the last completed list.
	mustParse(t, n, gsv1, gsv3)
	if got := n.Snapshot().SatellitesInView.Len(); got != 11 {
		t.Fatalf("in view=%d want 11", got)
	}
}

func TestNavigator_GSVPerSystem(t *testing.T) {
	n := New(nmea.CapAll)
	mustParse(t, n,
		"$GPGSV,3,1,12,01,49,196,41,03,71,278,32,06,02,323,27,11,21,196,39*72",
		"$GLGSV,3,1,10,74,40,078,43,66,23,275,31,82,10,347,36,73,15,015,38*6B",
		"$GPGSV,3,2,12,14,39,063,33,17,21,292,30,19,20,310,31,22,82,181,36*73",
		"$GLGSV,3,2,10,75,19,135,36,65,76,333,31,88,32,233,33,81,40,302,38*6A",
		"$GPGSV,3,3,12,23,34,232,42,25,11,045,33,31,45,092,38,32,14,061,39*75",
		"$GLGSV,3,3,10,72,40,075,43,87,00,000,*6F",
		"$GPGSV,4,4,15,26,02,112,,31,45,071,,32,01,066,*4C",
	)
	snap := n.Snapshot()
	if got := len(snap.SystemSatellites(nmea.SystemGPS)); got != 12 {
		t.Fatalf("gps=%d want 12", got)
	}
	if got := len(snap.SystemSatellites(nmea.SystemGLONASS)); got != 10 {
		t.Fatalf("glonass=%d want 10", got)
	}
	if got := snap.SatellitesInView.Len(); got != 10 {
		t.Fatalf("latest group=%d want 10", got)
	}
	all := snap.Satellites()
	want := []uint16{1, 3, 6, 11, 14, 17, 19, 22, 23, 25, 31, 32, 65, 66, 72, 73, 74, 75, 81, 82, 87, 88}
	if fmt.Sprint(prns(all)) != fmt.Sprint(want) {
		t.Fatalf("merged=%v want %v", prns(all), want)
	}
}

func TestNavigator_ErrorsLeaveStateUnchanged(t *testing.T) {
	n := New(nmea.Enable(nmea.TypeGGA, nmea.TypeGSV, nmea.TypeGSA))
	mustParse(t, n, ggaLine, gsaLine, gsv1, gsv2)
	before := n.Snapshot()

	bad := []struct {
		line string
		kind string
	}{
		{ggaLine[:len(ggaLine)-2] + "77", "frame"},
		{nmeaLine("GPGGA,092751.000,5360.0000,N,00630.3372,W,1,8,1.03,61.7,M,55.2,M,,"), "field"},
		{nmeaLine("GPGGA,092751.000,5321.6802"), "missing_fields"},
		{rmcLine, "unsupported"},
		{nmeaLine("GPGSV,3,3,11,29,09,301,24,16,09,020,,36,,,,1,1,1,1,2,2,2,2"), "capacity"},
		{nmeaLine("GPGSV,3,4,11,29,09,301,24"), "field"},
	}
	for _, tc := range bad {
		_, err := n.Parse(tc.line)
		if err == nil {
			t.Fatalf("%q: expected error", tc.line)
		}
		if nmea.ErrorKind(err) != tc.kind {
			t.Fatalf("%q: kind=%q want %q (%v)", tc.line, nmea.ErrorKind(err), tc.kind, err)
		}
		if n.Snapshot() != before {
			t.Fatalf("%q: snapshot changed on error", tc.line)
		}
	}

	// The pending GSV group survived the bad lines.
	mustParse(t, n, gsv3)
	if got := n.Snapshot().SatellitesInView.Len(); got != 11 {
		t.Fatalf("in view=%d want 11", got)
	}
}

func TestNavigator_ApplyRejectsBadGSV(t *testing.T) {
	n := New(nmea.CapAll)
	err := n.Apply(nmea.GSV{Meta: nmea.Meta{Talker: "GP", Type: nmea.TypeGSV}, Pages: 12, Page: 1})
	if !errors.Is(err, nmea.ErrCapacity) {
		t.Fatalf("err=%v want capacity", err)
	}
	err = n.Apply(nmea.GSV{Meta: nmea.Meta{Talker: "GP", Type: nmea.TypeGSV}, Pages: 2, Page: 3})
	if !errors.Is(err, nmea.ErrNumeric) {
		t.Fatalf("err=%v want numeric", err)
	}
}

func TestNavigator_GSAAndVTG(t *testing.T) {
	n := New(nmea.CapAll)
	mustParse(t, n, gsaLine, nmeaLine("GPVTG,071.9,T,061.7,M,,N,18.52,K,A"))
	snap := n.Snapshot()
	if snap.FixMode != nmea.Some(nmea.FixMode3D) || snap.FixPRNs.Len() != 8 || snap.VDOP != nmea.Some(1.38) {
		t.Fatalf("mode=%v prns=%v vdop=%v", snap.FixMode, snap.FixPRNs.All(), snap.VDOP)
	}
	if math.Abs(snap.SpeedKnots.Value-10) > 1e-9 || snap.Course != nmea.Some(71.9) {
		t.Fatalf("speed=%v course=%v", snap.SpeedKnots, snap.Course)
	}
	if snap.Mode != nmea.Some(nmea.FaaAutonomous) {
		t.Fatalf("mode=%v", snap.Mode)
	}
}

func TestNavigator_OtherSentences(t *testing.T) {
	n := New(nmea.CapAll)
	mustParse(t, n,
		"$GPHDT,274.07,T*03",
		"$GNTXT,01,01,02,u-blox AG - www.u-blox.com*4E",
		"$PGRMZ,2282,f,3*21",
		"$GPZDA,160012.71,11,03,2004,-1,00*7D",
		"$SDDPT,17.9,0.5*6D",
	)
	snap := n.Snapshot()
	if snap.Heading != nmea.Some(274.07) || snap.Text != nmea.Some("u-blox AG - www.u-blox.com") {
		t.Fatalf("heading=%v text=%v", snap.Heading, snap.Text)
	}
	if snap.BaroAltitudeFeet != nmea.Some(2282) {
		t.Fatalf("baro=%v", snap.BaroAltitudeFeet)
	}
	ts, ok := snap.Timestamp()
	if !ok || !ts.Equal(time.Date(2004, time.March, 11, 16, 0, 12, 710000000, time.UTC)) {
		t.Fatalf("timestamp=%v ok=%v", ts, ok)
	}
}

func TestNavigator_Reset(t *testing.T) {
	n := New(nmea.CapAll)
	mustParse(t, n, ggaLine, gsv1, gsv2)
	n.Reset()
	if n.Snapshot() != (Snapshot{}) {
		t.Fatalf("snapshot not cleared")
	}
	// The pending group was dropped too.
	mustParse(t, n, gsv3)
	if got := n.Snapshot().SatellitesInView.Len(); got != 0 {
		t.Fatalf("in view=%d want 0", got)
	}
}

func TestNewForNavigation(t *testing.T) {
	if _, err := NewForNavigation(0); !errors.Is(err, ErrEmptyNavConfig) {
		t.Fatalf("err=%v want ErrEmptyNavConfig", err)
	}
	if _, err := NewForNavigation(nmea.Enable(nmea.TypeMWV)); err == nil {
		t.Fatalf("expected error for non-navigation type")
	}

	n, err := NewForNavigation(nmea.Enable(nmea.TypeGGA, nmea.TypeRMC, nmea.TypeVTG))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := n.Parse("$GPHDT,274.07,T*03"); !errors.Is(err, nmea.ErrUnsupported) {
		t.Fatalf("err=%v want unsupported", err)
	}
	mustParse(t, n,
		"$GPRMC,123308.2,A,5521.76474,N,03731.92553,E,000.48,071.9,090317,010.2,E,A*3B",
		"$GPGGA,123308.2,5521.76474,N,03731.92553,E,1,08,2.2,211.5,M,13.1,M,,*52",
	)
	if n.Ready() {
		t.Fatalf("ready before VTG")
	}
	mustParse(t, n, "$GPVTG,071.9,T,061.7,M,000.48,N,0000.88,K,A*10")
	if !n.Ready() {
		t.Fatalf("expected ready")
	}
	// A new fix time starts a new round.
	mustParse(t, n, "$GPRMC,123308.3,A,5521.76474,N,03731.92553,E,000.51,071.9,090317,010.2,E,A*32")
	if n.Ready() {
		t.Fatalf("ready after the fix time changed")
	}

	if New(nmea.CapAll).Ready() {
		t.Fatalf("plain navigator reports ready")
	}
}

func TestNewForNavigation_InvalidFixClearsPosition(t *testing.T) {
	n, err := NewForNavigation(nmea.Enable(nmea.TypeGGA, nmea.TypeRMC))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	mustParse(t, n, gsv1, gsv2, gsv3)

	// Invalid RMC and GGA at the same fix time never make a fix ready.
	mustParse(t, n,
		nmeaLine("GPRMC,092750.000,V,5321.6802,N,00630.3372,W,0.02,31.66,280511,,,N"),
		nmeaLine("GPGGA,092750.000,5321.6802,N,00630.3372,W,0,00,,,M,,M,,"),
	)
	snap := n.Snapshot()
	if n.Ready() || snap.HasPosition() || snap.Latitude.Valid {
		t.Fatalf("ready=%v hasPosition=%v lat=%v want all false", n.Ready(), snap.HasPosition(), snap.Latitude)
	}
	if got := snap.SatellitesInView.Len(); got != 11 {
		t.Fatalf("in view=%d want 11 kept", got)
	}

	mustParse(t, n, rmcLine, ggaLine)
	if !n.Ready() {
		t.Fatalf("expected ready after valid RMC and GGA")
	}

	tests := []struct {
		name string
		line string
	}{
		{name: "rmc void", line: nmeaLine("GPRMC,092750.000,V,,,,,,,280511,,,N")},
		{name: "gga no quality", line: nmeaLine("GPGGA,092750.000,5321.6802,N,00630.3372,W,,8,1.03,61.7,M,55.2,M,,")},
		{name: "gga quality zero", line: nmeaLine("GPGGA,092750.000,5321.6802,N,00630.3372,W,0,8,1.03,61.7,M,55.2,M,,")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustParse(t, n, rmcLine, ggaLine)
			if !n.Ready() {
				t.Fatalf("expected ready before %s", tt.name)
			}
			mustParse(t, n, tt.line)
			if n.Ready() {
				t.Fatalf("ready after %s", tt.name)
			}
			snap := n.Snapshot()
			if snap.HasPosition() {
				t.Fatalf("position kept after %s", tt.name)
			}
		})
	}
}

func TestNewForNavigation_InvalidGNSMode(t *testing.T) {
	n, err := NewForNavigation(nmea.Enable(nmea.TypeGNS))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	mustParse(t, n, nmeaLine("GNGNS,092750.00,5321.6802,N,00630.3372,W,AA,10,0.9,61.7,55.2,,"))
	if !n.Ready() {
		t.Fatalf("expected ready for autonomous GNS")
	}
	mustParse(t, n, nmeaLine("GNGNS,092751.00,5321.6802,N,00630.3372,W,NN,00,,,,,"))
	if n.Ready() || n.Snapshot().Latitude.Valid {
		t.Fatalf("ready=%v lat=%v after GNS mode N", n.Ready(), n.Snapshot().Latitude)
	}
}

func TestNew_InvalidFixStillMerges(t *testing.T) {
	n := New(nmea.CapAll)
	mustParse(t, n, nmeaLine("GPGGA,092750.000,5321.6802,N,00630.3372,W,0,00,,,M,,M,,"))
	snap := n.Snapshot()
	if !snap.Latitude.Valid || snap.HasPosition() {
		t.Fatalf("lat=%v hasPosition=%v want merged lat without position", snap.Latitude, snap.HasPosition())
	}
}
