package gps

import (
	"context"
	"errors"
	"math"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nmeafix/internal/nmea"
)

const (
	ggaLine = "$GPGGA,092750.000,5321.6802,N,00630.3372,W,1,8,1.03,61.7,M,55.2,M,,*76"
	rmcLine = "$GPRMC,092750.000,A,5321.6802,N,00630.3372,W,0.02,31.66,280511,,,A*43"
	gsv1    = "$GPGSV,3,1,11,10,63,137,17,07,61,098,15,05,59,290,20,08,54,157,30*70"
	gsv2    = "$GPGSV,3,2,11,02,39,223,19,13,28,070,17,26,23,252,,04,14,186,14*79"
	gsv3    = "$GPGSV,3,3,11,29,09,301,24,16,09,020,,36,,,*76"
)

var testNow = time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestService_HandleLineBuildsSnapshot(t *testing.T) {
	s := New(Config{Enable: true})
	for _, line := range []string{ggaLine, rmcLine} {
		if _, err := s.HandleLine(testNow, line); err != nil {
			t.Fatalf("HandleLine(%q) err: %v", line, err)
		}
	}

	snap := s.Snapshot()
	if !snap.Valid {
		t.Fatalf("expected valid")
	}
	if snap.LatDeg == nil || math.Abs(*snap.LatDeg-53.361336) > 1e-6 {
		t.Fatalf("lat=%v", snap.LatDeg)
	}
	if snap.LonDeg == nil || math.Abs(*snap.LonDeg+6.505620) > 1e-6 {
		t.Fatalf("lon=%v", snap.LonDeg)
	}
	if snap.AltFeet == nil || *snap.AltFeet != 202 {
		t.Fatalf("alt_feet=%v want 202", snap.AltFeet)
	}
	if snap.GroundKt == nil || *snap.GroundKt != 0.02 {
		t.Fatalf("ground_kt=%v want 0.02", snap.GroundKt)
	}
	if snap.TrackDeg == nil || *snap.TrackDeg != 31.66 {
		t.Fatalf("track=%v want 31.66", snap.TrackDeg)
	}
	if snap.FixQuality != "gps" || snap.FaaMode != "A" {
		t.Fatalf("quality=%q mode=%q", snap.FixQuality, snap.FaaMode)
	}
	if snap.FixUTC != "2011-05-28T09:27:50.000Z" {
		t.Fatalf("fix_utc=%q", snap.FixUTC)
	}
	if snap.Lines != 2 || snap.Accepted != 2 || snap.Rejected != 0 {
		t.Fatalf("lines=%d accepted=%d rejected=%d", snap.Lines, snap.Accepted, snap.Rejected)
	}
	if snap.LastSentence != "GPRMC" {
		t.Fatalf("last_sentence=%q want GPRMC", snap.LastSentence)
	}
	if snap.Source != "serial" {
		t.Fatalf("source=%q want serial", snap.Source)
	}
}

func TestService_BadLineKeepsFix(t *testing.T) {
	s := New(Config{Enable: true})
	if _, err := s.HandleLine(testNow, ggaLine); err != nil {
		t.Fatalf("HandleLine err: %v", err)
	}
	before := *s.Snapshot().LatDeg

	bad := strings.TrimSuffix(ggaLine, "76") + "77"
	_, err := s.HandleLine(testNow, bad)
	if !errors.Is(err, nmea.ErrChecksumMismatch) {
		t.Fatalf("err=%v want %v", err, nmea.ErrChecksumMismatch)
	}

	snap := s.Snapshot()
	if snap.LatDeg == nil || *snap.LatDeg != before {
		t.Fatalf("lat=%v want %v", snap.LatDeg, before)
	}
	if snap.Rejected != 1 || snap.Accepted != 1 {
		t.Fatalf("accepted=%d rejected=%d", snap.Accepted, snap.Rejected)
	}
	if !strings.Contains(snap.LastError, "checksum mismatch") {
		t.Fatalf("last_error=%q", snap.LastError)
	}
}

func TestService_HooksSeeEveryLine(t *testing.T) {
	s := New(Config{Enable: true})
	type seen struct {
		line string
		ok   bool
	}
	var got []seen
	s.OnLine(func(_ time.Time, line string, sent nmea.Sentence, err error) {
		if (sent == nil) == (err == nil) {
			t.Fatalf("hook sentence=%v err=%v", sent, err)
		}
		got = append(got, seen{line: line, ok: err == nil})
	})
	s.OnLine(nil)

	_, _ = s.HandleLine(testNow, ggaLine)
	_, _ = s.HandleLine(testNow, "garbage")

	if len(got) != 2 || !got[0].ok || got[1].ok || got[1].line != "garbage" {
		t.Fatalf("hook calls=%+v", got)
	}
}

func TestService_SentencesLimit(t *testing.T) {
	s := New(Config{Enable: true, Sentences: nmea.Enable(nmea.TypeRMC)})
	if got := s.Capabilities(); got != nmea.Enable(nmea.TypeRMC) {
		t.Fatalf("caps=%v want RMC", got)
	}
	_, err := s.HandleLine(testNow, ggaLine)
	if !errors.Is(err, nmea.ErrUnsupported) {
		t.Fatalf("err=%v want %v", err, nmea.ErrUnsupported)
	}
	if _, err := s.HandleLine(testNow, rmcLine); err != nil {
		t.Fatalf("RMC err: %v", err)
	}

	if got := New(Config{}).Capabilities(); got != nmea.CapAll {
		t.Fatalf("default caps=%v want all", got)
	}
}

func TestService_SatellitesInView(t *testing.T) {
	s := New(Config{Enable: true})
	for _, line := range []string{gsv1, gsv2, gsv3} {
		if _, err := s.HandleLine(testNow, line); err != nil {
			t.Fatalf("HandleLine(%q) err: %v", line, err)
		}
	}
	snap := s.Snapshot()
	if snap.InView == nil || *snap.InView != 11 {
		t.Fatalf("in_view=%v want 11", snap.InView)
	}
	if len(snap.SatsInView) != 11 {
		t.Fatalf("sats=%d want 11", len(snap.SatsInView))
	}
	first := snap.SatsInView[0]
	if first.System != "gps" || first.PRN == nil || *first.PRN != 2 || *first.ElevationDeg != 39 || *first.SNR != 19 {
		t.Fatalf("first sat=%+v", first)
	}
	last := snap.SatsInView[10]
	if *last.PRN != 36 || last.ElevationDeg != nil || last.AzimuthDeg != nil || last.SNR != nil {
		t.Fatalf("last sat=%+v", last)
	}
	if snap.Valid {
		t.Fatalf("satellites alone should not make a valid fix")
	}
}

func TestService_StartDisabled(t *testing.T) {
	s := New(Config{Enable: false, Source: "tcp"})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	s.Close()
	if snap := s.Snapshot(); snap.Enabled {
		t.Fatalf("expected disabled snapshot")
	}
}

func TestService_StartRejectsBadConfig(t *testing.T) {
	cases := []Config{
		{Enable: true, Source: "carrier-pigeon"},
		{Enable: true, Source: "tcp"},
		{Enable: true, Source: "file"},
		{Enable: true, Source: "file", File: FileConfig{Path: filepath.Join(t.TempDir(), "missing.log")}},
	}
	for _, cfg := range cases {
		s := New(cfg)
		if err := s.Start(context.Background()); err == nil {
			s.Close()
			t.Fatalf("Start(%+v) expected error", cfg)
		}
	}
}

func TestService_FileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")
	log := "START\n0," + ggaLine + "\n1000000," + rmcLine + "\n" + gsv1 + "\n"
	if err := os.WriteFile(path, []byte(log), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := New(Config{Enable: true, Source: "file", File: FileConfig{Path: path, Speed: 100}})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	defer s.Close()

	waitFor(t, "replayed lines", func() bool { return s.Snapshot().Lines == 3 })
	snap := s.Snapshot()
	if !snap.Valid || snap.Device != path || snap.Source != "file" {
		t.Fatalf("snapshot=%+v", snap)
	}
	if fix := s.Fix(); fix.Date != nmea.Some(nmea.Date{Year: 2011, Month: time.May, Day: 28}) {
		t.Fatalf("date=%v", fix.Date)
	}
}

func TestService_TCPSource(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write([]byte("noise\r\n\r\n" + ggaLine + "\r\n" + rmcLine + "\r\n"))
		time.Sleep(time.Second)
	}()

	s := New(Config{Enable: true, Source: "tcp", TCPAddr: ln.Addr().String()})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	defer s.Close()

	waitFor(t, "tcp lines", func() bool { return s.Snapshot().Accepted == 2 })
	snap := s.Snapshot()
	if !snap.Valid || snap.Rejected != 1 || snap.Device != ln.Addr().String() {
		t.Fatalf("snapshot=%+v", snap)
	}
}
