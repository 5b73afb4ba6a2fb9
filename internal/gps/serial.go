package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"go.uber.org/ratelimit"

	"nmeafix/internal/nmea"
)

// probeBauds are tried in order when Baud is 0. 4800 is the NMEA 0183
// standard rate; the others are common receiver defaults.
var probeBauds = []int{4800, 9600, 38400, 115200}

const probeTimeout = 2500 * time.Millisecond

func (s *Service) startSerialLocked(ctx context.Context) error {
	device := strings.TrimSpace(s.cfg.Device)
	if device == "" {
		device = autoDetectDevice()
		if device == "" {
			s.setErrorLocked("gps auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
			return fmt.Errorf("gps auto-detect failed")
		}
	}

	baud := s.cfg.Baud
	if baud == 0 {
		// Reopening a port too quickly confuses some USB bridges.
		rl := ratelimit.New(1, ratelimit.Per(500*time.Millisecond))
		var ok bool
		baud, ok = detectBaud(probeBauds, rl, func(b int) bool {
			return probeSerial(device, b, probeTimeout)
		})
		if !ok {
			s.setErrorLocked(fmt.Sprintf("gps baud detection failed device=%s", device))
			return fmt.Errorf("gps baud detection failed device=%s", device)
		}
		log.Printf("gps detected device=%s baud=%d", device, baud)
	}

	f, err := openSerial(device, baud)
	if err != nil {
		s.setErrorLocked(fmt.Sprintf("gps open failed device=%s baud=%d: %v", device, baud, err))
		return err
	}
	// Keep the file reference for Close().
	s.closer = f

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			_ = f.Close()
		}()

		log.Printf("gps enabled device=%s baud=%d", device, baud)
		err := s.readLines(childCtx, f, nil)
		if childCtx.Err() == nil {
			s.setError(fmt.Sprintf("gps read stopped: %v", err))
		}
	}()

	s.setSourceLocked(device, baud)
	return nil
}

// detectBaud returns the first rate for which probe succeeds. Each attempt
// waits on rl first.
func detectBaud(bauds []int, rl ratelimit.Limiter, probe func(baud int) bool) (int, bool) {
	for _, b := range bauds {
		rl.Take()
		if probe(b) {
			return b, true
		}
	}
	return 0, false
}

func probeSerial(device string, baud int, timeout time.Duration) bool {
	f, err := openSerial(device, baud)
	if err != nil {
		return false
	}
	return probeLines(f, timeout)
}

// probeLines reports whether rc yields a frame with a valid checksum before
// timeout. rc is closed on return.
func probeLines(rc io.ReadCloser, timeout time.Duration) bool {
	found := make(chan bool, 1)
	go func() {
		sc := bufio.NewScanner(rc)
		sc.Buffer(make([]byte, 0, 256), 4096)
		for sc.Scan() {
			if _, err := nmea.ParseFrame(sc.Text()); err == nil {
				found <- true
				return
			}
		}
		found <- false
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()
	var ok bool
	select {
	case ok = <-found:
	case <-t.C:
	}
	_ = rc.Close()
	return ok
}
