package gps

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"nmeafix/internal/nav"
	"nmeafix/internal/nmea"
)

// Config controls the receiver ingestion service.
//
// Device may be empty to auto-detect. Baud 0 probes the common NMEA rates.
// Sentences limits the types that are decoded; 0 enables all of them.
type Config struct {
	Enable bool

	// Source selects how sentences are ingested: "serial", "gpsd", "tcp" or
	// "file". When empty, defaults to "serial".
	Source string

	// Device and Baud are used when Source=="serial".
	Device string
	Baud   int

	// GPSDAddr is host:port for gpsd when Source=="gpsd".
	GPSDAddr string

	// TCPAddr is host:port of a raw NMEA stream when Source=="tcp".
	TCPAddr string

	File FileConfig

	Sentences nmea.Capabilities
}

// FileConfig replays a capture log when Source=="file".
type FileConfig struct {
	Path  string
	Speed float64
	Loop  bool
}

// LineHook observes every ingested line with its decoded sentence or error.
// Hooks run on the ingest goroutine and should not block.
type LineHook func(now time.Time, line string, s nmea.Sentence, err error)

type Service struct {
	cfg Config
	src string

	cancel context.CancelFunc
	wg     sync.WaitGroup

	last atomic.Value // Snapshot

	mu     sync.Mutex
	closer io.Closer
	hooks  []LineHook

	navMu    sync.Mutex
	nav      *nav.Navigator
	lines    uint64
	accepted uint64
	rejected uint64
}

func New(cfg Config) *Service {
	if cfg.Sentences.Empty() {
		cfg.Sentences = nmea.CapAll
	}
	s := &Service{cfg: cfg, src: sourceName(cfg.Source), nav: nav.New(cfg.Sentences)}
	s.last.Store(Snapshot{Enabled: cfg.Enable, Source: s.src, Device: cfg.Device, Baud: cfg.Baud})
	return s
}

func sourceName(src string) string {
	src = strings.ToLower(strings.TrimSpace(src))
	if src == "" {
		return "serial"
	}
	return src
}

// Capabilities returns the sentence types the service decodes.
func (s *Service) Capabilities() nmea.Capabilities { return s.nav.Capabilities() }

// OnLine registers h. Register hooks before Start.
func (s *Service) OnLine(h LineHook) {
	if h == nil {
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, h)
	s.mu.Unlock()
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gps service is nil")
	}
	if !s.cfg.Enable {
		return nil
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	switch s.src {
	case "serial":
		return s.startSerialLocked(ctx)
	case "gpsd":
		addr := strings.TrimSpace(s.cfg.GPSDAddr)
		if addr == "" {
			addr = gpsdDefaultAddr
		}
		return s.startStreamLocked(ctx, stream{
			name:  "gpsd",
			addr:  addr,
			dial:  dialGPSD,
			hello: gpsdWatch,
			skip:  gpsdReport,
		})
	case "tcp":
		addr := strings.TrimSpace(s.cfg.TCPAddr)
		if addr == "" {
			return fmt.Errorf("gps tcp source requires an address")
		}
		return s.startStreamLocked(ctx, stream{name: "tcp", addr: addr, dial: dialTCP})
	case "file":
		return s.startFileLocked(ctx)
	default:
		return fmt.Errorf("unknown gps source %q", s.src)
	}
}

// HandleLine decodes one raw line, folds it into the fix and notifies hooks.
// Every source funnels through here.
func (s *Service) HandleLine(now time.Time, line string) (nmea.Sentence, error) {
	s.navMu.Lock()
	sent, err := s.nav.Parse(line)
	s.lines++
	if err != nil {
		s.rejected++
	} else {
		s.accepted++
	}
	fix := s.nav.Snapshot()
	lines, accepted, rejected := s.lines, s.accepted, s.rejected
	s.navMu.Unlock()

	s.mu.Lock()
	cur := s.Snapshot()
	next := buildSnapshot(cur, &fix)
	next.Lines = lines
	next.Accepted = accepted
	next.Rejected = rejected
	next.LastLineUTC = now.UTC().Format(time.RFC3339Nano)
	if err != nil {
		next.LastError = err.Error()
	} else {
		next.LastSentence = sent.TalkerID() + sent.Kind().String()
	}
	s.last.Store(next)
	hooks := s.hooks
	s.mu.Unlock()

	for _, h := range hooks {
		h(now, line, sent, err)
	}
	return sent, err
}

// Fix returns a copy of the merged navigation state.
func (s *Service) Fix() nav.Snapshot {
	s.navMu.Lock()
	defer s.navMu.Unlock()
	return s.nav.Snapshot()
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	closer := s.closer
	s.cancel = nil
	s.closer = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if closer != nil {
		_ = closer.Close()
	}
	s.wg.Wait()
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	return v.(Snapshot)
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(msg)
}

func (s *Service) setErrorLocked(msg string) {
	cur := s.Snapshot()
	cur.LastError = msg
	s.last.Store(cur)
}

// setSource records where sentences currently come from.
func (s *Service) setSource(device string, baud int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSourceLocked(device, baud)
}

func (s *Service) setSourceLocked(device string, baud int) {
	cur := s.Snapshot()
	cur.Device = device
	cur.Baud = baud
	s.last.Store(cur)
}

func autoDetectDevice() string {
	candidates := []string{}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyACM%d", i))
	}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyUSB%d", i))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
