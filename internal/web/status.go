package web

import (
	"sync"
	"sync/atomic"
	"time"
)

type Status struct {
	startUnixNano int64
	source        atomic.Value // string
	sentences     atomic.Value // string
	recordPath    atomic.Value // string

	mu       sync.Mutex
	sections map[string]func() any
}

func NewStatus() *Status {
	s := &Status{sections: make(map[string]func() any)}
	atomic.StoreInt64(&s.startUnixNano, time.Now().UTC().UnixNano())
	s.source.Store("")
	s.sentences.Store("")
	s.recordPath.Store("")
	return s
}

// SetStatic records configuration that does not change while running.
// Empty values are ignored.
func (s *Status) SetStatic(source, sentences, recordPath string) {
	if source != "" {
		s.source.Store(source)
	}
	if sentences != "" {
		s.sentences.Store(sentences)
	}
	if recordPath != "" {
		s.recordPath.Store(recordPath)
	}
}

// AddSection publishes fn's result under name in every status snapshot.
// Sinks (udp, mqtt, recorder) register their stats this way.
func (s *Status) AddSection(name string, fn func() any) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.sections[name] = fn
	s.mu.Unlock()
}

type DiskSnapshot struct {
	Path       string `json:"path"`
	TotalBytes uint64 `json:"total_bytes,omitempty"`
	AvailBytes uint64 `json:"avail_bytes,omitempty"`
	Avail      string `json:"avail,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

type StatusSnapshot struct {
	Service    string         `json:"service"`
	NowUTC     string         `json:"now_utc"`
	UptimeSec  int64          `json:"uptime_sec"`
	Source     string         `json:"source"`
	Sentences  string         `json:"sentences"`
	LocalAddrs []string       `json:"local_addrs,omitempty"`
	CPUTempC   *float64       `json:"cpu_temp_c,omitempty"`
	Disk       *DiskSnapshot  `json:"disk,omitempty"`
	Sections   map[string]any `json:"sections,omitempty"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()

	snap := StatusSnapshot{
		Service:    "nmeafix",
		NowUTC:     nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec:  int64(nowUTC.Sub(start).Seconds()),
		Source:     s.source.Load().(string),
		Sentences:  s.sentences.Load().(string),
		LocalAddrs: localInterfaceAddrs(),
		CPUTempC:   readCPUTempC(thermalZonePath),
	}
	if p := s.recordPath.Load().(string); p != "" {
		snap.Disk = snapshotDisk(p)
	}

	s.mu.Lock()
	fns := make(map[string]func() any, len(s.sections))
	for name, fn := range s.sections {
		fns[name] = fn
	}
	s.mu.Unlock()

	if len(fns) > 0 {
		snap.Sections = make(map[string]any, len(fns))
		for name, fn := range fns {
			snap.Sections[name] = fn()
		}
	}
	return snap
}
