package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"nmeafix/internal/config"
	"nmeafix/internal/gps"
	"nmeafix/internal/mqtt"
	"nmeafix/internal/nmea"
	"nmeafix/internal/replay"
	"nmeafix/internal/udp"
	"nmeafix/internal/web"
)

const (
	// wsMinInterval caps fix pushes to WebSocket listeners.
	wsMinInterval = 200 * time.Millisecond

	recordFlushInterval = time.Second
	parseLogInterval    = 10 * time.Second
)

// liveRuntime owns the ingestion service and every sink fed from it.
type liveRuntime struct {
	cfg config.Config

	status  *web.Status
	logs    *web.LogBuffer
	metrics *web.Metrics
	fixes   *web.FixBroadcaster
	gps     *gps.Service

	relay *udp.Relay
	pub   *mqtt.Publisher

	recMu    sync.Mutex
	rec      *replay.Writer
	recLines uint64
	recErr   string

	parseMu      sync.Mutex
	parseLogged  time.Time
	parseDropped int
}

type recorderStats struct {
	Path      string `json:"path"`
	Lines     uint64 `json:"lines"`
	LastError string `json:"last_error,omitempty"`
}

func newRuntime(cfg config.Config, logs *web.LogBuffer) (*liveRuntime, error) {
	rt := &liveRuntime{
		cfg:     cfg,
		status:  web.NewStatus(),
		logs:    logs,
		metrics: web.NewMetrics(),
		fixes:   web.NewFixBroadcaster(wsMinInterval),
	}

	rt.gps = gps.New(gps.Config{
		Enable:   cfg.GPS.Enable,
		Source:   cfg.GPS.Source,
		Device:   cfg.GPS.Device,
		Baud:     cfg.GPS.Baud,
		GPSDAddr: cfg.GPS.GPSDAddr,
		TCPAddr:  cfg.GPS.TCPAddr,
		File: gps.FileConfig{
			Path:  cfg.GPS.File.Path,
			Speed: cfg.GPS.File.Speed,
			Loop:  cfg.GPS.File.Loop,
		},
		Sentences: cfg.NMEA.Capabilities,
	})

	recordPath := ""
	if cfg.Record.Enable {
		w, err := replay.CreateWriter(cfg.Record.Path)
		if err != nil {
			return nil, fmt.Errorf("record create failed: %w", err)
		}
		rt.rec = w
		recordPath = cfg.Record.Path
		rt.status.AddSection("record", rt.recorderStats)
		log.Printf("record enabled path=%s", cfg.Record.Path)
	}

	if cfg.UDP.Enable {
		r, err := udp.NewRelay(cfg.UDP.Dest)
		if err != nil {
			rt.closeSinks()
			return nil, fmt.Errorf("udp relay init failed: %w", err)
		}
		rt.relay = r
		rt.status.AddSection("udp", func() any { return r.Stats() })
		log.Printf("udp relay dest=%s", cfg.UDP.Dest)
	}

	if cfg.MQTT.Enable {
		p, err := mqtt.New(mqtt.Config{
			Broker:    cfg.MQTT.Broker,
			ClientID:  cfg.MQTT.ClientID,
			Topic:     cfg.MQTT.Topic,
			MaxRateHz: cfg.MQTT.MaxRateHz,
			QoS:       byte(cfg.MQTT.QoS),
			Retain:    cfg.MQTT.Retain,
		})
		if err != nil {
			rt.closeSinks()
			return nil, fmt.Errorf("mqtt init failed: %w", err)
		}
		rt.pub = p
		rt.status.AddSection("mqtt", func() any { return p.Stats() })
	}

	rt.status.SetStatic(rt.gps.Snapshot().Source, cfg.NMEA.Capabilities.String(), recordPath)
	rt.status.AddSection("gps", func() any {
		snap := rt.gps.Snapshot()
		return map[string]any{"lines": snap.Lines, "accepted": snap.Accepted, "rejected": snap.Rejected, "last_error": snap.LastError}
	})
	rt.status.AddSection("websocket", func() any { return map[string]int{"subscribers": rt.fixes.Subscribers()} })

	rt.gps.OnLine(rt.onLine)
	return rt, nil
}

// onLine fans one ingested line out to the sinks.
func (rt *liveRuntime) onLine(now time.Time, line string, s nmea.Sentence, err error) {
	rt.metrics.Observe(now, line, s, err)
	if err != nil {
		rt.logParseError(now, line, err)
		return
	}

	if rt.relay != nil {
		_ = rt.relay.SendLine(line)
	}
	rt.record(now, line)

	snap := rt.gps.Snapshot()
	rt.metrics.SetFix(snap)
	rt.fixes.Publish(now, snap)
	if rt.pub != nil {
		if err := rt.pub.Update(snap); err != nil {
			log.Printf("mqtt update failed: %v", err)
		}
	}
}

// logParseError logs at most one rejected line per parseLogInterval.
func (rt *liveRuntime) logParseError(now time.Time, line string, err error) {
	rt.parseMu.Lock()
	defer rt.parseMu.Unlock()
	if !rt.parseLogged.IsZero() && now.Sub(rt.parseLogged) < parseLogInterval {
		rt.parseDropped++
		return
	}
	if rt.parseDropped > 0 {
		log.Printf("gps rejected line kind=%s suppressed=%d: %v line=%q", nmea.ErrorKind(err), rt.parseDropped, err, line)
	} else {
		log.Printf("gps rejected line kind=%s: %v line=%q", nmea.ErrorKind(err), err, line)
	}
	rt.parseLogged = now
	rt.parseDropped = 0
}

func (rt *liveRuntime) record(now time.Time, line string) {
	rt.recMu.Lock()
	defer rt.recMu.Unlock()
	if rt.rec == nil {
		return
	}
	if err := rt.rec.WriteLine(now, line); err != nil {
		rt.recErr = err.Error()
		return
	}
	rt.recLines++
}

func (rt *liveRuntime) recorderStats() any {
	rt.recMu.Lock()
	defer rt.recMu.Unlock()
	return recorderStats{Path: rt.cfg.Record.Path, Lines: rt.recLines, LastError: rt.recErr}
}

func (rt *liveRuntime) flushRecorder() {
	rt.recMu.Lock()
	defer rt.recMu.Unlock()
	if rt.rec == nil {
		return
	}
	if err := rt.rec.Flush(); err != nil {
		rt.recErr = err.Error()
	}
}

func (rt *liveRuntime) deps() web.Deps {
	return web.Deps{
		Status:  rt.status,
		Fix:     rt.gps,
		Metrics: rt.metrics,
		Logs:    rt.logs,
		Fixes:   rt.fixes,
	}
}

// Run starts ingestion and the web server and blocks until ctx ends.
func (rt *liveRuntime) Run(ctx context.Context) error {
	defer rt.closeSinks()

	if err := rt.gps.Start(ctx); err != nil {
		return fmt.Errorf("gps start failed: %w", err)
	}
	defer rt.gps.Close()

	if rt.pub != nil {
		rt.pub.Start(ctx)
	}

	webErr := make(chan error, 1)
	if listen := rt.cfg.Web.Listen; listen != "" {
		log.Printf("web listening addr=%s", listen)
		go func() {
			webErr <- web.Serve(ctx, listen, web.Handler(rt.deps()))
		}()
	}

	flush := time.NewTicker(recordFlushInterval)
	defer flush.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-webErr:
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("web server: %w", err)
			}
		case <-flush.C:
			rt.flushRecorder()
		}
	}
}

func (rt *liveRuntime) closeSinks() {
	if rt.pub != nil {
		rt.pub.Close()
	}
	if rt.relay != nil {
		_ = rt.relay.Close()
	}
	rt.recMu.Lock()
	if rt.rec != nil {
		if err := rt.rec.Close(); err != nil {
			log.Printf("record close failed: %v", err)
		}
	}
	rt.recMu.Unlock()
}
