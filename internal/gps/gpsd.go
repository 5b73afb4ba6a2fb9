package gps

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"strings"
	"time"
)

const gpsdDefaultAddr = "127.0.0.1:2947"

// dialGPSD connects to gpsd over TCP.
func dialGPSD(ctx context.Context, addr string) (net.Conn, error) {
	if strings.TrimSpace(addr) == "" {
		addr = gpsdDefaultAddr
	}
	d := &net.Dialer{Timeout: 2 * time.Second}
	if ctx == nil {
		return d.Dial("tcp", addr)
	}
	return d.DialContext(ctx, "tcp", addr)
}

// gpsdWatch asks gpsd to pass the receiver's raw NMEA through. gpsd still
// interleaves its own JSON reports.
func gpsdWatch(conn net.Conn) error {
	_, err := conn.Write([]byte("?WATCH={\"enable\":true,\"nmea\":true}\n"))
	return err
}

type gpsdMsg struct {
	Class   string `json:"class"`
	Release string `json:"release"`
	Path    string `json:"path"`
	Driver  string `json:"driver"`
	Bps     int    `json:"bps"`
}

// gpsdReport reports whether line is a gpsd JSON report rather than NMEA.
// VERSION and DEVICE reports are logged.
func gpsdReport(line string) bool {
	if !strings.HasPrefix(line, "{") {
		return false
	}
	var m gpsdMsg
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		return true
	}
	switch m.Class {
	case "VERSION":
		log.Printf("gpsd connected release=%s", m.Release)
	case "DEVICE":
		log.Printf("gpsd device path=%s driver=%s bps=%d", m.Path, m.Driver, m.Bps)
	}
	return true
}
