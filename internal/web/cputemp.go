package web

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// thermalZonePath is where Linux boards such as the Raspberry Pi expose the
// SoC temperature.
var thermalZonePath = "/sys/class/thermal/thermal_zone0/temp"

// parseThermal accepts milli-degrees (52345) or whole degrees (52).
func parseThermal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("thermal reading empty")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse thermal reading %q: %w", s, err)
	}
	if n > 1000 {
		return float64(n) / 1000.0, nil
	}
	return float64(n), nil
}

// readCPUTempC returns nil when the host has no readable thermal zone.
func readCPUTempC(path string) *float64 {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	v, err := parseThermal(string(b))
	if err != nil {
		return nil
	}
	return &v
}
