//go:build !linux

package gps

import (
	"fmt"
	"os"
)

func openSerial(path string, baud int) (*os.File, error) {
	return nil, fmt.Errorf("serial receivers are not supported on this platform (device=%s baud=%d)", path, baud)
}
