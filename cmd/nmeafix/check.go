package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"nmeafix/internal/gps"
	"nmeafix/internal/nmea"
	"nmeafix/internal/replay"
)

// runCheck feeds every sentence of path through a fresh ingestion service
// and prints rejected lines followed by the resulting fix. It reports false
// when any line was rejected.
func runCheck(w io.Writer, path, sentences string) (bool, error) {
	var names []string
	for _, n := range strings.Split(sentences, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	caps, err := nmea.ParseCapabilities(names)
	if err != nil {
		return false, err
	}

	recs, err := replay.ReadFile(path)
	if err != nil {
		return false, err
	}

	svc := gps.New(gps.Config{Source: "file", File: gps.FileConfig{Path: path}, Sentences: caps})
	n := 0
	for _, r := range recs {
		if r.Line == "" {
			continue
		}
		n++
		if _, err := svc.HandleLine(time.Unix(0, int64(r.At)).UTC(), r.Line); err != nil {
			fmt.Fprintf(w, "sentence %d: %s: %v\n", n, nmea.ErrorKind(err), err)
		}
	}

	snap := svc.Snapshot()
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return false, err
	}
	fmt.Fprintf(w, "%s\n", b)
	return snap.Rejected == 0, nil
}
