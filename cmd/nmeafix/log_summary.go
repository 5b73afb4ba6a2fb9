package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"nmeafix/internal/nmea"
	"nmeafix/internal/replay"
)

type logSummary struct {
	Segments    int
	Lines       int
	Accepted    int
	MaxDuration time.Duration
	TypeCounts  map[string]int
	ErrorCounts map[string]int
	Talkers     map[string]int
}

func summarizeNMEALog(records []replay.Record) logSummary {
	s := logSummary{
		TypeCounts:  map[string]int{},
		ErrorCounts: map[string]int{},
		Talkers:     map[string]int{},
	}
	if len(records) == 0 {
		return s
	}

	origin := time.Duration(0)
	hasLines := false
	segments := 0

	for _, r := range records {
		if r.Line == "" {
			segments++
			origin = r.At
			continue
		}
		hasLines = true

		s.Lines++
		at := r.At - origin
		if at < 0 {
			at = 0
		}
		if at > s.MaxDuration {
			s.MaxDuration = at
		}

		sent, err := nmea.Parse(r.Line)
		if err != nil {
			s.ErrorCounts[nmea.ErrorKind(err)]++
			continue
		}
		s.Accepted++
		s.TypeCounts[sent.Kind().String()]++
		if t := sent.TalkerID(); t != "" {
			s.Talkers[t]++
		}
	}
	if segments == 0 && hasLines {
		segments = 1
	}
	s.Segments = segments

	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printLogSummary(w io.Writer, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	recs, err := replay.NewReader(f).ReadAll()
	if err != nil {
		return err
	}

	s := summarizeNMEALog(recs)

	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "size: %s\n", humanize.Bytes(uint64(st.Size())))
	fmt.Fprintf(w, "segments: %d\n", s.Segments)
	fmt.Fprintf(w, "lines: %s\n", humanize.Comma(int64(s.Lines)))
	fmt.Fprintf(w, "accepted: %s\n", humanize.Comma(int64(s.Accepted)))
	fmt.Fprintf(w, "rejected: %s\n", humanize.Comma(int64(s.Lines-s.Accepted)))
	fmt.Fprintf(w, "max_duration: %s\n", s.MaxDuration)
	if s.MaxDuration > 0 {
		fmt.Fprintf(w, "rate: %s lines/s\n", humanize.FormatFloat("#,###.##", float64(s.Lines)/s.MaxDuration.Seconds()))
	}

	fmt.Fprintf(w, "talkers:\n")
	for _, k := range sortedKeys(s.Talkers) {
		fmt.Fprintf(w, "  %s: %s\n", k, humanize.Comma(int64(s.Talkers[k])))
	}
	fmt.Fprintf(w, "type_counts:\n")
	for _, k := range sortedKeys(s.TypeCounts) {
		fmt.Fprintf(w, "  %s: %s\n", k, humanize.Comma(int64(s.TypeCounts[k])))
	}
	if len(s.ErrorCounts) > 0 {
		fmt.Fprintf(w, "error_counts:\n")
		for _, k := range sortedKeys(s.ErrorCounts) {
			fmt.Fprintf(w, "  %s: %s\n", k, humanize.Comma(int64(s.ErrorCounts[k])))
		}
	}
	return nil
}
