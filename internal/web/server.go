package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"nmeafix/internal/gps"
	"nmeafix/internal/nmea"
)

// FixSource is the part of the ingestion service the handlers read.
type FixSource interface {
	Snapshot() gps.Snapshot
	Capabilities() nmea.Capabilities
}

// Deps wires the handlers. Nil members disable their endpoints.
type Deps struct {
	Status  *Status
	Fix     FixSource
	Metrics *Metrics
	Logs    *LogBuffer
	Fixes   *FixBroadcaster
}

func Handler(d Deps) http.Handler {
	if d.Status == nil {
		d.Status = NewStatus()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", getOnly(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Status.Snapshot(time.Now().UTC()))
	}))

	mux.HandleFunc("/api/fix", getOnly(func(w http.ResponseWriter, r *http.Request) {
		if d.Fix == nil {
			http.Error(w, "gps unavailable", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, d.Fix.Snapshot())
	}))

	mux.HandleFunc("/api/sentences", getOnly(func(w http.ResponseWriter, r *http.Request) {
		caps := nmea.CapAll
		if d.Fix != nil {
			caps = d.Fix.Capabilities()
		}
		writeJSON(w, http.StatusOK, sentencesResponse(caps))
	}))

	mux.HandleFunc("/api/parse", parseHandler(d.Fix))
	mux.HandleFunc("/api/about", getOnly(aboutHandler))

	if d.Logs != nil {
		mux.Handle("/api/logs", d.Logs.Handler())
	}
	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics.Handler())
	}
	if d.Fixes != nil {
		mux.HandleFunc("/ws/fix", fixStreamHandler(d.Fixes))
	}

	mux.HandleFunc("/", getOnly(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<!doctype html><html><head><meta charset=\"utf-8\"><title>nmeafix</title></head><body>")
		_, _ = fmt.Fprintf(w, "<h1>nmeafix</h1><ul>")
		for _, p := range []string{"/api/status", "/api/fix", "/api/sentences", "/api/about", "/api/logs", "/metrics"} {
			_, _ = fmt.Fprintf(w, "<li><a href=\"%s\">%s</a></li>", p, p)
		}
		_, _ = fmt.Fprintf(w, "</ul></body></html>")
	}))

	return mux
}

func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}

type SentencesResponse struct {
	Enabled    []string            `json:"enabled"`
	Supported  []string            `json:"supported"`
	Categories map[string][]string `json:"categories"`
}

func codes(c nmea.Capabilities) []string {
	types := c.Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

func sentencesResponse(enabled nmea.Capabilities) SentencesResponse {
	resp := SentencesResponse{
		Enabled:    codes(enabled),
		Supported:  codes(nmea.CapAll),
		Categories: make(map[string][]string),
	}
	for _, name := range nmea.CategoryNames() {
		c, err := nmea.ParseCapabilities([]string{name})
		if err != nil {
			continue
		}
		resp.Categories[name] = codes(c)
	}
	return resp
}

// maxParseBody bounds /api/parse requests; one sentence is far smaller.
const maxParseBody = 1024

type ParseResponse struct {
	OK        bool          `json:"ok"`
	Talker    string        `json:"talker,omitempty"`
	Type      string        `json:"type,omitempty"`
	Sentence  nmea.Sentence `json:"sentence,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
}

// parseHandler decodes the sentence in the request body without touching the
// live fix. It uses the same sentence set as the service.
func parseHandler(fix FixSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxParseBody+1))
		if err != nil {
			http.Error(w, "read failed", http.StatusBadRequest)
			return
		}
		if len(body) > maxParseBody {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}

		caps := nmea.CapAll
		if fix != nil {
			caps = fix.Capabilities()
		}
		s, err := nmea.NewParser(caps).Parse(strings.TrimSpace(string(body)))
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, ParseResponse{Error: err.Error(), ErrorKind: nmea.ErrorKind(err)})
			return
		}
		writeJSON(w, http.StatusOK, ParseResponse{OK: true, Talker: s.TalkerID(), Type: s.Kind().String(), Sentence: s})
	}
}

type AboutResponse struct {
	Service    string   `json:"service"`
	NowUTC     string   `json:"now_utc"`
	GoVersion  string   `json:"go_version"`
	ModulePath string   `json:"module_path,omitempty"`
	Version    string   `json:"version,omitempty"`
	Commit     string   `json:"commit,omitempty"`
	Dirty      bool     `json:"dirty,omitempty"`
	BuildTime  string   `json:"build_time,omitempty"`
	Deps       []string `json:"deps,omitempty"`
}

func aboutHandler(w http.ResponseWriter, r *http.Request) {
	resp := AboutResponse{
		Service:   "nmeafix",
		NowUTC:    time.Now().UTC().Format(time.RFC3339Nano),
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		resp.ModulePath = bi.Main.Path
		resp.Version = bi.Main.Version
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				resp.Commit = s.Value
			case "vcs.modified":
				resp.Dirty = s.Value == "true"
			case "vcs.time":
				resp.BuildTime = s.Value
			}
		}
		for _, dep := range bi.Deps {
			resp.Deps = append(resp.Deps, dep.Path+"@"+dep.Version)
		}
		sort.Strings(resp.Deps)
	}
	writeJSON(w, http.StatusOK, resp)
}

func Serve(ctx context.Context, listenAddr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
