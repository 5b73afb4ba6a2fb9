package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nmeafix/internal/gps"
	"nmeafix/internal/nmea"
)

const (
	ggaLine = "$GPGGA,092750.000,5321.6802,N,00630.3372,W,1,8,1.03,61.7,M,55.2,M,,*76"
	rmcLine = "$GPRMC,092750.000,A,5321.6802,N,00630.3372,W,0.02,31.66,280511,,,A*43"
	hdtLine = "$GPHDT,274.07,T*03"
)

var testNow = time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC)

func fedService(t *testing.T, caps nmea.Capabilities, lines ...string) *gps.Service {
	t.Helper()
	s := gps.New(gps.Config{Enable: true, Sentences: caps})
	for _, line := range lines {
		if _, err := s.HandleLine(testNow, line); err != nil {
			t.Fatalf("HandleLine(%q): %v", line, err)
		}
	}
	return s
}

func getJSON(t *testing.T, url string, wantCode int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantCode {
		t.Fatalf("GET %s code=%d want %d", url, resp.StatusCode, wantCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type=%q", ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}

func TestAPIStatus(t *testing.T) {
	st := NewStatus()
	st.SetStatic("tcp", "GGA,RMC", "")
	st.AddSection("udp", func() any { return map[string]int{"sent": 3} })

	ts := httptest.NewServer(Handler(Deps{Status: st}))
	defer ts.Close()

	var snap StatusSnapshot
	getJSON(t, ts.URL+"/api/status", http.StatusOK, &snap)
	if snap.Service != "nmeafix" {
		t.Fatalf("service=%q", snap.Service)
	}
	if snap.Source != "tcp" || snap.Sentences != "GGA,RMC" {
		t.Fatalf("source=%q sentences=%q", snap.Source, snap.Sentences)
	}
	udp, ok := snap.Sections["udp"].(map[string]any)
	if !ok || udp["sent"] != float64(3) {
		t.Fatalf("sections=%v", snap.Sections)
	}
	if snap.Disk != nil {
		t.Fatalf("disk=%v want nil without a record path", snap.Disk)
	}
}

func TestAPIStatus_DiskForRecordPath(t *testing.T) {
	st := NewStatus()
	st.SetStatic("", "", t.TempDir())
	snap := st.Snapshot(time.Time{})
	if snap.Disk == nil || snap.Disk.Path == "" {
		t.Fatalf("disk=%v", snap.Disk)
	}
}

func TestAPIFix(t *testing.T) {
	svc := fedService(t, 0, ggaLine, rmcLine)
	ts := httptest.NewServer(Handler(Deps{Fix: svc}))
	defer ts.Close()

	var snap gps.Snapshot
	getJSON(t, ts.URL+"/api/fix", http.StatusOK, &snap)
	if !snap.Valid {
		t.Fatalf("expected valid fix")
	}
	if snap.FixUTC != "2011-05-28T09:27:50.000Z" {
		t.Fatalf("fix_utc=%q", snap.FixUTC)
	}
	if snap.Accepted != 2 {
		t.Fatalf("accepted=%d want 2", snap.Accepted)
	}
}

func TestAPIFix_NoSource(t *testing.T) {
	ts := httptest.NewServer(Handler(Deps{}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/fix")
	if err != nil {
		t.Fatalf("get fix: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("code=%d want 404", resp.StatusCode)
	}
}

func TestAPISentences(t *testing.T) {
	svc := gps.New(gps.Config{Enable: true, Sentences: nmea.Enable(nmea.TypeGGA, nmea.TypeRMC)})
	ts := httptest.NewServer(Handler(Deps{Fix: svc}))
	defer ts.Close()

	var resp SentencesResponse
	getJSON(t, ts.URL+"/api/sentences", http.StatusOK, &resp)
	if strings.Join(resp.Enabled, ",") != "GGA,RMC" {
		t.Fatalf("enabled=%v", resp.Enabled)
	}
	if len(resp.Supported) != len(nmea.CapAll.Types()) {
		t.Fatalf("supported=%d want %d", len(resp.Supported), len(nmea.CapAll.Types()))
	}
	if got := strings.Join(resp.Categories["depth"], ","); got != "DBK,DBS,DPT" {
		t.Fatalf("depth=%q", got)
	}
}

// parseResult mirrors ParseResponse without the sentence body, which has an
// interface type and cannot be decoded back.
type parseResult struct {
	OK        bool   `json:"ok"`
	Talker    string `json:"talker"`
	Type      string `json:"type"`
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind"`
}

func postParse(t *testing.T, url, body string) (int, parseResult) {
	t.Helper()
	resp, err := http.Post(url+"/api/parse", "text/plain", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post parse: %v", err)
	}
	defer resp.Body.Close()
	var out parseResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	return resp.StatusCode, out
}

func TestAPIParse(t *testing.T) {
	svc := gps.New(gps.Config{Enable: true, Sentences: nmea.CapGNSS})
	ts := httptest.NewServer(Handler(Deps{Fix: svc}))
	defer ts.Close()

	cases := []struct {
		name     string
		body     string
		wantCode int
		wantType string
		wantKind string
	}{
		{name: "gga", body: ggaLine + "\r\n", wantCode: http.StatusOK, wantType: "GGA"},
		{name: "disabled type", body: hdtLine, wantCode: http.StatusUnprocessableEntity, wantKind: "unsupported"},
		{name: "bad checksum", body: strings.TrimSuffix(ggaLine, "76") + "00", wantCode: http.StatusUnprocessableEntity, wantKind: "frame"},
		{name: "empty", body: "", wantCode: http.StatusUnprocessableEntity, wantKind: "frame"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, resp := postParse(t, ts.URL, tc.body)
			if code != tc.wantCode {
				t.Fatalf("code=%d want %d (%+v)", code, tc.wantCode, resp)
			}
			if resp.OK != (tc.wantCode == http.StatusOK) {
				t.Fatalf("ok=%v", resp.OK)
			}
			if resp.Type != tc.wantType {
				t.Fatalf("type=%q want %q", resp.Type, tc.wantType)
			}
			if resp.ErrorKind != tc.wantKind {
				t.Fatalf("error_kind=%q want %q (%s)", resp.ErrorKind, tc.wantKind, resp.Error)
			}
		})
	}

	// The live fix is untouched.
	if snap := svc.Snapshot(); snap.Lines != 0 {
		t.Fatalf("lines=%d want 0", snap.Lines)
	}
}

func TestAPIParse_SentenceBody(t *testing.T) {
	ts := httptest.NewServer(Handler(Deps{}))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/parse", "text/plain", strings.NewReader(hdtLine))
	if err != nil {
		t.Fatalf("post parse: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Talker   string `json:"talker"`
		Sentence struct {
			Heading float64
		} `json:"sentence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if out.Talker != "GP" || out.Sentence.Heading != 274.07 {
		t.Fatalf("got %+v", out)
	}
}

func TestAPIParse_Limits(t *testing.T) {
	ts := httptest.NewServer(Handler(Deps{}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/parse")
	if err != nil {
		t.Fatalf("get parse: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET code=%d want 405", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/parse", "text/plain", strings.NewReader(strings.Repeat("x", maxParseBody+1)))
	if err != nil {
		t.Fatalf("post parse: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("code=%d want 413", resp.StatusCode)
	}
}

func TestAPIAbout(t *testing.T) {
	ts := httptest.NewServer(Handler(Deps{}))
	defer ts.Close()

	var about AboutResponse
	getJSON(t, ts.URL+"/api/about", http.StatusOK, &about)
	if about.Service != "nmeafix" || about.GoVersion == "" {
		t.Fatalf("about=%+v", about)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics()
	m.Observe(testNow, ggaLine, nil, &nmea.FrameError{Err: nmea.ErrChecksumMismatch})

	ts := httptest.NewServer(Handler(Deps{Metrics: m}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `nmeafix_errors_total{kind="frame"} 1`) {
		t.Fatalf("metrics body missing error counter:\n%s", body)
	}
}

func TestRootPage(t *testing.T) {
	ts := httptest.NewServer(Handler(Deps{}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get root: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code=%d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "/api/fix") {
		t.Fatalf("root page missing links: %s", body)
	}

	resp, err = http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("get unknown: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown path code=%d want 404", resp.StatusCode)
	}
}

func TestStatusRejectsPost(t *testing.T) {
	ts := httptest.NewServer(Handler(Deps{}))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/status", "application/json", nil)
	if err != nil {
		t.Fatalf("post status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("code=%d want 405", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != http.MethodGet {
		t.Fatalf("allow=%q", allow)
	}
}
