package web

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseThermal(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "52345\n", want: 52.345},
		{in: "52", want: 52},
		{in: "\n", wantErr: true},
		{in: "hot", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseThermal(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseThermal(%q) err=%v wantErr=%v", tc.in, err, tc.wantErr)
		}
		if err == nil && got != tc.want {
			t.Fatalf("parseThermal(%q)=%v want %v", tc.in, got, tc.want)
		}
	}
}

func TestStatusCPUTemp(t *testing.T) {
	p := filepath.Join(t.TempDir(), "temp")
	if err := os.WriteFile(p, []byte("42000\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	old := thermalZonePath
	thermalZonePath = p
	defer func() { thermalZonePath = old }()

	snap := NewStatus().Snapshot(testNow)
	if snap.CPUTempC == nil || *snap.CPUTempC != 42 {
		t.Fatalf("cpu_temp_c=%v want 42", snap.CPUTempC)
	}

	thermalZonePath = filepath.Join(t.TempDir(), "missing")
	if snap := NewStatus().Snapshot(testNow); snap.CPUTempC != nil {
		t.Fatalf("cpu_temp_c=%v want nil", *snap.CPUTempC)
	}
}
