package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaultsFromMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *c != *Defaults() {
		t.Fatalf("got %+v want %+v", *c, *Defaults())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Defaults()
	if err := c.Set("listen_addr", "127.0.0.1:9000"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set("histogram_bins", "25"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set("chart_width_in", "8.5"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ListenAddr != "127.0.0.1:9000" || got.HistogramBins != 25 || got.ChartWidthIn != 8.5 {
		t.Fatalf("unexpected config %+v", *got)
	}
	if got.PreviewRows != 10 {
		t.Fatalf("default lost: preview_rows=%d", got.PreviewRows)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Defaults()
	c.MaxUploadMB = 5
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Setenv("PULSEBOARD_MAX_UPLOAD_MB", "7")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.MaxUploadMB != 7 {
		t.Fatalf("max_upload_mb=%d want 7", got.MaxUploadMB)
	}
}

func TestSetRejectsBadValues(t *testing.T) {
	c := Defaults()
	cases := map[string]string{
		"histogram_bins":  "0",
		"preview_rows":    "ten",
		"chart_height_in": "-1",
		"listen_addr":     "",
		"api_key":         "x",
	}
	for k, v := range cases {
		if err := c.Set(k, v); err == nil {
			t.Fatalf("Set(%q, %q) should fail", k, v)
		}
	}
	if *c != *Defaults() {
		t.Fatalf("failed sets changed config: %+v", *c)
	}
}

func TestKeysSorted(t *testing.T) {
	keys := Keys()
	if len(keys) != 9 {
		t.Fatalf("keys=%v", keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}
