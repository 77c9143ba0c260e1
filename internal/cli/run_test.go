package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/me/ratefeed/internal/config"
	"github.com/me/ratefeed/internal/logging"
)

func testConfig(baseURL, outDir string) *config.Config {
	cfg := &config.Config{
		BaseURL:   baseURL,
		AccessKey: "test-key",
		Retries:   0,
		Timeout:   2 * time.Second,
		Quotes:    []string{"EUR", "USD"},
		Width:     100,
	}
	cfg.Sink.Backend = "file"
	cfg.Sink.OutputDir = outDir
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

func fixedNow(t *testing.T, day string) func() time.Time {
	t.Helper()
	ts, err := time.Parse(dateFormat, day)
	if err != nil {
		t.Fatal(err)
	}
	return func() time.Time { return ts }
}

func TestRunExport_OverwritesYesterdayAppendsToday(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("access_key"); got != "test-key" {
			t.Errorf("access_key = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("symbols"); got != "EUR,USD" {
			t.Errorf("symbols = %q, want EUR,USD", got)
		}

		date := strings.TrimPrefix(r.URL.Path, "/")
		rate := map[string]float64{"2024-03-09": 0.85, "2024-03-10": 0.86}[date]
		fmt.Fprintf(w, `{"date":%q,"rates":{"EUR":%g,"USD":1.0}}`, date, rate)
	}))
	defer srv.Close()

	outDir := t.TempDir()

	// Stale content from a previous day must disappear on overwrite.
	if err := os.WriteFile(filepath.Join(outDir, "EUR.csv"), []byte("2024-03-01,0.80\n2024-03-02,0.81\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(srv.URL, outDir)
	err := runExport(context.Background(), cfg, logging.Discard(), fixedNow(t, "2024-03-10"))
	if err != nil {
		t.Fatalf("runExport() error = %v", err)
	}

	eur, err := os.ReadFile(filepath.Join(outDir, "EUR.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "2024-03-09,0.85\n2024-03-10,0.86\n"; string(eur) != want {
		t.Errorf("EUR.csv = %q, want %q", eur, want)
	}

	usd, err := os.ReadFile(filepath.Join(outDir, "USD.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "2024-03-09,1\n2024-03-10,1\n"; string(usd) != want {
		t.Errorf("USD.csv = %q, want %q", usd, want)
	}
}

func TestRunExport_SurfacesFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL, t.TempDir())
	err := runExport(context.Background(), cfg, logging.Discard(), fixedNow(t, "2024-03-10"))
	if err == nil {
		t.Fatal("runExport() expected error")
	}
	if !strings.Contains(err.Error(), "2024-03-09") {
		t.Errorf("error %q should name the failed export date", err)
	}
}

func TestBuildURL(t *testing.T) {
	cfg := testConfig("https://rates.test/api", "")

	day, _ := time.Parse(dateFormat, "2024-03-09")
	got, err := buildURL(cfg, day)
	if err != nil {
		t.Fatalf("buildURL() error = %v", err)
	}

	if !strings.HasPrefix(got, "https://rates.test/api/2024-03-09?") {
		t.Errorf("url = %q, want dated path", got)
	}
	if !strings.Contains(got, "access_key=test-key") {
		t.Errorf("url = %q, want access key param", got)
	}
	if !strings.Contains(got, "symbols=EUR%2CUSD") {
		t.Errorf("url = %q, want symbols param", got)
	}
}

func TestBuildSink_UnknownBackend(t *testing.T) {
	cfg := testConfig("https://rates.test/api", "")
	cfg.Sink.Backend = "smoke-signal"

	if _, _, _, err := buildSink(cfg, logging.Discard()); err == nil {
		t.Fatal("buildSink() expected error")
	}
}

func TestBuildSink_SQLite(t *testing.T) {
	cfg := testConfig("https://rates.test/api", "")
	cfg.Sink.Backend = "sqlite"
	cfg.Sink.SQLitePath = filepath.Join(t.TempDir(), "lines.db")

	s, pathFor, closeSink, err := buildSink(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("buildSink() error = %v", err)
	}
	defer closeSink()

	if s == nil {
		t.Fatal("buildSink() returned nil sink")
	}
	if got := pathFor("EUR"); got != "EUR" {
		t.Errorf("pathFor(EUR) = %q, want EUR", got)
	}
}
