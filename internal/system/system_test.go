package system

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	files := []string{"old.pdf", "new.PNG", "newest.txt", "mid.jpg"}
	mods := []time.Duration{0, 3 * time.Hour, 5 * time.Hour, time.Hour}
	for i, name := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		mod := time.Now().Add(mods[i])
		os.Chtimes(p, mod, mod)
	}
	os.Mkdir(filepath.Join(dir, "folder.png"), 0755)

	got, err := FindLatest(dir, ".pdf", ".png", ".jpg")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "new.PNG" {
		t.Fatalf("latest = %s, want new.PNG", got)
	}

	got, err = FindLatest(dir, ".pdf")
	if err != nil || filepath.Base(got) != "old.pdf" {
		t.Fatalf("latest pdf = %s, %v", got, err)
	}

	if _, err := FindLatest(dir, ".mp4"); err == nil {
		t.Fatal("expected an error when nothing matches")
	}
	if _, err := FindLatest(filepath.Join(dir, "missing"), ".pdf"); err == nil {
		t.Fatal("expected an error for a missing dir")
	}
}

func TestReportFields(t *testing.T) {
	r := Report{PID: 42, RSS: 1536, VMS: 5 << 20, Threads: 3, Goroutines: 7}

	var buf bytes.Buffer
	l := zerolog.New(&buf)
	l.Info().EmbedObject(r).Msg("report")

	for _, want := range []string{`"pid":42`, `"rss":"1.5 KiB"`, `"vms":"5.0 MiB"`, `"threads":3`, `"goroutines":7`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log line missing %s: %s", want, buf.String())
		}
	}
}

func TestCurrentProcess(t *testing.T) {
	r, err := CurrentProcess(context.Background())
	if err != nil {
		t.Skipf("process info unavailable: %v", err)
	}
	if r.PID != int32(os.Getpid()) {
		t.Fatalf("pid = %d", r.PID)
	}
	if r.Goroutines < 1 {
		t.Fatalf("goroutines = %d", r.Goroutines)
	}

	var buf bytes.Buffer
	l := zerolog.New(&buf)
	l.Info().EmbedObject(r).Msg("report")
	if !strings.Contains(buf.String(), `"pid":`) || !strings.Contains(buf.String(), `"rss":`) {
		t.Fatalf("log line = %s", buf.String())
	}
}
