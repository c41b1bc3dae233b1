package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    Info
		wantErr error
	}{
		{
			name: "full",
			out:  "codec_name=h264\nwidth=1920\nheight=1080\nduration=12.500000\n",
			want: Info{Codec: "h264", Width: 1920, Height: 1080, Duration: 12500 * time.Millisecond},
		},
		{
			name: "unknown duration",
			out:  "codec_name=hevc\nwidth=640\nheight=360\nduration=N/A\n",
			want: Info{Codec: "hevc", Width: 640, Height: 360},
		},
		{
			name:    "audio only",
			out:     "duration=3.0\n",
			wantErr: ErrNoVideoStream,
		},
		{
			name:    "empty",
			out:     "",
			wantErr: ErrNoVideoStream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbe([]byte(tt.out))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("info = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "iphone15.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitOutcome(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("no readiness outcome")
		return nil
	}
}

func TestProviderReady(t *testing.T) {
	info := Info{Codec: "h264", Width: 1280, Height: 720, Duration: time.Second}
	p := NewProvider(ProberFunc(func(ctx context.Context, path string) (Info, error) {
		return info, nil
	}))

	pl, err := p.Open(context.Background(), writeVideo(t))
	if err != nil {
		t.Fatal(err)
	}
	ch := make(chan error, 1)
	pl.Observe(func(err error) { ch <- err })
	if err := waitOutcome(t, ch); err != nil {
		t.Fatalf("outcome = %v", err)
	}

	player := pl.(*Player)
	if player.Info() != info {
		t.Fatalf("info = %+v", player.Info())
	}
	pl.SetLooping(true)
	pl.Play()
	if !player.Playing() {
		t.Fatal("not playing")
	}
	pl.Pause()
	if player.Playing() {
		t.Fatal("still playing after pause")
	}
	if err := pl.Close(); err != nil {
		t.Fatal(err)
	}
	if err := pl.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second close = %v", err)
	}
	pl.Play()
	if player.Playing() {
		t.Fatal("closed player started playing")
	}
}

func TestProviderCounters(t *testing.T) {
	p := NewProvider(ProberFunc(func(ctx context.Context, path string) (Info, error) {
		return Info{Codec: "h264"}, nil
	}))

	a, err := p.Open(context.Background(), writeVideo(t))
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Open(context.Background(), writeVideo(t))
	if err != nil {
		t.Fatal(err)
	}

	a.Play()
	a.Play()
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	b.Play()
	b.Pause()

	if p.Opened() != 2 || p.Live() != 1 || p.PeakPlaying() != 1 {
		t.Fatalf("opened %d, live %d, peak %d", p.Opened(), p.Live(), p.PeakPlaying())
	}
	b.Close()
	b.Close()
	if p.Live() != 0 {
		t.Fatalf("live = %d after closing both", p.Live())
	}
}

func TestProviderProbeError(t *testing.T) {
	p := NewProvider(ProberFunc(func(ctx context.Context, path string) (Info, error) {
		return Info{}, ErrNoVideoStream
	}))
	pl, err := p.Open(context.Background(), writeVideo(t))
	if err != nil {
		t.Fatal(err)
	}
	ch := make(chan error, 1)
	pl.Observe(func(err error) { ch <- err })
	if err := waitOutcome(t, ch); !errors.Is(err, ErrNoVideoStream) {
		t.Fatalf("outcome = %v", err)
	}
}

func TestProviderOpenErrors(t *testing.T) {
	p := NewProvider(ProberFunc(func(ctx context.Context, path string) (Info, error) {
		t.Error("probe must not run")
		return Info{}, nil
	}))
	if _, err := p.Open(context.Background(), filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Fatal("missing file opened")
	}
	if _, err := p.Open(context.Background(), t.TempDir()); err == nil {
		t.Fatal("directory opened")
	}
}

func TestProviderCancelledBeforeReady(t *testing.T) {
	started := make(chan struct{})
	p := NewProvider(ProberFunc(func(ctx context.Context, path string) (Info, error) {
		close(started)
		<-ctx.Done()
		return Info{}, ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	pl, err := p.Open(ctx, writeVideo(t))
	if err != nil {
		t.Fatal(err)
	}
	calls := make(chan error, 1)
	stop := pl.Observe(func(err error) { calls <- err })

	<-started
	stop()
	if err := pl.Close(); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case err := <-calls:
		t.Fatalf("observer called after stop: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLookupFFProbe(t *testing.T) {
	f, err := LookupFFProbe()
	if err != nil {
		t.Skip("ffprobe not installed")
	}
	if f.Bin == "" {
		t.Fatal("empty binary path")
	}
}
