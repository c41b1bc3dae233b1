// Package media is the file-backed media provider. A player becomes ready
// once ffprobe confirms the file carries a decodable video stream; playback
// itself is only tracked, not rendered.
package media

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNoVideoStream is reported for files without a video stream.
var ErrNoVideoStream = errors.New("no video stream")

// Info describes the first video stream of a file.
type Info struct {
	Codec    string
	Width    int
	Height   int
	Duration time.Duration
}

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, path string) (Info, error)

func (f ProberFunc) Probe(ctx context.Context, path string) (Info, error) { return f(ctx, path) }

// FFProbe runs the ffprobe binary.
type FFProbe struct {
	Bin string
}

// LookupFFProbe finds ffprobe on PATH.
func LookupFFProbe() (*FFProbe, error) {
	bin, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	return &FFProbe{Bin: bin}, nil
}

func (f *FFProbe) Probe(ctx context.Context, path string) (Info, error) {
	cmd := exec.CommandContext(ctx, f.Bin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name,width,height:format=duration",
		"-of", "default=noprint_wrappers=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return Info{}, ctx.Err()
		}
		return Info{}, fmt.Errorf("ffprobe %s: %v, output: %s", path, err, strings.TrimSpace(string(out)))
	}
	return parseProbe(out)
}

// parseProbe reads ffprobe key=value output.
func parseProbe(out []byte) (Info, error) {
	var info Info
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok || value == "N/A" {
			continue
		}
		switch key {
		case "codec_name":
			info.Codec = value
		case "width":
			info.Width, _ = strconv.Atoi(value)
		case "height":
			info.Height, _ = strconv.Atoi(value)
		case "duration":
			var secs float64
			if _, err := fmt.Sscanf(value, "%f", &secs); err == nil {
				info.Duration = time.Duration(secs * float64(time.Second))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return Info{}, err
	}
	if info.Codec == "" || info.Width <= 0 || info.Height <= 0 {
		return Info{}, ErrNoVideoStream
	}
	return info, nil
}
