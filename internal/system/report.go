// Package system holds host helpers: file discovery and the process
// resource report printed after a run.
package system

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Report is a snapshot of this process's resource usage.
type Report struct {
	PID        int32
	RSS        uint64
	VMS        uint64
	Threads    int32
	FDs        int32
	CPUPercent float64
	Goroutines int
	Uptime     time.Duration
	HostUsed   float64
}

// CurrentProcess collects a Report. Counters the platform cannot provide
// are left zero.
func CurrentProcess(ctx context.Context) (Report, error) {
	pid := int32(os.Getpid())
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return Report{}, err
	}

	r := Report{PID: pid, Goroutines: runtime.NumGoroutine()}
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil {
		r.RSS, r.VMS = mi.RSS, mi.VMS
	}
	if n, err := p.NumThreadsWithContext(ctx); err == nil {
		r.Threads = n
	}
	if n, err := p.NumFDsWithContext(ctx); err == nil {
		r.FDs = n
	}
	if c, err := p.CPUPercentWithContext(ctx); err == nil {
		r.CPUPercent = c
	}
	if ms, err := p.CreateTimeWithContext(ctx); err == nil {
		r.Uptime = time.Since(time.UnixMilli(ms)).Round(time.Millisecond)
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		r.HostUsed = vm.UsedPercent
	}
	return r, nil
}

func (r Report) MarshalZerologObject(e *zerolog.Event) {
	e.Int32("pid", r.PID).
		Str("rss", humanize.IBytes(r.RSS)).
		Str("vms", humanize.IBytes(r.VMS)).
		Int32("threads", r.Threads).
		Int32("fds", r.FDs).
		Float64("cpu_pct", r.CPUPercent).
		Int("goroutines", r.Goroutines).
		Dur("uptime", r.Uptime).
		Float64("host_mem_pct", r.HostUsed)
}
