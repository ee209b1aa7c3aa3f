// Package monitor reports process and host health for the /health endpoint.
package monitor

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sync/errgroup"
)

const (
	probeTimeout   = 2 * time.Second
	cpuSample      = 200 * time.Millisecond
	memoryHighMark = 90.0
)

// Service represents a health reporter.
type Service interface {
	// Health returns a map of health status information. It always contains
	// "status" ("up" or "degraded").
	Health(ctx context.Context) map[string]string
}

// Probes are the host readings the service collects. They are swappable so
// the reporter can be exercised without a real host.
type Probes struct {
	Memory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	CPU    func(ctx context.Context) (float64, error)
	Load   func(ctx context.Context) (*load.AvgStat, error)
	Uptime func(ctx context.Context) (uint64, error)
}

// HostProbes reads the live host through gopsutil.
func HostProbes() Probes {
	return Probes{
		Memory: mem.VirtualMemoryWithContext,
		CPU: func(ctx context.Context) (float64, error) {
			pct, err := cpu.PercentWithContext(ctx, cpuSample, false)
			if err != nil {
				return 0, err
			}
			if len(pct) == 0 {
				return 0, fmt.Errorf("no cpu samples")
			}
			return pct[0], nil
		},
		Load:   load.AvgWithContext,
		Uptime: host.UptimeWithContext,
	}
}

type service struct {
	probes  Probes
	version string
	started time.Time
}

// NewService builds a health reporter for the given probes.
func NewService(probes Probes, version string) Service {
	return &service{probes: probes, version: version, started: time.Now()}
}

// Health runs all probes concurrently. A failing probe marks the service
// degraded and records its error; the remaining readings are still returned.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var mu sync.Mutex
	stats := map[string]string{
		"status":         "up",
		"version":        s.version,
		"process_uptime": time.Since(s.started).Round(time.Second).String(),
		"goroutines":     strconv.Itoa(runtime.NumGoroutine()),
	}

	set := func(kv ...string) {
		mu.Lock()
		defer mu.Unlock()
		for i := 0; i+1 < len(kv); i += 2 {
			stats[kv[i]] = kv[i+1]
		}
	}
	fail := func(name string, err error) {
		log.Warn().Err(err).Str("probe", name).Msg("Health probe failed")
		set("status", "degraded", name+"_error", err.Error())
	}

	var g errgroup.Group

	if s.probes.Memory != nil {
		g.Go(func() error {
			vm, err := s.probes.Memory(ctx)
			if err != nil {
				fail("memory", err)
				return nil
			}
			set(
				"memory_total_mb", strconv.FormatUint(vm.Total/1024/1024, 10),
				"memory_available_mb", strconv.FormatUint(vm.Available/1024/1024, 10),
				"memory_used_percent", strconv.FormatFloat(vm.UsedPercent, 'f', 1, 64),
			)
			if vm.UsedPercent > memoryHighMark {
				set("message", "The host is running low on memory.")
			}
			return nil
		})
	}

	if s.probes.CPU != nil {
		g.Go(func() error {
			pct, err := s.probes.CPU(ctx)
			if err != nil {
				fail("cpu", err)
				return nil
			}
			set("cpu_percent", strconv.FormatFloat(pct, 'f', 1, 64))
			return nil
		})
	}

	if s.probes.Load != nil {
		g.Go(func() error {
			avg, err := s.probes.Load(ctx)
			if err != nil {
				fail("load", err)
				return nil
			}
			set(
				"load_1", strconv.FormatFloat(avg.Load1, 'f', 2, 64),
				"load_5", strconv.FormatFloat(avg.Load5, 'f', 2, 64),
				"load_15", strconv.FormatFloat(avg.Load15, 'f', 2, 64),
			)
			return nil
		})
	}

	if s.probes.Uptime != nil {
		g.Go(func() error {
			secs, err := s.probes.Uptime(ctx)
			if err != nil {
				fail("uptime", err)
				return nil
			}
			set("host_uptime", (time.Duration(secs) * time.Second).String())
			return nil
		})
	}

	_ = g.Wait()
	return stats
}
