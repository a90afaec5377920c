package system

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot is a point-in-time view of host and process resource usage,
// printed in the render performance report.
type Snapshot struct {
	Taken         time.Time
	CPUPercent    float64
	MemUsedPct    float64
	ProcessRSSMB  float64
	ProcessCPUPct float64
}

// TakeSnapshot samples the host and the current process. Fields that cannot
// be read are left at zero; the first error is returned alongside.
func TakeSnapshot() (Snapshot, error) {
	s := Snapshot{Taken: time.Now()}
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
	} else {
		keep(err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemUsedPct = vm.UsedPercent
	} else {
		keep(err)
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		keep(err)
		return s, firstErr
	}
	if mi, err := proc.MemoryInfo(); err == nil {
		s.ProcessRSSMB = float64(mi.RSS) / (1 << 20)
	} else {
		keep(err)
	}
	if pct, err := proc.CPUPercent(); err == nil {
		s.ProcessCPUPct = pct
	} else {
		keep(err)
	}

	return s, firstErr
}

func (s Snapshot) String() string {
	return fmt.Sprintf("cpu %.1f%% | mem %.1f%% | process rss %.1fMB cpu %.1f%%",
		s.CPUPercent, s.MemUsedPct, s.ProcessRSSMB, s.ProcessCPUPct)
}
