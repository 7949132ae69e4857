package hexruntime

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStats is the health snapshot exposed through the API.
type SystemStats struct {
	TileCount  int     `json:"tileCount"`
	PathCount  int     `json:"pathCount"`
	ChangeTick uint64  `json:"changeTick"`
	Goroutines int     `json:"goroutines"`
	CPUPercent float64 `json:"cpuPercent"`
	MemUsedPct float64 `json:"memUsedPercent"`
}

// GetSystemStats collects map counters plus host CPU/memory usage.
// Sampling errors leave the corresponding field at zero; stats are
// informational only.
func GetSystemStats() *SystemStats {
	st.mu.RLock()
	stats := &SystemStats{
		TileCount:  len(st.tiles),
		PathCount:  len(st.paths),
		ChangeTick: st.changeTick,
	}
	st.mu.RUnlock()

	stats.Goroutines = runtime.NumGoroutine()
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemUsedPct = vm.UsedPercent
	}
	return stats
}
