package desktop

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/deskfolio/deskfolio/internal/config"
)

// stats is the host load shown in the dock.
type stats struct {
	cpu   float64
	ram   float64
	valid bool
}

func (s stats) String() string {
	if !s.valid {
		return ""
	}
	return fmt.Sprintf("CPU %2.0f%% RAM %2.0f%%", s.cpu, s.ram)
}

type statsMsg struct {
	stats stats
}

// sampleStats reads CPU usage since the previous call and memory usage.
func sampleStats() stats {
	var s stats
	percents, err := cpu.Percent(0, false)
	if err != nil || len(percents) == 0 {
		return s
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return s
	}
	s.cpu = percents[0]
	s.ram = vm.UsedPercent
	s.valid = true
	return s
}

func sampleStatsCmd() tea.Cmd {
	return func() tea.Msg {
		return statsMsg{stats: sampleStats()}
	}
}

func nextStatsCmd() tea.Cmd {
	return tea.Tick(config.StatsUpdateInterval, func(time.Time) tea.Msg {
		return statsMsg{stats: sampleStats()}
	})
}
