package bridge

import (
	"github.com/shirou/gopsutil/v3/process"
)

// Status is a point-in-time snapshot of a Bridge.
type Status struct {
	ID         string  `json:"id" yaml:"id"`
	Command    string  `json:"command" yaml:"command"`
	State      string  `json:"state" yaml:"state"`
	PID        int     `json:"pid" yaml:"pid"`
	ExitCode   int     `json:"exit_code" yaml:"exit_code"`
	Pending    int     `json:"pending_lines" yaml:"pending_lines"`
	RSSBytes   uint64  `json:"rss_bytes,omitempty" yaml:"rss_bytes,omitempty"`
	CPUPercent float64 `json:"cpu_percent,omitempty" yaml:"cpu_percent,omitempty"`
}

// Status reports the bridge state. Resource usage is only sampled while the
// interpreter runs; sampling failures leave those fields zero.
func (b *Bridge) Status() Status {
	st := Status{
		ID:       b.id,
		Command:  b.command,
		State:    b.State().String(),
		PID:      b.PID(),
		ExitCode: b.ExitCode(),
		Pending:  b.queue.Len(),
	}

	if b.State() != StateRunning || st.PID <= 0 {
		return st
	}

	proc, err := process.NewProcess(int32(st.PID))
	if err != nil {
		b.logger.Debugw("process stats unavailable", "error", err)
		return st
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		st.RSSBytes = mem.RSS
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		st.CPUPercent = cpu
	}
	return st
}
