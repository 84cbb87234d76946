package stats

import "sync/atomic"

// Probe collects cross-run attempt/success counters, the same
// relaxed-ordering atomic-counter shape the teacher uses for DNS query
// counts. It is safe for concurrent use.
type Probe struct {
	attemptsTotal  atomic.Uint64
	successesTotal atomic.Uint64
	runsTotal      atomic.Uint64
	runsInFlight   atomic.Int64
}

// NewProbe creates a new, zeroed probe statistics collector.
func NewProbe() *Probe {
	return &Probe{}
}

// RunStarted records the start of an orchestrator run.
func (p *Probe) RunStarted() {
	p.runsTotal.Add(1)
	p.runsInFlight.Add(1)
}

// RunFinished records the end of an orchestrator run.
func (p *Probe) RunFinished() {
	p.runsInFlight.Add(-1)
}

// RecordAttempt records one completed credential attempt and whether it
// succeeded.
func (p *Probe) RecordAttempt(success bool) {
	p.attemptsTotal.Add(1)
	if success {
		p.successesTotal.Add(1)
	}
}

// AddAttempts records n completed credential attempts, s of which
// succeeded. Used when a whole run's counts are known only after it
// finishes, rather than one attempt at a time.
func (p *Probe) AddAttempts(n, s int64) {
	p.attemptsTotal.Add(uint64(n))
	p.successesTotal.Add(uint64(s))
}

// ProbeSnapshot is a point-in-time view of Probe's counters.
type ProbeSnapshot struct {
	AttemptsTotal  uint64
	SuccessesTotal uint64
	RunsTotal      uint64
	RunsInFlight   int64
}

// Snapshot returns the current counter values.
func (p *Probe) Snapshot() ProbeSnapshot {
	return ProbeSnapshot{
		AttemptsTotal:  p.attemptsTotal.Load(),
		SuccessesTotal: p.successesTotal.Load(),
		RunsTotal:      p.runsTotal.Load(),
		RunsInFlight:   p.runsInFlight.Load(),
	}
}
