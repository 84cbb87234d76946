package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeSnapshot(t *testing.T) {
	p := NewProbe()
	p.RunStarted()
	p.RecordAttempt(false)
	p.RecordAttempt(true)
	p.RecordAttempt(false)
	p.RunFinished()

	snap := p.Snapshot()
	assert.EqualValues(t, 3, snap.AttemptsTotal)
	assert.EqualValues(t, 1, snap.SuccessesTotal)
	assert.EqualValues(t, 1, snap.RunsTotal)
	assert.EqualValues(t, 0, snap.RunsInFlight)
}

func TestProbeAddAttempts(t *testing.T) {
	p := NewProbe()
	p.AddAttempts(50, 2)
	snap := p.Snapshot()
	assert.EqualValues(t, 50, snap.AttemptsTotal)
	assert.EqualValues(t, 2, snap.SuccessesTotal)
}

func TestProbeConcurrentSafety(t *testing.T) {
	p := NewProbe()
	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			p.RecordAttempt(i%2 == 0)
			done <- struct{}{}
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}
	assert.EqualValues(t, 20, p.Snapshot().AttemptsTotal)
}
