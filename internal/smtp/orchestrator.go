package smtp

import (
	"context"
	"sync"
	"sync/atomic"
)

// SuccessFunc is invoked once per successful credential, possibly
// concurrently from multiple workers; the host is responsible for its own
// internal safety.
type SuccessFunc func(Outcome)

// ProgressFunc is invoked after every completed attempt (success or not)
// with the total number of credentials planned and the number completed so
// far.
type ProgressFunc func(totalPlanned, completed int)

// Orchestrator fans a cartesian usernames x passwords credential set out
// across a pool of workers, each driving a fresh Task to termination
// (the SMTP Prober Orchestrator of the spec).
type Orchestrator struct {
	cfg    Config
	params Params

	onSuccess  SuccessFunc
	onProgress ProgressFunc

	newStream func() Stream

	cursorMu     sync.Mutex
	userIdx      int
	passIdx      int
	totalPlanned int

	resultsMu sync.Mutex
	results   []Outcome

	stopped  atomic.Bool
	attempts atomic.Int64
	wg       sync.WaitGroup
}

// NewOrchestrator builds an Orchestrator for cfg/params. newStream
// constructs a fresh production Stream per attempt; pass nil in production
// to default to TCP, or a scripted factory in tests.
func NewOrchestrator(cfg Config, params Params, onSuccess SuccessFunc, onProgress ProgressFunc, newStream func() Stream) *Orchestrator {
	cfg = cfg.normalized()
	params = params.normalized()
	if newStream == nil {
		newStream = func() Stream { return newTCPStream(cfg.Timeout) }
	}
	return &Orchestrator{
		cfg:          cfg,
		params:       params,
		onSuccess:    onSuccess,
		onProgress:   onProgress,
		newStream:    newStream,
		totalPlanned: len(params.Usernames) * len(params.Passwords),
	}
}

// Run spawns params.Parallelism workers and blocks until every credential
// has been tried, stop() has been called, or ctx is canceled. It returns
// the accumulated successful outcomes.
func (o *Orchestrator) Run(ctx context.Context) []Outcome {
	for i := uint16(0); i < o.params.Parallelism; i++ {
		o.wg.Add(1)
		go o.worker(ctx)
	}
	o.wg.Wait()
	o.resultsMu.Lock()
	defer o.resultsMu.Unlock()
	out := make([]Outcome, len(o.results))
	copy(out, o.results)
	return out
}

// Stop sets the stop flag and blocks until every worker has exited.
// Idempotent: calling it more than once, or from more than one goroutine,
// is safe.
func (o *Orchestrator) Stop() {
	o.stopped.Store(true)
	o.wg.Wait()
}

// Attempts reports the number of credentials tried so far.
func (o *Orchestrator) Attempts() int64 {
	return o.attempts.Load()
}

// TotalPlanned reports the size of the full cartesian credential set.
func (o *Orchestrator) TotalPlanned() int {
	return o.totalPlanned
}

func (o *Orchestrator) worker(ctx context.Context) {
	defer o.wg.Done()
	for {
		if ctx.Err() != nil || o.stopped.Load() {
			return
		}
		username, password, ok := o.nextCredential()
		if !ok {
			return
		}

		task := NewTask(o.cfg, o.newStream)
		outcome, err := task.Run(ctx, username, password)

		completed := o.attempts.Add(1)
		if err == nil && outcome.Success {
			o.resultsMu.Lock()
			o.results = append(o.results, outcome)
			o.resultsMu.Unlock()
			if o.onSuccess != nil {
				o.onSuccess(outcome)
			}
			if o.params.StopOnFirstSuccess {
				o.stopped.Store(true)
			}
		}
		if o.onProgress != nil {
			o.onProgress(o.totalPlanned, int(completed))
		}
	}
}

// nextCredential atomically advances the cartesian cursor in row-major
// order (outer loop = username) and returns the next pair, or ok=false
// once exhausted or stop has been requested.
func (o *Orchestrator) nextCredential() (username, password string, ok bool) {
	o.cursorMu.Lock()
	defer o.cursorMu.Unlock()

	if o.stopped.Load() {
		return "", "", false
	}
	if o.userIdx >= len(o.params.Usernames) {
		return "", "", false
	}

	username = o.params.Usernames[o.userIdx]
	password = o.params.Passwords[o.passIdx]

	o.passIdx++
	if o.passIdx >= len(o.params.Passwords) {
		o.passIdx = 0
		o.userIdx++
	}
	return username, password, true
}
