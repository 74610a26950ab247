package particles

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the minimum particle count to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const DefaultThreshold = 4096

// workChunk represents a range of particles for a worker to process.
type workChunk struct {
	start, end int
}

// job is the input shared by every chunk of one dispatch. It is written
// before any chunk is sent and read-only while workers run.
type job struct {
	state  *State
	t      float32
	params Params
}

// Dispatcher runs the per-particle update over a persistent worker pool.
// Every index is independent, so chunks need no coordination beyond the
// completion barrier. Dispatch must not be called concurrently.
type Dispatcher struct {
	updater    *Updater
	threshold  int
	numWorkers int
	current    job

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewDispatcher creates a dispatcher. workers <= 0 uses GOMAXPROCS and
// threshold <= 0 uses DefaultThreshold. Workers start on the first large
// dispatch.
func NewDispatcher(u *Updater, workers, threshold int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Dispatcher{
		updater:    u,
		threshold:  threshold,
		numWorkers: workers,
	}
}

// Workers returns the pool size.
func (d *Dispatcher) Workers() int { return d.numWorkers }

// Dispatch advances every particle of s to time t using params p. It blocks
// until all particles are updated.
func (d *Dispatcher) Dispatch(s *State, t float32, p Params) {
	n := s.Len()
	if n == 0 || !p.Active() {
		return
	}

	d.current = job{state: s, t: t, params: p}
	defer func() { d.current = job{} }()

	if n < d.threshold || d.numWorkers == 1 {
		d.computeChunk(0, n)
		return
	}
	d.computeParallel(n)
}

// startWorkers launches persistent worker goroutines.
func (d *Dispatcher) startWorkers() {
	if d.running {
		return
	}

	d.workChan = make(chan workChunk, d.numWorkers)
	d.doneChan = make(chan struct{}, d.numWorkers)
	d.stopChan = make(chan struct{})
	d.running = true

	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Close signals all workers to exit and waits for them. The dispatcher
// can be reused afterwards; workers restart on demand.
func (d *Dispatcher) Close() {
	if !d.running {
		return
	}

	close(d.stopChan)
	d.wg.Wait()
	close(d.workChan)
	close(d.doneChan)
	d.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopChan:
			return
		case chunk, ok := <-d.workChan:
			if !ok {
				return
			}
			d.computeChunk(chunk.start, chunk.end)
			d.doneChan <- struct{}{}
		}
	}
}

// computeParallel dispatches work to the worker pool.
func (d *Dispatcher) computeParallel(n int) {
	if !d.running {
		d.startWorkers()
	}

	chunkSize := (n + d.numWorkers - 1) / d.numWorkers

	chunksDispatched := 0
	for w := 0; w < d.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		d.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-d.doneChan
	}
}

// computeChunk updates particles [i0, i1) of the current job.
func (d *Dispatcher) computeChunk(i0, i1 int) {
	s, t, p := d.current.state, d.current.t, d.current.params
	for i := i0; i < i1; i++ {
		next := d.updater.Step(i, s.RestPosition(i), s.LivePosition(i), s.Normal(i), t, p)
		s.setLive(i, next)
	}
}
