package importer

import (
	"sync"

	"github.com/shardloader/hiveimport/hive"
)

// pool is a small fixed-size worker pool: n goroutines draining a job
// channel. It plays the role the source's per-stage ExecutorService plays,
// generalised to a plain Go channel-and-goroutines idiom.
type pool struct {
	jobs     chan func()
	stopping chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newPool(n, queueSize int) *pool {
	if n <= 0 {
		n = 1
	}
	if queueSize <= 0 {
		queueSize = n
	}
	p := &pool{
		jobs:     make(chan func(), queueSize),
		stopping: make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

func (p *pool) drain() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopping:
			return
		case job := <-p.jobs:
			select {
			case <-p.stopping:
				return
			default:
			}
			job()
		}
	}
}

// submit enqueues job. It returns ErrOrchestratorStopped without running job
// if the pool has been stopped; stage is used only to annotate the error.
func (p *pool) submit(stage string, job func()) error {
	select {
	case <-p.stopping:
		return hive.NewErrOrchestratorStopped(stage)
	default:
	}

	select {
	case p.jobs <- job:
		return nil
	case <-p.stopping:
		return hive.NewErrOrchestratorStopped(stage)
	}
}

// stop prevents new jobs from being picked up or submitted. In-flight jobs
// already running are left to finish; jobs still sitting in the channel are
// abandoned.
func (p *pool) stop() {
	p.stopOnce.Do(func() {
		close(p.stopping)
	})
}

func (p *pool) wait() {
	p.wg.Wait()
}
