package meshundo

import "sync"

// workerPool runs compaction tasks on a single background goroutine in
// submission order. There is no cancellation: Wait blocks until every task
// submitted so far has finished, and Stop shuts the goroutine down after
// draining.
//
// Only the submitting goroutine calls Push, Wait, and Stop; the queue
// channel is the one structure shared with the worker.
type workerPool struct {
	tasks   chan func()
	pending sync.WaitGroup
	done    chan struct{}
}

func newWorkerPool() *workerPool {
	p := &workerPool{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *workerPool) run() {
	defer close(p.done)
	for task := range p.tasks {
		task()
		p.pending.Done()
	}
}

// Push enqueues a task. Blocks only when the queue is full.
func (p *workerPool) Push(task func()) {
	p.pending.Add(1)
	p.tasks <- task
}

// Wait blocks until every pushed task has completed. It is a full barrier
// over the whole queue, not a per-task join.
func (p *workerPool) Wait() {
	p.pending.Wait()
}

// Stop drains the queue and terminates the worker goroutine.
func (p *workerPool) Stop() {
	close(p.tasks)
	<-p.done
}
