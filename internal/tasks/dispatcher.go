package tasks

import (
	"errors"
	"log"
	"sync"
)

// ResponseTask is the deferred work item created when a user sends a message:
// generate the character's reply, score it, and fold the score into the
// leaderboards. TaskID is derived from the triggering message so log lines
// for one turn can be correlated.
type ResponseTask struct {
	TaskID       string
	CharacterID  uint
	UserID       uint
	CurrentScore float64
	LastMessage  string
}

// Handler runs one response task to completion or terminal failure.
type Handler interface {
	GenerateResponse(task ResponseTask) error
}

var ErrQueueFull = errors.New("response queue is full")

// Dispatcher owns the bounded work queue and the worker pool draining it.
// Once a task is dequeued it runs to completion; there is no cancellation and
// no retry beyond what the handler itself does internally.
type Dispatcher struct {
	queue   chan ResponseTask
	workers int

	mu      sync.Mutex
	stopped bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewDispatcher(workers, queueSize int) *Dispatcher {
	return &Dispatcher{
		queue:   make(chan ResponseTask, queueSize),
		workers: workers,
		stopCh:  make(chan struct{}),
	}
}

func (d *Dispatcher) Start(handler Handler) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i, handler)
	}
	log.Printf("[Dispatcher] started %d workers", d.workers)
}

func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	close(d.stopCh)
	d.wg.Wait()
	log.Println("[Dispatcher] stopped")
}

// Enqueue hands a task to the worker pool without blocking. A full queue is
// reported to the caller instead of silently dropping the task.
func (d *Dispatcher) Enqueue(task ResponseTask) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return errors.New("dispatcher is stopped")
	}
	d.mu.Unlock()

	select {
	case d.queue <- task:
		log.Printf("[Dispatcher] task %s queued (character=%d user=%d)", task.TaskID, task.CharacterID, task.UserID)
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) worker(id int, handler Handler) {
	defer d.wg.Done()
	for {
		select {
		case <-d.stopCh:
			return
		case task := <-d.queue:
			if err := handler.GenerateResponse(task); err != nil {
				log.Printf("[Dispatcher] worker %d: task %s failed: %v", id, task.TaskID, err)
				continue
			}
			log.Printf("[Dispatcher] worker %d: task %s done", id, task.TaskID)
		}
	}
}
