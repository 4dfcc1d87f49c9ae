package queue

// Event is a job lifecycle notification.
type Event string

const (
	// EventWaiting fires when a job is accepted by Add.
	EventWaiting   Event = "waiting"
	EventActive    Event = "active"
	EventCompleted Event = "completed"
	// EventFailed fires after every failed try; job.LastAttempt tells
	// whether the job is dropped.
	EventFailed Event = "failed"
)

// Listener observes lifecycle events. err is set for EventFailed only.
// Listeners run on the worker goroutine and must not block.
type Listener func(event Event, job *Job, err error)

// On registers a listener for event.
func (q *Queue) On(event Event, l Listener) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners[event] = append(q.listeners[event], l)
}

func (q *Queue) emit(event Event, job *Job, err error) {
	q.mu.RLock()
	ls := q.listeners[event]
	q.mu.RUnlock()

	for _, l := range ls {
		func() {
			defer func() {
				if r := recover(); r != nil {
					q.log.Error("queue listener panicked", "event", event, "job_id", job.ID, "panic", r)
				}
			}()
			l(event, job, err)
		}()
	}
}
