package chat

import "time"

// Timer is a pending callback registered with a Scheduler.
type Timer interface {
	Stop() bool
}

// Scheduler delivers callbacks onto the goroutine that owns the conversation
// state. Transcript, Registry, AttachmentStore and Editor are only ever touched
// from that goroutine, so none of them lock.
type Scheduler interface {
	// AfterFunc runs fn on the owning goroutine once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
	// Post runs fn on the owning goroutine as soon as possible. It is called
	// from worker goroutines (network calls, file decoding).
	Post(fn func())
}
