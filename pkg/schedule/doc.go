// Package schedule runs deferred one-shot tasks, such as the Note Off half of
// a timed MIDI note.
//
// # Task Lifecycle
//
// A task starts counting when it is scheduled. When its delay elapses the
// task function runs once on its own goroutine and the task is forgotten.
//
// # No Cancellation
//
// Scheduled tasks cannot be cancelled or replaced. A deferred Note Off must
// still be sent even if the message that scheduled it was followed by others
// on the same note, so there is no handle to stop it.
//
// # Shutdown
//
// Wait blocks until every pending task has run or the context ends. Callers
// use it to give outstanding Note Offs a chance to land before closing the
// MIDI output. Tasks scheduled after Close are dropped.
package schedule
