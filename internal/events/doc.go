// Package events decouples the code that asks for background work from the
// code that performs it.
//
// The generation service publishes a TaskRequestEvent once a task record
// exists; the task package registers a handler that turns the event into a
// queued job. Handlers are selected by event type.
package events
