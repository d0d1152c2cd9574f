// Package events provides the domain events published by the trainer and
// the emitter that dispatches them.
//
// Services emit events without knowing which handlers will process them.
// The primary components are:
// - Event: something that happened during a session (answer, acquisition, evolution)
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
// - Recorder: a bounded handler keeping the most recent events for inspection
package events
