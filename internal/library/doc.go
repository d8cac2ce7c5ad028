// Package library persists the durable catalog: learner profiles and the
// finished learning packages delivered to them. Sessions in flight live in
// the checkpoint store; the library only sees completed work.
package library
