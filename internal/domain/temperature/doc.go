// Package temperature holds the threshold state machine of the monitor.
//
// A Monitor remembers the latest sample and whether an alert was already
// raised for the current excursion above the threshold. It has no clock, no
// goroutines and no I/O; the owner feeds samples in order and acts on the
// returned Transition.
package temperature
