// Package clock abstracts the current time so booking rules can be tested
// against fixed instants.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type system struct{}

// NewSystem returns a Clock backed by time.Now in UTC.
func NewSystem() Clock { return system{} }

func (system) Now() time.Time { return time.Now().UTC() }

type fixed time.Time

// NewFixed returns a Clock that always reports t.
func NewFixed(t time.Time) Clock { return fixed(t.UTC()) }

func (f fixed) Now() time.Time { return time.Time(f) }
