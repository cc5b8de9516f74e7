package studio

import (
	"time"

	"github.com/lehigh-university-libraries/stylist/internal/images"
)

// State is the lifecycle of one generation attempt. Exactly one of Idle,
// Loading, Succeeded or Failed holds at a time.
type State interface {
	Name() string
	isState()
}

// Idle is the resting state: nothing in flight, nothing to report.
type Idle struct{}

// Loading means an edit request is outstanding.
type Loading struct {
	Started time.Time
}

// Succeeded holds the image returned by the last attempt.
type Succeeded struct {
	Result images.Asset
}

// Failed holds the user-readable message for the last attempt.
type Failed struct {
	Message string
}

func (Idle) Name() string      { return "idle" }
func (Loading) Name() string   { return "loading" }
func (Succeeded) Name() string { return "succeeded" }
func (Failed) Name() string    { return "failed" }

func (Idle) isState()      {}
func (Loading) isState()   {}
func (Succeeded) isState() {}
func (Failed) isState()    {}
