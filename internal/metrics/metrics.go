// Package metrics records ledger activity and HTTP traffic.
package metrics

import (
	"time"

	"github.com/yukikurage/pmo-timeline-api/internal/models"
)

// Recorder receives domain and transport measurements. Implementations must
// be safe for concurrent use.
type Recorder interface {
	AssignmentGrabbed(role models.AssignmentRole)
	AssignmentReleased(role models.AssignmentRole)
	ReleaseConflict()
	TimelineBuilt(cached bool, d time.Duration)
	HTTPRequest(method, route string, status int, d time.Duration)
}

// Nop discards everything.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) AssignmentGrabbed(models.AssignmentRole)        {}
func (Nop) AssignmentReleased(models.AssignmentRole)       {}
func (Nop) ReleaseConflict()                               {}
func (Nop) TimelineBuilt(bool, time.Duration)              {}
func (Nop) HTTPRequest(string, string, int, time.Duration) {}
