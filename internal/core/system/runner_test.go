package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s *recordingSystem) Phase() Phase { return s.phase }
func (s *recordingSystem) Update(time.Duration) {
	*s.log = append(*s.log, s.name)
}

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{name: "flush", phase: PhaseOutput, log: &log})
	r.Register(&recordingSystem{name: "entity", phase: PhaseUpdate, log: &log})
	r.Register(&recordingSystem{name: "mode", phase: PhaseInput, log: &log})
	r.Register(&recordingSystem{name: "transform", phase: PhaseUpdate, log: &log})
	r.Register(&recordingSystem{name: "cleanup", phase: PhaseCleanup, log: &log})

	r.Tick(16 * time.Millisecond)

	assert.Equal(t, []string{"mode", "entity", "transform", "flush", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())
}

func TestRunnerResortsAfterLateRegister(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{name: "b", phase: PhaseOutput, log: &log})
	r.Tick(time.Millisecond)
	r.Register(&recordingSystem{name: "a", phase: PhaseUpdate, log: &log})
	r.Tick(time.Millisecond)

	assert.Equal(t, []string{"b", "a", "b"}, log)
	assert.Equal(t, uint64(2), r.Ticks())
	assert.Equal(t, 2, r.Len())
}
