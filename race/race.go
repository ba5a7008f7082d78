package race

import (
	"github.com/a-bouts/pod-racer/pod"
	"github.com/a-bouts/pod-racer/vector"
)

const PodsPerSide = 2

// Course is the static race track : the checkpoints are visited in order, Laps times over
type Course struct {
	Laps        int             `json:"laps" msgpack:"laps"`
	Checkpoints []vector.Vector `json:"checkpoints" msgpack:"checkpoints"`
}

func NewCourse(laps int, checkpoints []vector.Vector) Course {
	return Course{Laps: laps, Checkpoints: checkpoints}
}

// Checkpoint returns the checkpoint targeted by a pod whose next index is next.
// The index can go past the end of the lap, the course is cyclic.
func (c Course) Checkpoint(next int) vector.Vector {
	n := len(c.Checkpoints)
	i := next % n
	if i < 0 {
		i += n
	}
	return c.Checkpoints[i]
}

func (c Course) Len() int {
	return len(c.Checkpoints)
}

// Total is the number of checkpoints to pass to finish the race
func (c Course) Total() int {
	return len(c.Checkpoints) * c.Laps
}

// State is the world as seen at the start of a turn
type State struct {
	Course    Course
	Pods      [PodsPerSide]pod.Pod
	Opponents [PodsPerSide]pod.Pod
}

func NewState(course Course) *State {
	s := &State{Course: course}
	for i := 0; i < PodsPerSide; i++ {
		s.Pods[i] = pod.New()
		s.Opponents[i] = pod.New()
	}
	return s
}

// Update refreshes every pod : the first two records are ours, the next two
// the opponent ones
func (s *State) Update(records [2 * PodsPerSide]pod.Telemetry) {
	for i := 0; i < PodsPerSide; i++ {
		s.Pods[i].Update(records[i], s.Course)
		s.Opponents[i].Update(records[i+PodsPerSide], s.Course)
	}
}

// Leader is the pod driven by the planner
func (s *State) Leader() pod.Pod {
	return s.Pods[0]
}
