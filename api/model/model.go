package model

import (
	"github.com/a-bouts/pod-racer/genetic"
	"github.com/a-bouts/pod-racer/pod"
	"github.com/a-bouts/pod-racer/vector"
)

type Course struct {
	Laps        int             `json:"laps" msgpack:"laps"`
	Checkpoints []vector.Vector `json:"checkpoints" msgpack:"checkpoints"`
	Seed        int64           `json:"seed" msgpack:"seed"`
}

type Session struct {
	ID string `json:"id" msgpack:"id"`
}

type Turn struct {
	Pods []pod.Telemetry `json:"pods" msgpack:"pods"`
}

type TurnResult struct {
	Turn        int            `json:"turn" msgpack:"turn"`
	Commands    []string       `json:"commands" msgpack:"commands"`
	Generations int            `json:"generations" msgpack:"generations"`
	Simulations uint64         `json:"simulations" msgpack:"simulations"`
	Best        genetic.Genome `json:"best" msgpack:"best"`
}

type Simulation struct {
	Checkpoints []vector.Vector `json:"checkpoints" msgpack:"checkpoints"`
	Pod         pod.Pod         `json:"pod" msgpack:"pod"`
	Controls    []pod.Control   `json:"controls" msgpack:"controls"`
}

type Trajectory struct {
	States []pod.Pod `json:"states" msgpack:"states"`
}
