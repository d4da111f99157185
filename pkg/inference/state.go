/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: state.go
Description: Phases of the inference loop.
*/

package inference

// State is a phase of the inference loop.
type State int

const (
	StateInit State = iota
	StateBuildGraph
	StateEnumerate
	StateSelectClique
	StateFoldAndUpdate
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateBuildGraph:
		return "build_graph"
	case StateEnumerate:
		return "enumerate"
	case StateSelectClique:
		return "select_clique"
	case StateFoldAndUpdate:
		return "fold_and_update"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
