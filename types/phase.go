// phase.go defines the Phase enum: the decode phases which are timed
// separately and from which nested work is attributed away.

package types

import (
	"fmt"
)

// Phase is the decode phase which is currently open.
//
// At most one phase is current at a time, so the value (unlike a set of
// flags) cannot describe an ambiguous attribution.
type Phase int

const (
	PhaseNone = Phase(iota)
	PhaseIntraCU
	PhaseInterCU
	PhasePCMCU
	PhaseTransform
	PhaseDeblock
	PhaseSAO
	EndOfPhase
)

// PhaseCount is the size of arrays indexed by Phase.
const PhaseCount = int(EndOfPhase)

// Phases returns all the tracked phases (PhaseNone excluded), in the column order.
func Phases() []Phase {
	return []Phase{
		PhaseIntraCU,
		PhaseInterCU,
		PhasePCMCU,
		PhaseTransform,
		PhaseDeblock,
		PhaseSAO,
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseIntraCU:
		return "intra_cu"
	case PhaseInterCU:
		return "inter_cu"
	case PhasePCMCU:
		return "pcm_cu"
	case PhaseTransform:
		return "transform"
	case PhaseDeblock:
		return "deblock"
	case PhaseSAO:
		return "sao"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

func (p Phase) IsTracked() bool {
	return p > PhaseNone && p < EndOfPhase
}
