package cascade

import (
	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/match"
)

// Monitor provides hooks to observe a cascade run.
// An Orchestrator shared between goroutines calls its Monitor concurrently.
type Monitor interface {
	Start(target core.Target)
	StageStarted(target core.Target, stage Stage)
	StageFailed(target core.Target, stage Stage, err error)
	CandidateExcluded(target core.Target, stage Stage, exclusion match.Exclusion)
	CandidateEvaluated(target core.Target, stage Stage, outcome core.VerifiedCandidate)
	Finish(target core.Target, result core.PipelineResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.Target)                                                 {}
func (n *noopMonitor) StageStarted(_ core.Target, _ Stage)                                 {}
func (n *noopMonitor) StageFailed(_ core.Target, _ Stage, _ error)                         {}
func (n *noopMonitor) CandidateExcluded(_ core.Target, _ Stage, _ match.Exclusion)         {}
func (n *noopMonitor) CandidateEvaluated(_ core.Target, _ Stage, _ core.VerifiedCandidate) {}
func (n *noopMonitor) Finish(_ core.Target, _ core.PipelineResult)                         {}
