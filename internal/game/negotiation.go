package game

import "groundwork/internal/data"

// Negotiator decides whether a space permits the negotiate/retry action and
// what it costs. The orchestrator delegates PerformNegotiation here; the
// bargaining flow itself (offers, counter-offers) lives outside this core.
type Negotiator interface {
	CanNegotiate(cfg data.SpaceConfig) bool
	PenaltyDays(cfg data.SpaceConfig) int
}

// StandardNegotiator honors the per-space can_negotiate flag and charges a
// flat time penalty.
type StandardNegotiator struct {
	Penalty int // days; defaults to 1 when zero
}

// CanNegotiate reports the space's negotiate permission.
func (n StandardNegotiator) CanNegotiate(cfg data.SpaceConfig) bool { return cfg.CanNegotiate }

// PenaltyDays returns the time penalty for retrying on the space.
func (n StandardNegotiator) PenaltyDays(cfg data.SpaceConfig) int {
	if n.Penalty <= 0 {
		return 1
	}
	return n.Penalty
}
