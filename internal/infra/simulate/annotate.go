package simulate

import "conduit/internal/domain"

// Annotate turns a routing decision into the transparency metadata attached
// to every result. Real results report real_data/operational; simulated
// ones report mock_data/degraded with a reason-specific warning.
func Annotate(decision domain.SimulationDecision) domain.SimulationAnnotation {
	if !decision.Simulated {
		return domain.SimulationAnnotation{
			Simulated:    false,
			Reason:       domain.ReasonNone,
			Confidence:   domain.ConfidenceRealData,
			ServerStatus: domain.ServerOperational,
		}
	}

	return domain.SimulationAnnotation{
		Simulated:    true,
		Reason:       decision.Reason,
		Confidence:   domain.ConfidenceMockData,
		ServerStatus: domain.ServerDegraded,
		Warning:      warningFor(decision.Reason),
		Guidance:     decision.Guidance,
	}
}

func warningFor(reason domain.SimulationReason) string {
	switch reason {
	case domain.ReasonForcedMockMode:
		return "simulation forced by " + domain.ForceSimulationEnvVar
	case domain.ReasonMissingCredential:
		return "required credential missing, returned mock data"
	case domain.ReasonPassthroughFallback:
		return "no real integration for this operation, returned mock data"
	default:
		return "result was simulated"
	}
}
