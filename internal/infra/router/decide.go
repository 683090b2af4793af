package router

import "conduit/internal/domain"

// CredentialRequirements answers whether an identity's real path depends on
// a resolved credential. The strategy registry implements it.
type CredentialRequirements interface {
	Requirement(identity string) (credentialKey, guidance string, required bool)
}

// Decide computes the simulation verdict for one request. It is a pure
// function over the request, the connection and the force switch, kept
// separate from dispatch so both halves are testable on their own.
//
// Tie-break order, first match wins: forced mock mode, missing credential,
// passthrough tool, real.
func Decide(req domain.ExecutionRequest, conn *domain.ServerConnection, force bool, reqs CredentialRequirements) domain.SimulationDecision {
	if force {
		return domain.SimulationDecision{
			Simulated: true,
			Reason:    domain.ReasonForcedMockMode,
		}
	}

	if reqs != nil {
		if key, guidance, required := reqs.Requirement(conn.Identity); required && conn.Credential(key) == "" {
			return domain.SimulationDecision{
				Simulated: true,
				Reason:    domain.ReasonMissingCredential,
				Guidance:  guidance,
			}
		}
	}

	if req.Tool == domain.PassthroughToolName {
		return domain.SimulationDecision{
			Simulated: true,
			Reason:    domain.ReasonPassthroughFallback,
		}
	}

	return domain.SimulationDecision{Reason: domain.ReasonNone}
}
