package backup

// Phase labels where in its lifecycle a run currently is. Transitions
// are linear; Failed is terminal and reachable from any phase before
// Finalizing.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseAuthenticating Phase = "authenticating"
	PhaseEnumerating    Phase = "enumerating"
	PhaseProcessing     Phase = "processing"
	PhaseFinalizing     Phase = "finalizing"
	PhaseDone           Phase = "done"
	PhaseFailed         Phase = "failed"
)
