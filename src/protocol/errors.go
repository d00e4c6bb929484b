package protocol

import "errors"

// Protocol error taxonomy. Handlers map these onto HTTP statuses; the
// callback worker logs them and drops the offending message.
var (
	// ErrNoCredentials guards the request operations: a holder with zero
	// stored credentials has nothing to aggregate or reveal.
	ErrNoCredentials = errors.New("protocol: holder owns no credentials")

	// ErrInvalidRequest marks a callback whose request id was never
	// registered or was already consumed. Treated as a protocol violation,
	// never silently ignored.
	ErrInvalidRequest = errors.New("protocol: unknown or already consumed request id")

	// ErrProofVerificationFailed marks a callback whose attestation does not
	// verify. Fatal for that callback; no state is mutated.
	ErrProofVerificationFailed = errors.New("protocol: oracle attestation rejected")

	// ErrAlreadyRevealed rejects a reveal request for a proof whose revealed
	// flag is already set.
	ErrAlreadyRevealed = errors.New("protocol: composite proof already revealed")

	// ErrNoProof rejects a reveal request when the holder has no initialized
	// composite proof.
	ErrNoProof = errors.New("protocol: no composite proof exists for holder")
)
