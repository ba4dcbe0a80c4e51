package scitokens

import "errors"

var (
	// ErrNotApplicable is returned by a Validator for tokens that are not in
	// a format it understands. It is an expected outcome, not a failure: the
	// decision falls through to the chained authorizer without logging.
	ErrNotApplicable = errors.New("token not applicable")

	// ErrValidation marks a token that looked applicable but failed
	// validation (malformed, expired, wrong audience, revoked). Non-fatal:
	// logged at a diagnostic level and the decision falls through to the
	// chain.
	ErrValidation = errors.New("token validation failed")

	// ErrConfig marks a malformed configuration source. Reconfiguration
	// aborts and the previous configuration stays active.
	ErrConfig = errors.New("invalid configuration")

	// ErrValidatorRequired is returned by Builder.Build when no validator
	// was supplied.
	ErrValidatorRequired = errors.New("validator required")

	// ErrBuilderUsed is returned by Builder.Build on reuse.
	ErrBuilderUsed = errors.New("builder already used")
)
