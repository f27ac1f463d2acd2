package project

import "errors"

// Validation errors. Nothing is mutated when these are returned.
var (
	// ErrInvalidGroupNumber indicates a non-positive group number.
	ErrInvalidGroupNumber = errors.New("group number must be positive")
	// ErrProgressInvalid indicates a progress value outside [0,100].
	ErrProgressInvalid = errors.New("progress must be between 0 and 100")
	// ErrNoChangeSpecified indicates an edit request with no fields set.
	ErrNoChangeSpecified = errors.New("no change specified")
	// ErrChannelKindInvalid indicates an unsupported extra-channel kind.
	ErrChannelKindInvalid = errors.New("channel kind must be text or voice")
)

// Authorization errors.
var (
	// ErrNotLeader indicates the caller does not lead an active project.
	ErrNotLeader = errors.New("caller is not the leader of an active project")
	// ErrNoActiveProject indicates the caller is not a member of any active project.
	ErrNoActiveProject = errors.New("caller has no active project")
	// ErrSelfRemovalForbidden indicates a leader tried to remove themselves.
	ErrSelfRemovalForbidden = errors.New("leader cannot remove themselves")
	// ErrLeaderCannotLeave indicates the leader tried to leave instead of terminating.
	ErrLeaderCannotLeave = errors.New("leader cannot leave their own project")
	// ErrDecisionNotAllowed indicates someone other than the window opener
	// tried to resolve a termination decision.
	ErrDecisionNotAllowed = errors.New("decision reserved for the caller who opened it")
)

// Conflict errors. The caller must retry with different input or wait.
var (
	// ErrCallerAlreadyLeader indicates the caller already leads an active project.
	ErrCallerAlreadyLeader = errors.New("caller already leads an active project")
	// ErrGroupNumberTaken indicates another active project holds this group number.
	ErrGroupNumberTaken = errors.New("group number already in use")
	// ErrAlreadyMember indicates the target is already in the member set.
	ErrAlreadyMember = errors.New("already a project member")
	// ErrConfirmationPending indicates a termination decision window is already open.
	ErrConfirmationPending = errors.New("termination confirmation already pending")
	// ErrWindowClosed indicates the decision window was already resolved or expired.
	ErrWindowClosed = errors.New("decision window closed")
)

// Not-found errors.
var (
	// ErrMemberNotFound indicates the target is not a project member.
	ErrMemberNotFound = errors.New("member not found in project")
	// ErrProjectNotFound indicates no project matches the given key.
	ErrProjectNotFound = errors.New("project not found")
)

// ErrProvisionFailed is the generic failure surfaced when platform-side
// provisioning fails during StartProject. The partially-created resources
// are rolled back best-effort and logged for manual reconciliation.
var ErrProvisionFailed = errors.New("project provisioning failed")
