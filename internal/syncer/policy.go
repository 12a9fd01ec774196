package syncer

// OperationKind names a user-facing operation whose offline behavior the
// engine decides.
type OperationKind string

// Operation kinds known to the offline policy.
const (
	OpSaveProfile        OperationKind = "save_profile"
	OpSaveGoals          OperationKind = "save_goals"
	OpValidateProfile    OperationKind = "validate_profile"
	OpNavigate           OperationKind = "navigate"
	OpCompleteOnboarding OperationKind = "complete_onboarding"
	OpManualSync         OperationKind = "manual_sync"
)

// offlinePolicy is the data-driven policy table: which operations may
// proceed without connectivity. Local saves, validation and navigation are
// always permitted offline; completing onboarding is permitted offline with
// its sync implicitly deferred; an explicit "sync now" needs the network.
// New operation kinds are added by extending this table.
var offlinePolicy = map[OperationKind]bool{
	OpSaveProfile:        true,
	OpSaveGoals:          true,
	OpValidateProfile:    true,
	OpNavigate:           true,
	OpCompleteOnboarding: true,
	OpManualSync:         false,
}

// CanProceedOffline reports whether the operation may proceed without
// connectivity. Unknown operation kinds conservatively require the network.
func CanProceedOffline(op OperationKind) bool {
	allowed, known := offlinePolicy[op]
	return known && allowed
}

// KnownOperation reports whether the operation kind appears in the policy
// table at all.
func KnownOperation(op OperationKind) bool {
	_, known := offlinePolicy[op]
	return known
}
