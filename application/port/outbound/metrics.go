package outbound

// Refresh outcomes reported to AuthMetrics.
const (
	RefreshOutcomeIssued   = "issued"
	RefreshOutcomeRejected = "rejected"
	RefreshOutcomeRaced    = "raced"
	RefreshOutcomeMismatch = "user_mismatch"
	RefreshOutcomeError    = "error"
)

// AuthMetrics records account outcomes.
type AuthMetrics interface {
	RecordLogin(success bool)
	RecordRegistration(role string, success bool)
	RecordRefresh(outcome string)
}
