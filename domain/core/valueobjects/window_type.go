package valueobjects

// WindowType is the semantic classification of a timing window
type WindowType string

const (
	// WindowTypeOpportunity marks windows dominated by flowing aspects
	WindowTypeOpportunity WindowType = "opportunity"

	// WindowTypeChallenge marks windows dominated by hard aspects
	WindowTypeChallenge WindowType = "challenge"

	// WindowTypeIntegration marks conjunction-led or mixed windows
	WindowTypeIntegration WindowType = "integration"
)

// String returns the string representation of the window type
func (t WindowType) String() string {
	return string(t)
}
