package tx

import "fmt"

// Policy selects the accounting variant the engine runs under. The naive
// policy reproduces the permissive original accounting; the hardened policy
// adds decimal normalization, empty-reserve checks, overflow fallbacks, and
// explicit fee routing. One engine serves both: operations branch on rule
// lookups, never on duplicated code paths.
type Policy uint8

const (
	// PolicyHardened is the default daemon policy.
	PolicyHardened Policy = iota

	// PolicyNaive retains swap fees inside the input reserve and issues
	// shares in raw units without decimal normalization.
	PolicyNaive
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyHardened:
		return "hardened"
	case PolicyNaive:
		return "naive"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(p))
	}
}

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "hardened", "":
		return PolicyHardened, nil
	case "naive":
		return PolicyNaive, nil
	default:
		return PolicyHardened, fmt.Errorf("unknown pool policy %q", s)
	}
}
