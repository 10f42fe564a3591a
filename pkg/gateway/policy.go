package gateway

import "fmt"

// Rules is the static policy loaded at startup. It never changes while the
// process runs.
type Rules struct {
	// ReadOnly denies every tool that is not read-only.
	ReadOnly bool
	// DisabledTags denies any tool carrying one of these tags.
	DisabledTags map[string]struct{}
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	// Code and Reason are set only when denied.
	Code   string
	Reason string
}

// Evaluate applies the rules to one tool. Pure function of its inputs; the
// same decision gates both tool registration and per-call dispatch.
func Evaluate(tool Tool, rules Rules) Decision {
	if rules.ReadOnly && !tool.ReadOnly {
		return Decision{
			Code:   "read_only_mode",
			Reason: fmt.Sprintf("tool %q modifies device state and the server is in read-only mode", tool.Name),
		}
	}
	for _, tag := range tool.Tags {
		if _, disabled := rules.DisabledTags[tag]; disabled {
			return Decision{
				Code:   "disabled_tag",
				Reason: fmt.Sprintf("tool %q is disabled via tag %q", tool.Name, tag),
			}
		}
	}
	return Decision{Allowed: true}
}
