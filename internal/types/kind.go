package types

import "fmt"

// ContentKind selects which content domain a regeneration call operates on.
// Each kind keeps its own completions table.
type ContentKind string

const (
	KindDiscussions  ContentKind = "discussions"
	KindProvocations ContentKind = "provocations"
)

func ParseContentKind(raw string) (ContentKind, error) {
	switch ContentKind(raw) {
	case KindDiscussions:
		return KindDiscussions, nil
	case KindProvocations:
		return KindProvocations, nil
	default:
		return "", fmt.Errorf("unknown content kind %q", raw)
	}
}

func (k ContentKind) CompletionsTable() string {
	switch k {
	case KindDiscussions:
		return "discussions_completions"
	case KindProvocations:
		return "provocations_completions"
	default:
		return ""
	}
}

func (k ContentKind) String() string {
	return string(k)
}
