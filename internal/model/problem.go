package model

// ProblemCode is a typed kind of mismatch between runtime and stub.
type ProblemCode int

const (
	// ProblemUnknown marks a suppression label outside the known set.
	ProblemUnknown ProblemCode = -1

	ProblemStubMissing ProblemCode = iota
	ProblemDeprecatedFunction
	ProblemParameterMismatch
)

// Suppression labels as written in suppression documents.
const (
	LabelParameterMismatch  = "parameter mismatch"
	LabelStubMissing        = "missing function"
	LabelDeprecatedFunction = "deprecated function"
)

func (c ProblemCode) String() string {
	switch c {
	case ProblemStubMissing:
		return "stub missing"
	case ProblemDeprecatedFunction:
		return "deprecated function"
	case ProblemParameterMismatch:
		return "parameter mismatch"
	default:
		return "unknown"
	}
}

// Label returns the suppression label that mutes c, or "" for ProblemUnknown.
func (c ProblemCode) Label() string {
	switch c {
	case ProblemStubMissing:
		return LabelStubMissing
	case ProblemDeprecatedFunction:
		return LabelDeprecatedFunction
	case ProblemParameterMismatch:
		return LabelParameterMismatch
	default:
		return ""
	}
}

// ClassifyLabel maps a suppression label to its code. Matching is exact and
// case-sensitive; anything else is ProblemUnknown.
func ClassifyLabel(label string) ProblemCode {
	switch label {
	case LabelParameterMismatch:
		return ProblemParameterMismatch
	case LabelStubMissing:
		return ProblemStubMissing
	case LabelDeprecatedFunction:
		return ProblemDeprecatedFunction
	default:
		return ProblemUnknown
	}
}

// SuppressionRecord lists accepted problems for one function.
type SuppressionRecord struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Problems []string `json:"problems" yaml:"problems" toml:"problems"`
}

// ApplyMutedProblems appends the codes of the first record naming f with a
// non-empty problem list. Later records with the same name are ignored and
// repeated labels produce repeated codes.
func ApplyMutedProblems(f *Function, records []SuppressionRecord) {
	for _, rec := range records {
		if rec.Name != f.Name || len(rec.Problems) == 0 {
			continue
		}
		for _, label := range rec.Problems {
			f.MutedProblems = append(f.MutedProblems, ClassifyLabel(label))
		}
		return
	}
}
