package core

// Alphabet is the fixed symbol set of secrets and candidates.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

const (
	DefaultMinLength = 5
	DefaultMaxLength = 100
)

// Feedback is a single oracle answer.
type Feedback struct {
	Matches int  // positions where guess and secret agree
	Exact   bool // guess equals the secret
}

// Scored pairs a candidate suffix with its fitness.
type Scored struct {
	Guess string
	Score float64
}

// OutcomeKind tags the result of evaluating one candidate.
type OutcomeKind int

const (
	// OutcomeScored is an ordinary ranked result.
	OutcomeScored OutcomeKind = iota
	// OutcomePartialLockIn means every character of base+candidate matched but the
	// secret is longer; the candidate can be committed to the base.
	OutcomePartialLockIn
	// OutcomeSolved means base+candidate is the secret.
	OutcomeSolved
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeScored:
		return "scored"
	case OutcomePartialLockIn:
		return "partial_lock_in"
	case OutcomeSolved:
		return "solved"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of FitnessEvaluator.Evaluate.
// For OutcomeSolved, Guess holds the full solved string (base included);
// otherwise it is the evaluated candidate suffix.
type Outcome struct {
	Kind    OutcomeKind
	Guess   string
	Score   float64
	Matches int
}

// Solution is returned by a Solver.
type Solution struct {
	Guess    string
	Attempts int
}
