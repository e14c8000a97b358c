package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/guesser/core"
	"github.com/snow-ghost/guesser/oracle"
)

// recordingOracle remembers every guess it answers.
type recordingOracle struct {
	core.Oracle
	guesses []string
}

func (r *recordingOracle) CheckGuess(guess string) core.Feedback {
	r.guesses = append(r.guesses, guess)
	return r.Oracle.CheckGuess(guess)
}

func TestScoreBounds(t *testing.T) {
	f := core.NewLengthPenaltyFitness(core.DefaultMaxLength)
	for length := 1; length <= core.DefaultMaxLength; length++ {
		prev := -1.0
		for matches := 0; matches <= length; matches++ {
			score := f.Score(matches, length)
			require.GreaterOrEqual(t, score, 0.0)
			require.Less(t, score, 1.0, "matches=%d length=%d", matches, length)
			require.Greater(t, score, prev, "score must grow with matches")
			prev = score
		}
	}
}

func TestScorePenalisesLength(t *testing.T) {
	f := core.NewLengthPenaltyFitness(core.DefaultMaxLength)
	assert.Greater(t, f.Score(5, 10), f.Score(5, 20))
	assert.InDelta(t, 8.0*3/(100+7*4+1), f.Score(3, 4), 1e-12)
}

func TestValidate(t *testing.T) {
	require.NoError(t, core.NewLengthPenaltyFitness(100).Validate())

	cases := map[string]*core.LengthPenaltyFitness{
		"zero max length":    {MaxLength: 0, MatchWeight: 8, LengthWeight: 7, Offset: 1},
		"zero match weight":  {MaxLength: 100, MatchWeight: 0, LengthWeight: 7, Offset: 1},
		"negative length":    {MaxLength: 100, MatchWeight: 8, LengthWeight: -1, Offset: 1},
		"zero offset":        {MaxLength: 100, MatchWeight: 8, LengthWeight: 7, Offset: 0},
		"score can reach 1":  {MaxLength: 100, MatchWeight: 9, LengthWeight: 7, Offset: 1},
		"offset too shallow": {MaxLength: 100, MatchWeight: 8.5, LengthWeight: 7, Offset: 10},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			err := f.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidConfig))
			var cfgErr *core.ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestEvaluate_Solved(t *testing.T) {
	f := core.NewLengthPenaltyFitness(100)
	o := oracle.NewWithSecret("abcdefg")

	out := f.Evaluate(o, "abc", "defg")
	assert.Equal(t, core.OutcomeSolved, out.Kind)
	assert.Equal(t, "abcdefg", out.Guess)
	assert.Equal(t, 1, o.Attempts())
}

func TestEvaluate_Scored(t *testing.T) {
	f := core.NewLengthPenaltyFitness(100)
	o := oracle.NewWithSecret("abcdefg")

	out := f.Evaluate(o, "", "abzzzzz")
	assert.Equal(t, core.OutcomeScored, out.Kind)
	assert.Equal(t, "abzzzzz", out.Guess)
	assert.Equal(t, 2, out.Matches)
	assert.InDelta(t, f.Score(2, 7), out.Score, 1e-12)
}

func TestEvaluate_PartialLockInOnPrefix(t *testing.T) {
	f := core.NewLengthPenaltyFitness(100)
	rec := &recordingOracle{Oracle: oracle.NewWithSecret("abcdefghij")}

	out := f.Evaluate(rec, "", "abcd")
	require.Equal(t, core.OutcomePartialLockIn, out.Kind)
	assert.Equal(t, "abcd", out.Guess)
	assert.Equal(t, 4, out.Matches)
	assert.InDelta(t, f.Score(4, 4), out.Score, 1e-12)

	// the caller extends the base; later guesses carry it
	base := "" + out.Guess
	out = f.Evaluate(rec, base, "efzz")
	assert.Equal(t, core.OutcomeScored, out.Kind)
	assert.Equal(t, 6, out.Matches)
	assert.Equal(t, []string{"abcd", "abcdefzz"}, rec.guesses)
}

func TestEvaluate_EmptySuffixNeverLocksIn(t *testing.T) {
	f := core.NewLengthPenaltyFitness(100)
	o := oracle.NewWithSecret("abcdefghij")

	out := f.Evaluate(o, "abcd", "")
	assert.Equal(t, core.OutcomeScored, out.Kind)
	assert.Equal(t, 4, out.Matches)
}

func TestEvaluate_InvariantViolations(t *testing.T) {
	f := core.NewLengthPenaltyFitness(10)

	t.Run("guess too long", func(t *testing.T) {
		o := oracle.NewWithSecret("abcdefghij")
		assert.PanicsWithError(t, "invariant violated: max_length: guess of 11 characters exceeds 10", func() {
			f.Evaluate(o, "abcde", "fghijk")
		})
		assert.Equal(t, 0, o.Attempts())
	})

	t.Run("base is not a prefix", func(t *testing.T) {
		o := oracle.NewWithSecret("abcdefghij")
		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(*core.InvariantError)
			require.True(t, ok)
			assert.Equal(t, "base_prefix", err.Invariant)
		}()
		f.Evaluate(o, "axc", "z")
	})

	t.Run("score out of range", func(t *testing.T) {
		broken := &core.LengthPenaltyFitness{MaxLength: 10, MatchWeight: 100, LengthWeight: 0, Offset: 1}
		o := oracle.NewWithSecret("abcdefghij")
		assert.Panics(t, func() { broken.Evaluate(o, "", "abcz") })
	})
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "scored", core.OutcomeScored.String())
	assert.Equal(t, "partial_lock_in", core.OutcomePartialLockIn.String())
	assert.Equal(t, "solved", core.OutcomeSolved.String())
	assert.Equal(t, "unknown", core.OutcomeKind(42).String())
}
