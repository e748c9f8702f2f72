package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
	"github.com/arthurvalves/IC-Tomato/internal/testutil"
)

func TestRunVerdicts(t *testing.T) {
	tests := []struct {
		machine *ir.Machine
		input   string
		verdict Verdict
		output  string
	}{
		{testutil.EvenZeros(), "00", Accept, ""},
		{testutil.EvenZeros(), "0", Reject, ""},
		{testutil.EvenZeros(), "", Accept, ""},
		{testutil.AnBn(), "aabb", Accept, ""},
		{testutil.AnBn(), "aab", Reject, ""},
		{testutil.AnBn(), "ba", Reject, ""},
		{testutil.EvenAs(), "aa", Accept, ""},
		{testutil.EvenAs(), "a", Reject, ""},
		{testutil.Parity(), "1101", OK, "1001"},
		{testutil.Parity(), "12", Stuck, ""},
		{testutil.Mod3(), "aab", OK, "0122"},
	}

	for _, tt := range tests {
		t.Run(tt.machine.Name+"/"+tt.input, func(t *testing.T) {
			o := load(t, tt.machine).Run(tt.input)
			assert.Equal(t, tt.input, o.Input)
			assert.Equal(t, tt.verdict, o.Verdict)
			assert.Equal(t, tt.output, o.Output)
			assert.Equal(t, max(len(o.Trace)-1, 0), o.Steps)
		})
	}
}

func TestRunLoopHonoursMaxSteps(t *testing.T) {
	e := load(t, testutil.Forever(), WithMaxSteps(10))
	o := e.Run("")
	assert.Equal(t, Loop, o.Verdict)
	assert.Equal(t, 10, o.Steps)
	assert.False(t, o.Accepted())
}

func TestRunTraceFA(t *testing.T) {
	o := load(t, testutil.EvenZeros()).Run("01")
	assert.Equal(t, []TraceStep{
		{Pos: 0, States: []string{"even"}},
		{Pos: 1, States: []string{"odd"}},
		{Pos: 2, States: []string{"odd"}},
	}, o.Trace)
}

func TestRunTraceTM(t *testing.T) {
	o := load(t, testutil.EvenAs()).Run("a")
	assert.Equal(t, Reject, o.Verdict)
	assert.Equal(t, []TraceStep{
		{Pos: 0, State: "q0", Tape: []string{"a"}},
		{Pos: 1, State: "q1", Tape: []string{"a", ir.Blank}},
	}, o.Trace)
}

func TestRunTracePDA(t *testing.T) {
	o := load(t, testutil.AnBn()).Run("ab")
	require.Equal(t, Accept, o.Verdict)
	require.Len(t, o.Trace, 3)
	assert.Equal(t, "q0", o.Trace[0].State)
	assert.Equal(t, []string{"Z"}, o.Trace[0].Stack)
	assert.Equal(t, 1, o.Trace[0].Active)
	assert.False(t, o.Truncated)
}

func TestRunTraceTransducer(t *testing.T) {
	o := load(t, testutil.Mod3()).Run("ab")
	assert.Equal(t, []TraceStep{
		{Pos: 0, State: "s0", Output: "0"},
		{Pos: 1, State: "s1", Output: "01"},
		{Pos: 2, State: "s1", Output: "011"},
	}, o.Trace)
}

func TestRunAll(t *testing.T) {
	e := load(t, testutil.EvenAs())
	outcomes := e.RunAll([]string{"", "a", "aaaa"})
	require.Len(t, outcomes, 3)
	assert.Equal(t, []Verdict{Accept, Reject, Accept},
		[]Verdict{outcomes[0].Verdict, outcomes[1].Verdict, outcomes[2].Verdict})
}

func TestRunWithoutStart(t *testing.T) {
	e, err := Load(&ir.Machine{Name: "bare", Document: ir.MealyDocument{}}, WithLogger(DiscardLogger()))
	require.NoError(t, err)

	o := e.Run("1")
	assert.Equal(t, Stuck, o.Verdict)
	assert.Equal(t, 0, o.Steps)
	assert.Empty(t, o.Trace)
}
