package evm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestStackPushPop(t *testing.T) {
	var st Stack[Word]
	st.Push(*uint256.NewInt(1))
	st.Push(*uint256.NewInt(2))

	v := st.Pop()
	assert.Equal(t, uint64(2), v.Uint64())
	assert.Equal(t, 1, st.Len())
}

func TestStackTryPopUnderflow(t *testing.T) {
	var st Stack[Word]
	_, err := st.TryPop()
	assert.ErrorIs(t, err, ErrStackUnderflow)
}

// SWAP2 on [1, 2, 3] (3 on top) must produce a reported (top-first) stack
// of [1, 2, 3] — worked example from the interpreter's own test suite.
func TestSwapMatchesWorkedExample(t *testing.T) {
	var st Stack[Word]
	st.Push(*uint256.NewInt(1))
	st.Push(*uint256.NewInt(2))
	st.Push(*uint256.NewInt(3))

	err := st.TrySwap(3) // SWAP2 -> makeSwap(2) calls TrySwap(2+1)
	assert.NoError(t, err)

	got := st.Reversed()
	assert.Equal(t, uint64(1), got[0].Uint64())
	assert.Equal(t, uint64(2), got[1].Uint64())
	assert.Equal(t, uint64(3), got[2].Uint64())
}

func TestDupPushesCopyNotReference(t *testing.T) {
	var st Stack[Word]
	st.Push(*uint256.NewInt(5))
	assert.NoError(t, st.TryDup(1))
	assert.Equal(t, 2, st.Len())
	assert.Equal(t, uint64(5), st.Peek().Uint64())

	st.Peek().SetUint64(9)
	assert.Equal(t, uint64(5), st.Data[0].Uint64())
}

func TestReversedIsTopFirst(t *testing.T) {
	var st Stack[Word]
	st.Push(*uint256.NewInt(10))
	st.Push(*uint256.NewInt(20))
	st.Push(*uint256.NewInt(30))

	r := st.Reversed()
	assert.Equal(t, []uint64{30, 20, 10}, []uint64{r[0].Uint64(), r[1].Uint64(), r[2].Uint64()})
}
