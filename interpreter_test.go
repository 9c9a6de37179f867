package evm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinyvm-labs/evmscratch/util"
)

func TestEvmSimplePushAdd(t *testing.T) {
	// PUSH1 2 PUSH1 3 ADD STOP
	code := []byte{0x60, 0x02, 0x60, 0x03, 0x01, 0x00}
	res, err := Evm(code, &EvmData{TxData: &TxData{}, State: map[string]string{}, Balances: map[string]Word{}}, true)

	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Stack, 1)
	assert.Equal(t, uint64(5), res.Stack[0].Uint64())
}

func TestEvmStopHaltsWithEmptyReturnData(t *testing.T) {
	code := []byte{0x00} // STOP
	res, err := Evm(code, &EvmData{TxData: &TxData{}, State: map[string]string{}, Balances: map[string]Word{}}, true)

	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Stack)
	assert.Empty(t, res.ReturnData)
}

func TestEvmJumpToValidDest(t *testing.T) {
	// PUSH1 4 JUMP STOP JUMPDEST PUSH1 1 STOP
	//  0    1    2    3    4       5    6    7
	code := []byte{0x60, 0x04, 0x56, 0x00, 0x5b, 0x60, 0x01, 0x00}
	res, err := Evm(code, &EvmData{TxData: &TxData{}, State: map[string]string{}, Balances: map[string]Word{}}, true)

	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Stack, 1)
	assert.Equal(t, uint64(1), res.Stack[0].Uint64())
}

func TestEvmJumpIntoPushImmediateDataFails(t *testing.T) {
	// PUSH2 0x5b00 (immediate byte 0x5b looks like JUMPDEST but is data)
	// PUSH1 1 (jump to offset 1, the 0x5b inside the PUSH2 immediate) JUMP
	code := []byte{0x61, 0x5b, 0x00, 0x60, 0x01, 0x56}
	res, err := Evm(code, &EvmData{TxData: &TxData{}, State: map[string]string{}, Balances: map[string]Word{}}, true)

	assert.NoError(t, err)
	assert.False(t, res.Success)
}

func TestEvmJumpiSkipsWhenConditionZero(t *testing.T) {
	// PUSH1 0 PUSH1 8 JUMPI PUSH1 1 STOP JUMPDEST PUSH1 2 STOP
	// dest (8) must itself be a valid JUMPDEST even though cond is zero:
	// this interpreter validates the destination before checking cond.
	code := []byte{0x60, 0x00, 0x60, 0x08, 0x57, 0x60, 0x01, 0x00, 0x5b, 0x60, 0x02, 0x00}
	res, err := Evm(code, &EvmData{TxData: &TxData{}, State: map[string]string{}, Balances: map[string]Word{}}, true)

	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, uint64(1), res.Stack[0].Uint64())
}

func TestEvmReturnProducesValueAndSuccess(t *testing.T) {
	// PUSH1 0x2a PUSH1 0 MSTORE PUSH1 32 PUSH1 0 RETURN
	code := []byte{
		0x60, 0x2a,
		0x60, 0x00,
		0x52,
		0x60, 0x20,
		0x60, 0x00,
		0xf3,
	}
	res, err := Evm(code, &EvmData{TxData: &TxData{}, State: map[string]string{}, Balances: map[string]Word{}}, true)

	assert.NoError(t, err)
	assert.True(t, res.Success)
	var got Word
	got.SetBytes(res.Value)
	assert.Equal(t, uint64(0x2a), got.Uint64())
	assert.Equal(t, res.Value, res.ReturnData)
}

func TestEvmRevertProducesFailureAndEmptyReturnData(t *testing.T) {
	// PUSH1 0x2a PUSH1 0 MSTORE PUSH1 32 PUSH1 0 REVERT
	code := []byte{
		0x60, 0x2a,
		0x60, 0x00,
		0x52,
		0x60, 0x20,
		0x60, 0x00,
		0xfd,
	}
	res, err := Evm(code, &EvmData{TxData: &TxData{}, State: map[string]string{}, Balances: map[string]Word{}}, true)

	assert.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Value)
	assert.Empty(t, res.ReturnData)
}

func TestEvmCallRecursesIntoCalleeCode(t *testing.T) {
	// Callee at decimal address "10": PUSH1 0x2a PUSH1 0 MSTORE PUSH1 32 PUSH1 0 RETURN
	calleeCode := []byte{
		0x60, 0x2a,
		0x60, 0x00,
		0x52,
		0x60, 0x20,
		0x60, 0x00,
		0xf3,
	}

	// Caller: CALL(gas=0, addr=10, value=0, inOffset=0, inSize=0, retOffset=0,
	// retSize=32), then RETURN the 32 bytes the CALL wrote into memory — the
	// sub-call's return_data isn't itself visible on the outer EvmResult
	// unless the caller's own frame halts via RETURN/REVERT.
	callerCode := []byte{
		0x60, 0x20, // retSize
		0x60, 0x00, // retOffset
		0x60, 0x00, // inSize
		0x60, 0x00, // inOffset
		0x60, 0x00, // value
		0x60, 0x0a, // addr=10
		0x60, 0x00, // gas
		0xf1,       // CALL
		0x60, 0x20, // size
		0x60, 0x00, // offset
		0xf3, // RETURN
	}

	data := &EvmData{
		TxData:   &TxData{To: "1"},
		State:    map[string]string{"10": util.HexEnc(calleeCode)},
		Balances: map[string]Word{},
	}
	res, err := Evm(callerCode, data, true)

	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Stack, 1)
	assert.Equal(t, uint64(1), res.Stack[0].Uint64()) // CALL success flag

	var mem Word
	mem.SetBytes(res.ReturnData)
	assert.Equal(t, uint64(0x2a), mem.Uint64())
}

// A CALL's callee must see the SAME tx context as its caller — ADDRESS
// inside the callee reads the parent TxData.To unchanged, since CALL never
// synthesizes a fresh frame the way DELEGATECALL does.
func TestEvmCallCalleeSeesParentAddress(t *testing.T) {
	// Callee: ADDRESS PUSH1 0 MSTORE PUSH1 32 PUSH1 0 RETURN
	calleeCode := []byte{
		0x30,
		0x60, 0x00,
		0x52,
		0x60, 0x20,
		0x60, 0x00,
		0xf3,
	}

	callerCode := []byte{
		0x60, 0x20, // retSize
		0x60, 0x00, // retOffset
		0x60, 0x00, // inSize
		0x60, 0x00, // inOffset
		0x60, 0x00, // value
		0x60, 0x0a, // addr=10
		0x60, 0x00, // gas
		0xf1,       // CALL
		0x60, 0x20, // size
		0x60, 0x00, // offset
		0xf3, // RETURN
	}

	const parentAddr = "0x00000000000000000000000000000000000042"
	data := &EvmData{
		TxData:   &TxData{To: parentAddr},
		State:    map[string]string{"10": util.HexEnc(calleeCode)},
		Balances: map[string]Word{},
	}
	res, err := Evm(callerCode, data, true)

	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, uint64(1), res.Stack[0].Uint64())

	want := mustParseHexWord(parentAddr)
	var got Word
	got.SetBytes(res.ReturnData)
	assert.Equal(t, want.Uint64(), got.Uint64())
}

func TestEvmStaticCallBlocksSstoreInCallee(t *testing.T) {
	// Callee: PUSH1 1 PUSH1 0 SSTORE STOP
	calleeCode := []byte{0x60, 0x01, 0x60, 0x00, 0x55, 0x00}

	// Caller: STATICCALL(gas=0, addr=10, inOffset=0, inSize=0, retOffset=0, retSize=0)
	callerCode := []byte{
		0x60, 0x00, // retSize
		0x60, 0x00, // retOffset
		0x60, 0x00, // inSize
		0x60, 0x00, // inOffset
		0x60, 0x0a, // addr=10
		0x60, 0x00, // gas
		0xfa, // STATICCALL
		0x00, // STOP
	}

	data := &EvmData{
		TxData:   &TxData{To: "1"},
		State:    map[string]string{"10": util.HexEnc(calleeCode)},
		Balances: map[string]Word{},
	}
	res, err := Evm(callerCode, data, true)

	assert.NoError(t, err)
	assert.True(t, res.Success) // doCall swallows the sub-frame's internal error as a failed push
	assert.Equal(t, uint64(0), res.Stack[0].Uint64())
}

// End-to-end SWAP2 worked example: PUSH1 1 PUSH1 2 PUSH1 3 SWAP2, reported
// (top-first) stack must read [1, 2, 3].
func TestEvmSwap2WorkedExampleEndToEnd(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x60, 0x03, 0x91, 0x00} // SWAP2=0x91
	res, err := Evm(code, &EvmData{TxData: &TxData{}, State: map[string]string{}, Balances: map[string]Word{}}, true)

	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{res.Stack[0].Uint64(), res.Stack[1].Uint64(), res.Stack[2].Uint64()})
}

func TestEvmUnknownOpcodeHaltsFailure(t *testing.T) {
	code := []byte{0x0c} // unassigned opcode
	res, err := Evm(code, &EvmData{TxData: &TxData{}, State: map[string]string{}, Balances: map[string]Word{}}, true)

	assert.NoError(t, err)
	assert.False(t, res.Success)
}
