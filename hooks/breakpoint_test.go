package hooks

import (
	"testing"

	evm "github.com/tinyvm-labs/evmscratch"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/stretchr/testify/assert"
)

// A BpPc breakpoint attached via EvmData.Hooks halts the interpreter the
// first time its pc is reached: Evm surfaces that as a Go error (a
// debugging halt, distinct from the EvmResult.Success failures every op
// function reports) rather than running to completion.
func TestBpPcHaltsExecutionAtTargetPc(t *testing.T) {
	// PUSH1 1 PUSH1 2 ADD STOP
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00}

	data := &evm.EvmData{
		TxData:   &evm.TxData{},
		State:    map[string]string{},
		Balances: map[string]evm.Word{},
	}
	data.Hooks.Attach(&BpPc{Pc: 4}) // the ADD instruction

	_, err := evm.Evm(code, data, true)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "breakpoint")
}

// BpOpCode breaks the first time the named opcode is about to execute.
func TestBpOpCodeHaltsBeforeMatchingOp(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00}

	data := &evm.EvmData{
		TxData:   &evm.TxData{},
		State:    map[string]string{},
		Balances: map[string]evm.Word{},
	}
	data.Hooks.Attach(&BpOpCode{OpCode: vm.ADD})

	_, err := evm.Evm(code, data, true)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "breakpoint")
}
