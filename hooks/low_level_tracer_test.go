package hooks

import (
	"testing"

	evm "github.com/tinyvm-labs/evmscratch"

	"github.com/stretchr/testify/assert"
)

// Attaching a LowLevelTracer is purely observational: it prints per-step
// detail but never changes the interpreter's outward result.
func TestLowLevelTracerDoesNotAlterExecution(t *testing.T) {
	// PUSH1 1 PUSH1 2 ADD STOP
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00}

	withTracer := &evm.EvmData{
		TxData:   &evm.TxData{},
		State:    map[string]string{},
		Balances: map[string]evm.Word{},
	}
	withTracer.Hooks.Attach(NewLowLevelTracer())

	withoutTracer := &evm.EvmData{
		TxData:   &evm.TxData{},
		State:    map[string]string{},
		Balances: map[string]evm.Word{},
	}

	res1, err1 := evm.Evm(code, withTracer, true)
	res2, err2 := evm.Evm(code, withoutTracer, true)

	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, res2.Success, res1.Success)
	assert.Equal(t, res2.Stack, res1.Stack)
}
