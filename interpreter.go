package evm

import (
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/pkg/errors"
)

// Evm runs code from pc=0 against data and returns the final result. It is
// the top-level entry point; DELEGATECALL calls it again recursively and
// CALL/STATICCALL recurse into evmCall directly, rather than pushing frames
// onto a shared call stack. A nil data is reported as an error.
func Evm(code []byte, data *EvmData, writable bool) (EvmResult, error) {
	if data == nil {
		return EvmResult{}, errors.New("nil EvmData")
	}
	return evmCall(code, data, writable)
}

// evmCall runs one invocation's fetch/decode/execute loop over code against
// data. CALL and STATICCALL recurse here with the SAME *EvmData the caller
// holds — ground truth never rewrites TxData for those two, so ADDRESS,
// ORIGIN, CALLVALUE, and CALLDATA* inside the callee all keep reading the
// parent transaction's values, exactly as the interpreter this was ported
// from does. Only DELEGATECALL builds a fresh TxData: opDelegateCall
// assembles its own EvmData (fresh TxData, cloned State/Balances) and then
// recurses through Evm, which runs it here unchanged; this function never
// rewrites TxData itself.
func evmCall(code []byte, data *EvmData, writable bool) (EvmResult, error) {
	call := &Call{}
	ctx := &Context{
		Data:     data,
		Call:     call,
		Code:     code,
		Writable: writable,
		Hooks:    data.Hooks,
	}

	for {
		pc := call.Pc
		if pc >= uint64(len(code)) {
			break
		}

		opByte := code[pc]
		op, ok := OpTable[vm.OpCode(opByte)]
		if !ok {
			return EvmResult{Stack: ctx.Stack().Reversed(), Success: false, ReturnData: []byte{}}, nil
		}

		step := &Step{Call: call, Op: op, Pc: pc, Code: code}
		if err := ctx.Hooks.PreRunAll(step); err != nil {
			return EvmResult{}, err
		}

		err := op.Exec(ctx)

		if err == nil {
			if op.OpCode != vm.JUMP && op.OpCode != vm.JUMPI {
				call.Pc++
			}
			if err := ctx.Hooks.PostRunAll(step); err != nil {
				return EvmResult{}, err
			}
			continue
		}

		if h, ok := err.(*haltResult); ok {
			return EvmResult{
				Value:      h.value,
				Stack:      ctx.Stack().Reversed(),
				Success:    h.success,
				ReturnData: h.returnData,
			}, nil
		}

		if err == errStop {
			return EvmResult{Stack: ctx.Stack().Reversed(), Success: true, ReturnData: []byte{}}, nil
		}

		// Every other error (stack underflow, an invalid jump target, an
		// INVALID opcode, a static-context violation, a malformed PUSH at
		// the tail of code) collapses to the same halted-failure shape:
		// the interpreter reports a failed frame, never a Go panic or a
		// propagated error, to its caller.
		return EvmResult{Stack: ctx.Stack().Reversed(), Success: false, ReturnData: []byte{}}, nil
	}

	return EvmResult{Stack: ctx.Stack().Reversed(), Success: true, ReturnData: []byte{}}, nil
}
