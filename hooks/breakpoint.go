package hooks

import (
	"fmt"

	evm "github.com/tinyvm-labs/evmscratch"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/pkg/errors"
)

var ErrBreakpoint = errors.New("breakpoint")

// BpPc breaks when the frame's program counter reaches Pc. Unlike the
// interpreter this was adapted from, a hook is attached per-frame rather
// than shared across a call stack, so there's no separate contract filter
// to carry: one frame is always one piece of code.
type BpPc struct {
	evm.EmptyHook
	Pc uint64
}

func (bp *BpPc) String() string {
	return fmt.Sprintf("@ Pc: %x", bp.Pc)
}

func (bp *BpPc) PreRun(step *evm.Step) error {
	if step.Pc != bp.Pc {
		return nil
	}
	return errors.Wrap(ErrBreakpoint, bp.String())
}

// BpOpCode breaks the first time OpCode is about to execute, eg: break at
// `SHA3`.
type BpOpCode struct {
	evm.EmptyHook
	OpCode vm.OpCode
}

func (bp *BpOpCode) String() string {
	return fmt.Sprintf("@ OpCode: %s", bp.OpCode.String())
}

func (bp *BpOpCode) PreRun(step *evm.Step) error {
	if step.Op.OpCode != bp.OpCode {
		return nil
	}
	return errors.Wrap(ErrBreakpoint, bp.String())
}
