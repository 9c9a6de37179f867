package hooks

import (
	evm "github.com/tinyvm-labs/evmscratch"
	"github.com/tinyvm-labs/evmscratch/util"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

// ParamTracer captures the stack slots and memory snapshot an opcode reads
// and writes, for PostRun hooks that want that context without re-deriving
// it from the raw Step.
type ParamTracer struct {
	StackPre  evm.Stack[uint256.Int] // stack args before exec
	StackPost evm.Stack[uint256.Int] // result pushed to stack after exec

	PcPre  uint64 // pc before exec
	PcPost uint64 // pc after exec

	MemPre  []byte // full memory copy (before exec)
	MemPost []byte // full memory copy (after exec)
}

func (t *ParamTracer) PreRun(step *evm.Step) error {
	stack := &step.Call.Stack
	size := stack.Len()

	t.PcPre = step.Pc

	n := int(step.Op.NStackIn)
	if n > size {
		n = size
	}
	t.StackPre.Data = util.CloneSlice(stack.Data[size-n : size])

	switch step.Op.OpCode {
	case vm.SHA3, vm.MLOAD, vm.MSTORE, vm.MSTORE8, vm.CALL, vm.DELEGATECALL, vm.STATICCALL:
		m := step.Call.Memory.Data()
		t.MemPre = append(m[:0:0], m...)
	}

	return nil
}

func (t *ParamTracer) PostRun(step *evm.Step) error {
	stack := &step.Call.Stack
	size := stack.Len()

	t.PcPost = step.Call.Pc

	n := int(step.Op.NStackOut)
	if n > size {
		n = size
	}
	t.StackPost.Data = util.CloneSlice(stack.Data[size-n : size])

	// Memory is only snapshotted for opcodes that touch it, to keep tracing
	// cheap for everything else.
	switch step.Op.OpCode {
	case vm.SHA3, vm.MLOAD, vm.MSTORE, vm.MSTORE8, vm.CALL,
		vm.DELEGATECALL, vm.STATICCALL, vm.CODECOPY, vm.CALLDATACOPY,
		vm.RETURNDATACOPY, vm.EXTCODECOPY, vm.RETURN, vm.REVERT:

		m := step.Call.Memory.Data()
		t.MemPost = append(m[:0:0], m...)
	}

	return nil
}
