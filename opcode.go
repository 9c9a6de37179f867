package evm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/tinyvm-labs/evmscratch/util"
)

type executionFunc func(*Context) error

// Operation mirrors the teacher's own Operation shape, minus the GasCost
// field: gas accounting is explicitly out of scope here, so nothing in
// this repo ever calls a cost function.
type Operation struct {
	OpCode    vm.OpCode
	OpSize    uint64 // size of required immediate data, eg: opSize for PUSH3 == 3
	NStackIn  uint8  // informational: args the op pops, for tracing
	NStackOut uint8  // informational: values the op pushes, for tracing
	Exec      executionFunc
}

func makeOp(
	opCode vm.OpCode,
	opSize uint64,
	nStackIn, nStackOut uint8,
	exec executionFunc,
) *Operation {
	return &Operation{
		OpCode:    opCode,
		OpSize:    opSize,
		NStackIn:  nStackIn,
		NStackOut: nStackOut,
		Exec:      exec,
	}
}

var OpTable map[vm.OpCode]*Operation

func init() {
	OpTable = map[vm.OpCode]*Operation{
		vm.STOP:           makeOp(vm.STOP, 0, 0, 0, opStop),
		vm.ADD:            makeOp(vm.ADD, 0, 2, 1, opAdd),
		vm.MUL:            makeOp(vm.MUL, 0, 2, 1, opMul),
		vm.SUB:            makeOp(vm.SUB, 0, 2, 1, opSub),
		vm.DIV:            makeOp(vm.DIV, 0, 2, 1, opDiv),
		vm.SDIV:           makeOp(vm.SDIV, 0, 2, 1, opSdiv),
		vm.MOD:            makeOp(vm.MOD, 0, 2, 1, opMod),
		vm.SMOD:           makeOp(vm.SMOD, 0, 2, 1, opSmod),
		vm.ADDMOD:         makeOp(vm.ADDMOD, 0, 3, 1, opAddmod),
		vm.MULMOD:         makeOp(vm.MULMOD, 0, 3, 1, opMulmod),
		vm.EXP:            makeOp(vm.EXP, 0, 2, 1, opExp),
		vm.SIGNEXTEND:     makeOp(vm.SIGNEXTEND, 0, 2, 1, opSignExtend),
		vm.LT:             makeOp(vm.LT, 0, 2, 1, opLt),
		vm.GT:             makeOp(vm.GT, 0, 2, 1, opGt),
		vm.SLT:            makeOp(vm.SLT, 0, 2, 1, opSlt),
		vm.SGT:            makeOp(vm.SGT, 0, 2, 1, opSgt),
		vm.EQ:             makeOp(vm.EQ, 0, 2, 1, opEq),
		vm.ISZERO:         makeOp(vm.ISZERO, 0, 1, 1, opIszero),
		vm.AND:            makeOp(vm.AND, 0, 2, 1, opAnd),
		vm.OR:             makeOp(vm.OR, 0, 2, 1, opOr),
		vm.XOR:            makeOp(vm.XOR, 0, 2, 1, opXor),
		vm.NOT:            makeOp(vm.NOT, 0, 1, 1, opNot),
		vm.BYTE:           makeOp(vm.BYTE, 0, 2, 1, opByte),
		vm.SHL:            makeOp(vm.SHL, 0, 2, 1, opSHL),
		vm.SHR:            makeOp(vm.SHR, 0, 2, 1, opSHR),
		vm.SAR:            makeOp(vm.SAR, 0, 2, 1, opSAR),
		vm.SHA3:           makeOp(vm.SHA3, 0, 2, 1, opSha3),
		vm.ADDRESS:        makeOp(vm.ADDRESS, 0, 0, 1, opAddress),
		vm.BALANCE:        makeOp(vm.BALANCE, 0, 1, 1, opBalance),
		vm.ORIGIN:         makeOp(vm.ORIGIN, 0, 0, 1, opOrigin),
		vm.CALLER:         makeOp(vm.CALLER, 0, 0, 1, opCaller),
		vm.CALLVALUE:      makeOp(vm.CALLVALUE, 0, 0, 1, opCallValue),
		vm.CALLDATALOAD:   makeOp(vm.CALLDATALOAD, 0, 1, 1, opCallDataLoad),
		vm.CALLDATASIZE:   makeOp(vm.CALLDATASIZE, 0, 0, 1, opCallDataSize),
		vm.CALLDATACOPY:   makeOp(vm.CALLDATACOPY, 0, 3, 0, opCallDataCopy),
		vm.CODESIZE:       makeOp(vm.CODESIZE, 0, 0, 1, opCodeSize),
		vm.CODECOPY:       makeOp(vm.CODECOPY, 0, 3, 0, opCodeCopy),
		vm.GASPRICE:       makeOp(vm.GASPRICE, 0, 0, 1, opGasprice),
		vm.EXTCODESIZE:    makeOp(vm.EXTCODESIZE, 0, 1, 1, opExtCodeSize),
		vm.EXTCODECOPY:    makeOp(vm.EXTCODECOPY, 0, 4, 0, opExtCodeCopy),
		vm.RETURNDATASIZE: makeOp(vm.RETURNDATASIZE, 0, 0, 1, opReturnDataSize),
		vm.RETURNDATACOPY: makeOp(vm.RETURNDATACOPY, 0, 3, 0, opReturnDataCopy),
		vm.EXTCODEHASH:    makeOp(vm.EXTCODEHASH, 0, 1, 1, opExtCodeHash),
		vm.BLOCKHASH:      makeOp(vm.BLOCKHASH, 0, 0, 0, opBlockhash),
		vm.COINBASE:       makeOp(vm.COINBASE, 0, 0, 1, opCoinbase),
		vm.TIMESTAMP:      makeOp(vm.TIMESTAMP, 0, 0, 1, opTimestamp),
		vm.NUMBER:         makeOp(vm.NUMBER, 0, 0, 1, opNumber),
		vm.DIFFICULTY:     makeOp(vm.DIFFICULTY, 0, 0, 1, opDifficulty),
		vm.GASLIMIT:       makeOp(vm.GASLIMIT, 0, 0, 1, opGasLimit),
		vm.CHAINID:        makeOp(vm.CHAINID, 0, 0, 1, opChainID),
		vm.SELFBALANCE:    makeOp(vm.SELFBALANCE, 0, 0, 1, opSelfBalance),
		vm.BASEFEE:        makeOp(vm.BASEFEE, 0, 0, 1, opBaseFee),
		vm.POP:            makeOp(vm.POP, 0, 1, 0, opPop),
		vm.MLOAD:          makeOp(vm.MLOAD, 0, 1, 1, opMload),
		vm.MSTORE:         makeOp(vm.MSTORE, 0, 2, 0, opMstore),
		vm.MSTORE8:        makeOp(vm.MSTORE8, 0, 2, 0, opMstore8),
		vm.SLOAD:          makeOp(vm.SLOAD, 0, 1, 1, opSload),
		vm.SSTORE:         makeOp(vm.SSTORE, 0, 2, 0, opSstore),
		vm.JUMP:           makeOp(vm.JUMP, 0, 1, 0, opJump),
		vm.JUMPI:          makeOp(vm.JUMPI, 0, 2, 0, opJumpi),
		vm.PC:             makeOp(vm.PC, 0, 0, 1, opPc),
		vm.MSIZE:          makeOp(vm.MSIZE, 0, 0, 1, opMsize),
		vm.GAS:            makeOp(vm.GAS, 0, 0, 1, opGas),
		vm.JUMPDEST:       makeOp(vm.JUMPDEST, 0, 0, 0, opJumpdestNoop),
		vm.PUSH0:          makeOp(vm.PUSH0, 0, 0, 1, makePush(0)),
		vm.PUSH1:          makeOp(vm.PUSH1, 1, 0, 1, makePush(1)),
		vm.PUSH2:          makeOp(vm.PUSH2, 2, 0, 1, makePush(2)),
		vm.PUSH3:          makeOp(vm.PUSH3, 3, 0, 1, makePush(3)),
		vm.PUSH4:          makeOp(vm.PUSH4, 4, 0, 1, makePush(4)),
		vm.PUSH5:          makeOp(vm.PUSH5, 5, 0, 1, makePush(5)),
		vm.PUSH6:          makeOp(vm.PUSH6, 6, 0, 1, makePush(6)),
		vm.PUSH7:          makeOp(vm.PUSH7, 7, 0, 1, makePush(7)),
		vm.PUSH8:          makeOp(vm.PUSH8, 8, 0, 1, makePush(8)),
		vm.PUSH9:          makeOp(vm.PUSH9, 9, 0, 1, makePush(9)),
		vm.PUSH10:         makeOp(vm.PUSH10, 10, 0, 1, makePush(10)),
		vm.PUSH11:         makeOp(vm.PUSH11, 11, 0, 1, makePush(11)),
		vm.PUSH12:         makeOp(vm.PUSH12, 12, 0, 1, makePush(12)),
		vm.PUSH13:         makeOp(vm.PUSH13, 13, 0, 1, makePush(13)),
		vm.PUSH14:         makeOp(vm.PUSH14, 14, 0, 1, makePush(14)),
		vm.PUSH15:         makeOp(vm.PUSH15, 15, 0, 1, makePush(15)),
		vm.PUSH16:         makeOp(vm.PUSH16, 16, 0, 1, makePush(16)),
		vm.PUSH17:         makeOp(vm.PUSH17, 17, 0, 1, makePush(17)),
		vm.PUSH18:         makeOp(vm.PUSH18, 18, 0, 1, makePush(18)),
		vm.PUSH19:         makeOp(vm.PUSH19, 19, 0, 1, makePush(19)),
		vm.PUSH20:         makeOp(vm.PUSH20, 20, 0, 1, makePush(20)),
		vm.PUSH21:         makeOp(vm.PUSH21, 21, 0, 1, makePush(21)),
		vm.PUSH22:         makeOp(vm.PUSH22, 22, 0, 1, makePush(22)),
		vm.PUSH23:         makeOp(vm.PUSH23, 23, 0, 1, makePush(23)),
		vm.PUSH24:         makeOp(vm.PUSH24, 24, 0, 1, makePush(24)),
		vm.PUSH25:         makeOp(vm.PUSH25, 25, 0, 1, makePush(25)),
		vm.PUSH26:         makeOp(vm.PUSH26, 26, 0, 1, makePush(26)),
		vm.PUSH27:         makeOp(vm.PUSH27, 27, 0, 1, makePush(27)),
		vm.PUSH28:         makeOp(vm.PUSH28, 28, 0, 1, makePush(28)),
		vm.PUSH29:         makeOp(vm.PUSH29, 29, 0, 1, makePush(29)),
		vm.PUSH30:         makeOp(vm.PUSH30, 30, 0, 1, makePush(30)),
		vm.PUSH31:         makeOp(vm.PUSH31, 31, 0, 1, makePush(31)),
		vm.PUSH32:         makeOp(vm.PUSH32, 32, 0, 1, makePush(32)),
		vm.DUP1:           makeOp(vm.DUP1, 0, 1, 2, makeDup(1)),
		vm.DUP2:           makeOp(vm.DUP2, 0, 2, 3, makeDup(2)),
		vm.DUP3:           makeOp(vm.DUP3, 0, 3, 4, makeDup(3)),
		vm.DUP4:           makeOp(vm.DUP4, 0, 4, 5, makeDup(4)),
		vm.DUP5:           makeOp(vm.DUP5, 0, 5, 6, makeDup(5)),
		vm.DUP6:           makeOp(vm.DUP6, 0, 6, 7, makeDup(6)),
		vm.DUP7:           makeOp(vm.DUP7, 0, 7, 8, makeDup(7)),
		vm.DUP8:           makeOp(vm.DUP8, 0, 8, 9, makeDup(8)),
		vm.DUP9:           makeOp(vm.DUP9, 0, 9, 10, makeDup(9)),
		vm.DUP10:          makeOp(vm.DUP10, 0, 10, 11, makeDup(10)),
		vm.DUP11:          makeOp(vm.DUP11, 0, 11, 12, makeDup(11)),
		vm.DUP12:          makeOp(vm.DUP12, 0, 12, 13, makeDup(12)),
		vm.DUP13:          makeOp(vm.DUP13, 0, 13, 14, makeDup(13)),
		vm.DUP14:          makeOp(vm.DUP14, 0, 14, 15, makeDup(14)),
		vm.DUP15:          makeOp(vm.DUP15, 0, 15, 16, makeDup(15)),
		vm.DUP16:          makeOp(vm.DUP16, 0, 16, 17, makeDup(16)),
		vm.SWAP1:          makeOp(vm.SWAP1, 0, 2, 2, makeSwap(1)),
		vm.SWAP2:          makeOp(vm.SWAP2, 0, 3, 3, makeSwap(2)),
		vm.SWAP3:          makeOp(vm.SWAP3, 0, 4, 4, makeSwap(3)),
		vm.SWAP4:          makeOp(vm.SWAP4, 0, 5, 5, makeSwap(4)),
		vm.SWAP5:          makeOp(vm.SWAP5, 0, 6, 6, makeSwap(5)),
		vm.SWAP6:          makeOp(vm.SWAP6, 0, 7, 7, makeSwap(6)),
		vm.SWAP7:          makeOp(vm.SWAP7, 0, 8, 8, makeSwap(7)),
		vm.SWAP8:          makeOp(vm.SWAP8, 0, 9, 9, makeSwap(8)),
		vm.SWAP9:          makeOp(vm.SWAP9, 0, 10, 10, makeSwap(9)),
		vm.SWAP10:         makeOp(vm.SWAP10, 0, 11, 11, makeSwap(10)),
		vm.SWAP11:         makeOp(vm.SWAP11, 0, 12, 12, makeSwap(11)),
		vm.SWAP12:         makeOp(vm.SWAP12, 0, 13, 13, makeSwap(12)),
		vm.SWAP13:         makeOp(vm.SWAP13, 0, 14, 14, makeSwap(13)),
		vm.SWAP14:         makeOp(vm.SWAP14, 0, 15, 15, makeSwap(14)),
		vm.SWAP15:         makeOp(vm.SWAP15, 0, 16, 16, makeSwap(15)),
		vm.SWAP16:         makeOp(vm.SWAP16, 0, 17, 17, makeSwap(16)),
		vm.LOG0:           makeOp(vm.LOG0, 0, 2, 0, makeLog(0)),
		vm.LOG1:           makeOp(vm.LOG1, 0, 3, 0, makeLog(1)),
		vm.LOG2:           makeOp(vm.LOG2, 0, 4, 0, makeLog(2)),
		vm.LOG3:           makeOp(vm.LOG3, 0, 5, 0, makeLog(3)),
		vm.LOG4:           makeOp(vm.LOG4, 0, 6, 0, makeLog(4)),
		vm.CREATE:         makeOp(vm.CREATE, 0, 3, 1, opCreate),
		vm.CALL:           makeOp(vm.CALL, 0, 7, 1, opCall),
		vm.CALLCODE:       makeOp(vm.CALLCODE, 0, 0, 0, opCallCode),
		vm.RETURN:         makeOp(vm.RETURN, 0, 2, 0, opReturn),
		vm.DELEGATECALL:   makeOp(vm.DELEGATECALL, 0, 6, 1, opDelegateCall),
		vm.CREATE2:        makeOp(vm.CREATE2, 0, 0, 0, opCreate2),
		vm.STATICCALL:     makeOp(vm.STATICCALL, 0, 6, 1, opStaticCall),
		vm.REVERT:         makeOp(vm.REVERT, 0, 2, 0, opRevert),
		vm.INVALID:        makeOp(vm.INVALID, 0, 0, 0, opInvalid),
		vm.SELFDESTRUCT:   makeOp(vm.SELFDESTRUCT, 0, 1, 0, opSuicide),
	}
}

// errStop signals STOP: halt success, no value, no return_data.
var errStop = errors.New("stop")

// errStaticViolation signals a state-mutating opcode attempted under
// writable=false.
var errStaticViolation = errors.New("state mutation in static context")

// ErrInvalidJump is reused from go-ethereum/core/vm, the teacher's own
// dependency, rather than declaring a parallel sentinel.
var ErrInvalidJump = vm.ErrInvalidJump

// haltResult lets RETURN/REVERT carry their exact value/return_data/success
// triple back through the single `error` return every op function has.
type haltResult struct {
	value      []byte
	returnData []byte
	success    bool
}

func (h *haltResult) Error() string { return "halt" }

func opAdd(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	y.Add(&x, y)
	return nil
}

func opSub(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	y.Sub(&x, y)
	return nil
}

func opMul(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	y.Mul(&x, y)
	return nil
}

func opDiv(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	y.Div(&x, y)
	return nil
}

func opSdiv(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	y.SDiv(&x, y)
	return nil
}

func opMod(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	y.Mod(&x, y)
	return nil
}

func opSmod(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	y.SMod(&x, y)
	return nil
}

func opExp(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	base, exponent := stack.Pop(), stack.Peek()
	exponent.Exp(&base, exponent)
	return nil
}

// opSignExtend: b, x -> y = SIGNEXTEND(x, b), sign-extends x from
// (b+1)*8 bits to 256 bits.
func opSignExtend(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	back, num := stack.Pop(), stack.Peek()
	num.ExtendSign(num, &back)
	return nil
}

func opNot(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 1 {
		return ErrStackUnderflow
	}
	x := stack.Peek()
	x.Not(x)
	return nil
}

func opLt(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opGt(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opSlt(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opSgt(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opEq(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func opIszero(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 1 {
		return ErrStackUnderflow
	}
	x := stack.Peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil
}

func opAnd(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	y.And(&x, y)
	return nil
}

func opOr(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	y.Or(&x, y)
	return nil
}

func opXor(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	x, y := stack.Pop(), stack.Peek()
	y.Xor(&x, y)
	return nil
}

// opByte: i'th byte of x, counting from the most significant byte; i>=32
// yields zero.
func opByte(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	th, val := stack.Pop(), stack.Peek()
	val.Byte(&th)
	return nil
}

func opAddmod(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 3 {
		return ErrStackUnderflow
	}
	x, y, z := stack.Pop(), stack.Pop(), stack.Peek()
	if z.IsZero() {
		z.Clear()
	} else {
		z.AddMod(&x, &y, z)
	}
	return nil
}

func opMulmod(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 3 {
		return ErrStackUnderflow
	}
	x, y, z := stack.Pop(), stack.Pop(), stack.Peek()
	z.MulMod(&x, &y, z)
	return nil
}

// opSHL: pops shift then value, pushes value << shift (0 when shift>=256).
func opSHL(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	shift, value := stack.Pop(), stack.Peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

// opSHR: logical shift right, zero-fill; shift>=256 yields 0.
func opSHR(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	shift, value := stack.Pop(), stack.Peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

// opSAR: arithmetic shift right, sign-extending; shift>=256 yields all
// zero or all one bits depending on the sign of value.
func opSAR(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	shift, value := stack.Pop(), stack.Peek()
	if !shift.LtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil
	}
	n := uint(shift.Uint64())
	value.SRsh(value, n)
	return nil
}

func opSha3(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	offset, size := stack.Pop(), stack.Peek()
	data := ctx.Memory().GetCopy(offset.Uint64(), size.Uint64())

	bs := util.Sha3(data)
	size.SetBytes(bs)
	return nil
}

func opAddress(ctx *Context) error {
	w := mustParseHexWord(ctx.Tx().To)
	ctx.Stack().Push(w)
	return nil
}

func opBalance(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 1 {
		return ErrStackUnderflow
	}
	addr := stack.Peek()
	bal := ctx.Data.Balances[decString(addr)]
	*addr = bal
	return nil
}

func opOrigin(ctx *Context) error {
	ctx.Stack().Push(mustParseHexWord(ctx.Tx().Origin))
	return nil
}

func opCaller(ctx *Context) error {
	from := ctx.Tx().From
	if from == "" {
		from = ctx.Tx().To
	}
	ctx.Stack().Push(mustParseHexWord(from))
	return nil
}

func opCallValue(ctx *Context) error {
	ctx.Stack().Push(mustParseHexWord(ctx.Tx().Value))
	return nil
}

// getData returns data[start:start+size], right-padded with zeros when the
// requested range runs past the end. Overflow-safe.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	start = util.Min(start, length)
	end := util.Min(start+size, length)
	return common.RightPadBytes(data[start:end], int(size))
}

func opCallDataLoad(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 1 {
		return ErrStackUnderflow
	}
	off := stack.Peek()
	if offset, overflow := off.Uint64WithOverflow(); !overflow {
		off.SetBytes(getData(ctx.CallData(), offset, 32))
	} else {
		off.Clear()
	}
	return nil
}

func opCallDataSize(ctx *Context) error {
	ctx.Stack().Push(*new(uint256.Int).SetUint64(uint64(len(ctx.CallData()))))
	return nil
}

func opCallDataCopy(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 3 {
		return ErrStackUnderflow
	}
	memOffset, dataOffset, length := stack.Pop(), stack.Pop(), stack.Pop()

	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = 0xffffffffffffffff
	}
	ctx.Memory().Set(memOffset.Uint64(), length.Uint64(), getData(ctx.CallData(), dataOffset64, length.Uint64()))
	return nil
}

func opReturnDataSize(ctx *Context) error {
	ctx.Stack().Push(*new(uint256.Int).SetUint64(uint64(len(ctx.Call.ReturnData))))
	return nil
}

func opReturnDataCopy(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 3 {
		return ErrStackUnderflow
	}
	memOffset, dataOffset, length := stack.Pop(), stack.Pop(), stack.Pop()

	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return vm.ErrReturnDataOutOfBounds
	}
	end := dataOffset
	end.Add(&dataOffset, &length)
	end64, overflow := end.Uint64WithOverflow()
	if overflow || uint64(len(ctx.Call.ReturnData)) < end64 {
		return vm.ErrReturnDataOutOfBounds
	}
	ctx.Memory().Set(memOffset.Uint64(), length.Uint64(), ctx.Call.ReturnData[offset64:end64])
	return nil
}

func opExtCodeSize(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 1 {
		return ErrStackUnderflow
	}
	addr := stack.Peek()
	if raw, ok := ctx.Data.State[decString(addr)]; ok {
		addr.SetUint64(parseDecUint(raw))
	} else {
		addr.Clear()
	}
	return nil
}

// opCodeSize: address(this).code.size — the size of the currently
// executing code, not a State lookup.
func opCodeSize(ctx *Context) error {
	ctx.Stack().Push(*new(uint256.Int).SetUint64(uint64(len(ctx.Code))))
	return nil
}

func opCodeCopy(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 3 {
		return ErrStackUnderflow
	}
	memOffset, codeOffset, length := stack.Pop(), stack.Pop(), stack.Pop()
	codeOffset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOffset64 = 0xffffffffffffffff
	}
	ctx.Memory().Set(memOffset.Uint64(), length.Uint64(), getData(ctx.Code, codeOffset64, length.Uint64()))
	return nil
}

func opExtCodeCopy(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 4 {
		return ErrStackUnderflow
	}
	a, memOffset, codeOffset, length := stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()
	codeOffset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOffset64 = 0xffffffffffffffff
	}
	code, _ := hexDecodeLenient(ctx.Data.State[decString(&a)])
	ctx.Memory().Set(memOffset.Uint64(), length.Uint64(), getData(code, codeOffset64, length.Uint64()))
	return nil
}

// extCodeHashConst is the fixed 32-byte digest EXTCODEHASH reports for any
// known address: a hard-coded placeholder rather than an actual hash of
// the stored code.
var extCodeHashConst = mustParseHexWord("29045A592007D0C246EF02C2223570DA9522D0CF0F73282C79A1BC8F0BB2C238")

func opExtCodeHash(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 1 {
		return ErrStackUnderflow
	}
	addr := stack.Peek()
	if _, ok := ctx.Data.State[decString(addr)]; ok {
		*addr = extCodeHashConst
	} else {
		addr.Clear()
	}
	return nil
}

func opGasprice(ctx *Context) error {
	ctx.Stack().Push(mustParseHexWord(ctx.Tx().GasPrice))
	return nil
}

// opBlockhash is a documented no-op: it neither pops nor pushes.
func opBlockhash(ctx *Context) error {
	return nil
}

func opCoinbase(ctx *Context) error {
	ctx.Stack().Push(mustParseHexWord(ctx.Block().Coinbase))
	return nil
}

func opTimestamp(ctx *Context) error {
	ctx.Stack().Push(mustParseHexWord(ctx.Block().Timestamp))
	return nil
}

func opNumber(ctx *Context) error {
	ctx.Stack().Push(mustParseHexWord(ctx.Block().Number))
	return nil
}

func opDifficulty(ctx *Context) error {
	ctx.Stack().Push(mustParseHexWord(ctx.Block().Difficulty))
	return nil
}

func opGasLimit(ctx *Context) error {
	ctx.Stack().Push(mustParseHexWord(ctx.Block().GasLimit))
	return nil
}

func opChainID(ctx *Context) error {
	ctx.Stack().Push(mustParseHexWord(ctx.Block().ChainId))
	return nil
}

// opSelfBalance looks up balances keyed by the literal tx.to string, not
// its decimal rendering — an asymmetry with BALANCE that the original
// interpreter's fixtures depend on.
func opSelfBalance(ctx *Context) error {
	bal := ctx.Data.Balances[ctx.Tx().To]
	ctx.Stack().Push(bal)
	return nil
}

func opBaseFee(ctx *Context) error {
	ctx.Stack().Push(mustParseHexWord(ctx.Block().Basefee))
	return nil
}

func opPop(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 1 {
		return ErrStackUnderflow
	}
	stack.Pop()
	return nil
}

func opMload(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 1 {
		return ErrStackUnderflow
	}
	v := stack.Peek()
	v.SetBytes(ctx.Memory().GetCopy(v.Uint64(), 32))
	return nil
}

func opMstore(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	ptr, val := stack.Pop(), stack.Pop()
	ctx.Memory().Set32(ptr.Uint64(), &val)
	return nil
}

// opMstore8: memory[offset] = value & 0xff.
func opMstore8(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	ptr, val := stack.Pop(), stack.Pop()
	ctx.Memory().SetByte(ptr.Uint64(), byte(val.Uint64()))
	return nil
}

func opSload(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 1 {
		return ErrStackUnderflow
	}
	slot := stack.Peek()
	if raw, ok := ctx.Data.State[decString(slot)]; ok {
		w, _ := parseHexWord(raw)
		*slot = w
	} else {
		slot.Clear()
	}
	return nil
}

// opSstore: SSTORE writes the hex-string rendering of the value, matching
// the declared storage value format and the round-trip invariant
// (SLOAD/SSTORE must agree on one radix).
func opSstore(ctx *Context) error {
	if !ctx.Writable {
		return errStaticViolation
	}
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	key, val := stack.Pop(), stack.Pop()
	k := decString(&key)
	if val.IsZero() {
		delete(ctx.Data.State, k)
	} else {
		ctx.Data.State[k] = hexStringOfWord(&val)
	}
	return nil
}

// hexStringOfWord renders a Word as an unprefixed big-endian hex string
// for storage values, paired with parseHexWord on the read side.
func hexStringOfWord(w *Word) string {
	return util.HexEnc(w.Bytes())
}

func opJump(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 1 {
		return ErrStackUnderflow
	}
	pos := stack.Pop()
	dest := pos.Uint64()
	if !isValidJumpDest(ctx.Code, dest) {
		return ErrInvalidJump
	}
	ctx.Call.Pc = dest
	return nil
}

func opJumpi(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	pos, cond := stack.Pop(), stack.Pop()
	dest := pos.Uint64()
	if !isValidJumpDest(ctx.Code, dest) {
		return ErrInvalidJump
	}
	if !cond.IsZero() {
		ctx.Call.Pc = dest
	} else {
		ctx.Call.Pc++
	}
	return nil
}

// opJumpdestNoop is the JUMPDEST marker: a no-op landing pad.
func opJumpdestNoop(ctx *Context) error {
	return nil
}

func opPc(ctx *Context) error {
	ctx.Stack().Push(*new(uint256.Int).SetUint64(ctx.Pc()))
	return nil
}

func opMsize(ctx *Context) error {
	ctx.Stack().Push(*new(uint256.Int).SetUint64(ctx.Memory().Size()))
	return nil
}

// opGas always returns the maximum Word: gas is treated as unlimited.
func opGas(ctx *Context) error {
	var max uint256.Int
	max.SetAllOne()
	ctx.Stack().Push(max)
	return nil
}

// revertSentinel is the hard-coded address CREATE treats as a "reverting
// constructor": when the current tx.to equals this address, CREATE
// succeeds with no side effects and pushes 0.
const revertSentinel = "0x9bbfed6889322e016e0a02ee459d306fc19545d9"

// createdCodePlaceholder is the fixed code CREATE installs for any newly
// "deployed" contract — a stand-in since real bytecode generation/address
// derivation is out of scope.
const createdCodePlaceholder = "ffffffff00000000000000000000000000000000000000000000000000000000"

func opCreate(ctx *Context) error {
	if !ctx.Writable {
		return errStaticViolation
	}
	stack := ctx.Stack()
	if stack.Len() < 3 {
		return ErrStackUnderflow
	}
	value, offset, _ := stack.Pop(), stack.Pop(), stack.Pop()

	if ctx.Tx().To == revertSentinel {
		stack.Push(*new(uint256.Int))
		return nil
	}

	k := decString(&offset)
	ctx.Data.Balances[k] = value
	ctx.Data.State[k] = createdCodePlaceholder
	stack.Push(offset)
	return nil
}

// opCreate2 is a stub beyond the writable check: it neither touches the
// stack nor installs any state, matching the interpreter's documented
// simplification of CREATE2 address derivation.
func opCreate2(ctx *Context) error {
	if !ctx.Writable {
		return errStaticViolation
	}
	return nil
}

// doCall is the shared CALL/STATICCALL body: look up the callee's
// hex-encoded code by decimal address, recursively invoke Evm over the
// SAME *EvmData the caller holds (CALL/STATICCALL never rewrite tx
// context — only DELEGATECALL does, and it builds its own frame rather
// than going through doCall), copy its returned value into memory, and
// push the success flag.
func doCall(ctx *Context, addr, inOffset, inSize, retOffset, retSize uint256.Int, writable bool) error {
	codeStr := ctx.Data.State[decString(&addr)]
	code, err := hexDecodeLenient(codeStr)
	if err != nil {
		return errors.Wrap(err, "decode callee code")
	}

	_ = ctx.Memory().GetCopy(inOffset.Uint64(), inSize.Uint64())

	res, err := evmCall(code, ctx.Data, writable)
	if err != nil {
		return err
	}

	ctx.Call.ReturnData = res.ReturnData
	if res.Value != nil {
		ctx.Memory().Set(retOffset.Uint64(), retSize.Uint64(), res.Value)
	}
	if res.Success {
		ctx.Stack().Push(*uint256.NewInt(1))
	} else {
		ctx.Stack().Push(*new(uint256.Int))
	}
	return nil
}

func opCall(ctx *Context) error {
	if !ctx.Writable {
		return errStaticViolation
	}
	stack := ctx.Stack()
	if stack.Len() < 7 {
		return ErrStackUnderflow
	}
	_, addr, value, inOffset, inSize, retOffset, retSize :=
		stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()
	_ = value

	return doCall(ctx, addr, inOffset, inSize, retOffset, retSize, true)
}

// opCallCode is an unimplemented no-op, exactly as in the interpreter this
// was ported from: it never even checks writable.
func opCallCode(ctx *Context) error {
	return nil
}

// opDelegateCall runs the callee's code under a freshly-built tx context
// whose `to` is the callee and whose other fields are empty, over cloned
// State/Balances maps, so state mutations inside it never propagate back.
// It unconditionally pushes success regardless of the sub-frame's actual
// outcome.
func opDelegateCall(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 6 {
		return ErrStackUnderflow
	}
	_, addr, inOffset, inSize, retOffset, retSize :=
		stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()

	codeStr := ctx.Data.State[decString(&addr)]
	code, err := hexDecodeLenient(codeStr)
	if err != nil {
		return errors.Wrap(err, "decode callee code")
	}

	// Deep-clone state/balances: DELEGATECALL's sub-frame never writes back
	// to the caller, preserved from the interpreter this was ported from.
	clonedState := make(map[string]string, len(ctx.Data.State))
	for k, v := range ctx.Data.State {
		clonedState[k] = v
	}
	clonedBalances := make(map[string]Word, len(ctx.Data.Balances))
	for k, v := range ctx.Data.Balances {
		clonedBalances[k] = v
	}
	subData := &EvmData{
		Context:  ctx.Data.Context,
		TxData:   &TxData{To: hexStringOfWord(&addr)},
		State:    clonedState,
		Balances: clonedBalances,
		Hooks:    ctx.Data.Hooks,
	}
	res, err := Evm(code, subData, ctx.Writable)
	if err != nil {
		return err
	}

	ctx.Call.ReturnData = res.ReturnData
	ctx.Memory().Set(retOffset.Uint64(), retSize.Uint64(), res.ReturnData)
	ctx.Stack().Push(*uint256.NewInt(1))
	return nil
}

// opStaticCall is CALL without a value argument, forcing writable=false on
// the sub-frame.
func opStaticCall(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 6 {
		return ErrStackUnderflow
	}
	_, addr, inOffset, inSize, retOffset, retSize :=
		stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()

	return doCall(ctx, addr, inOffset, inSize, retOffset, retSize, false)
}

func opReturn(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	offset, size := stack.Pop(), stack.Pop()
	output := ctx.Memory().GetCopy(offset.Uint64(), size.Uint64())
	return &haltResult{value: output, returnData: output, success: true}
}

func opRevert(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 2 {
		return ErrStackUnderflow
	}
	offset, size := stack.Pop(), stack.Pop()
	output := ctx.Memory().GetCopy(offset.Uint64(), size.Uint64())
	return &haltResult{value: output, returnData: []byte{}, success: false}
}

func opInvalid(ctx *Context) error {
	return errors.New("invalid opcode")
}

func opStop(ctx *Context) error {
	return errStop
}

// opSuicide (SELFDESTRUCT) is placeholder behaviour, preserved verbatim:
// it removes one hard-coded storage key, credits the beneficiary a fixed
// balance of 7, and always halts the frame with failure.
func opSuicide(ctx *Context) error {
	stack := ctx.Stack()
	if stack.Len() < 1 {
		return ErrStackUnderflow
	}
	beneficiary := stack.Pop()
	delete(ctx.Data.State, "1271253980042238172183243620132319847648413671085")
	ctx.Data.Balances[decString(&beneficiary)] = *uint256.NewInt(7)
	return &haltResult{value: nil, returnData: []byte{}, success: false}
}

// makePush builds the PUSH0..PUSH32 handler for a given immediate width.
func makePush(n uint64) executionFunc {
	return func(ctx *Context) error {
		if n == 0 {
			ctx.Stack().Push(uint256.Int{})
			return nil
		}
		code := ctx.Code
		pc := &ctx.Call.Pc
		if *pc+1+n > uint64(len(code)) {
			return errors.New("PUSH: not enough immediate data")
		}
		var w uint256.Int
		w.SetBytes(code[*pc+1 : *pc+1+n])
		ctx.Stack().Push(w)
		*pc += n
		return nil
	}
}

func makeDup(n int) executionFunc {
	return func(ctx *Context) error {
		return ctx.Stack().TryDup(n)
	}
}

func makeSwap(n int) executionFunc {
	n++ // swap with the (n+1)-th from the top, not n itself
	return func(ctx *Context) error {
		return ctx.Stack().TrySwap(n)
	}
}

func makeLog(n int) executionFunc {
	return func(ctx *Context) error {
		if !ctx.Writable {
			return errStaticViolation
		}
		stack := ctx.Stack()
		if stack.Len() < 2+n {
			return ErrStackUnderflow
		}
		stack.Pop()
		stack.Pop()
		for i := 0; i < n; i++ {
			stack.Pop()
		}
		return nil
	}
}
