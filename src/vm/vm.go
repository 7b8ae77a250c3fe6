// Package vm implements the reference interpreter for the assembled instruction stream
// (spec.md section 4.5): eight arbitrary-precision registers, sparse address-keyed memory, and
// a program counter over a flat program. Grounded on KTStephano-GVM's vm/exec.go dispatch loop
// (registers array + "address-keyed sparse memory + cost-counted interpreter loop" shape) but
// specialized to the fixed nineteen-op, at-most-one-operand instruction set this compiler
// emits rather than a general stack machine.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"strings"

	"ivc/src/backend/asm"
	"ivc/src/ir/lir"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// NumRegisters is the size of the register file, letters a..h (spec.md section 4.5).
const NumRegisters = 8

// Per-instruction costs (spec.md section 4.5): Load/Store are the expensive memory-touching
// ops, Add/Sub are cheap arithmetic, everything else (Get/Put/Rst/Inc/Dec/Shl/Shr/jumps/Strk)
// costs one tick, and Read/Write dominate as the only I/O-bound ops.
const (
	costLoadStore = 50
	costAddSub    = 5
	costDefault   = 1
	costReadWrite = 100
)

// VM is one interpreter instance: registers, sparse memory and the two cost counters spec.md
// section 4.5 requires (t for computation, io for input/output). A VM is single-use -- callers
// construct a fresh one per run (spec.md section 5: "single-threaded and synchronous").
type VM struct {
	Registers [NumRegisters]*big.Int
	Memory    map[int]*big.Int
	lr        int // Program counter; spec.md calls this "lr" (the Strk/Jumpr link register).

	T  int64 // Accumulated operation cost.
	IO int64 // Accumulated I/O cost.

	in  *bufio.Reader
	out io.Writer
}

// RuntimeError reports a VM execution fault: an out-of-range program counter (spec.md section
// 4.5: "continues until Halt or an out-of-range lr, which is a runtime error"), or a READ whose
// input is missing or is not a non-negative decimal integer.
type RuntimeError struct {
	Addr int
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("vm: runtime error at address %d: %s", e.Addr, e.Msg)
}

// ---------------------
// ----- Functions -----
// ---------------------

// New constructs a VM with all registers zeroed, reading Read input from in and writing Write
// output to out.
func New(in io.Reader, out io.Writer) *VM {
	v := &VM{
		Memory: make(map[int]*big.Int),
		in:     bufio.NewReader(in),
		out:    out,
	}
	for i1 := range v.Registers {
		v.Registers[i1] = big.NewInt(0)
	}
	return v
}

// memAt returns the big.Int stored at addr, defaulting to (and recording) zero for an address
// never written, since Memory is sparse (spec.md section 4.5).
func (v *VM) memAt(addr int) *big.Int {
	n, ok := v.Memory[addr]
	if !ok {
		n = big.NewInt(0)
		v.Memory[addr] = n
	}
	return n
}

// saturatingSub returns max(0, a-b) as a fresh big.Int (spec.md section 3: "Sub{r}: A <-
// max(0, A - value_of(r))" -- the VM's only subtraction primitive, used directly by SUB and,
// through compiler lowering, by every comparison, multiplication and division).
func saturatingSub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	if r.Sign() < 0 {
		return big.NewInt(0)
	}
	return r
}

// Run executes lines starting at address 0 until a HALT or a runtime error (spec.md section
// 4.5). It returns the total cost (T+IO) on success.
func (v *VM) Run(lines []asm.Line) (int64, error) {
	for {
		if v.lr < 0 || v.lr >= len(lines) {
			return 0, &RuntimeError{Addr: v.lr, Msg: "program counter out of range"}
		}
		addr := v.lr
		line := lines[v.lr]
		halted, err := v.step(line, addr)
		if err != nil {
			return 0, err
		}
		if halted {
			return v.T + v.IO, nil
		}
	}
}

func regIndex(letter string) int {
	return int(letter[0] - 'a')
}

// accIndex is the accumulator's slot in Registers: vreg 0 is pre-bound to physical register A
// (spec.md section 3), so lowercase "a" always names Registers[0].
const accIndex = 0

// step executes one Line at address addr, returning whether the program halted. Every op
// except the jump family and STRK advances lr by one after executing; jumps set lr themselves,
// and STRK's own +1 convention is spelled out at its case (spec.md section 4.5).
func (v *VM) step(line asm.Line, addr int) (bool, error) {
	a := v.Registers[accIndex]

	switch line.Op {
	case lir.OpRead:
		n, err := v.readInt()
		if err != nil {
			return false, &RuntimeError{Addr: addr, Msg: fmt.Sprintf("READ: %s", err)}
		}
		v.Registers[accIndex] = n
		v.IO += costReadWrite
		v.lr++

	case lir.OpWrite:
		fmt.Fprintln(v.out, a.String())
		v.IO += costReadWrite
		v.lr++

	case lir.OpLoad:
		r := v.Registers[regIndex(line.Reg)]
		v.Registers[accIndex] = new(big.Int).Set(v.memAt(int(r.Int64())))
		v.T += costLoadStore
		v.lr++

	case lir.OpStore:
		r := v.Registers[regIndex(line.Reg)]
		v.Memory[int(r.Int64())] = new(big.Int).Set(a)
		v.T += costLoadStore
		v.lr++

	case lir.OpAdd:
		r := v.Registers[regIndex(line.Reg)]
		v.Registers[accIndex] = new(big.Int).Add(a, r)
		v.T += costAddSub
		v.lr++

	case lir.OpSub:
		r := v.Registers[regIndex(line.Reg)]
		v.Registers[accIndex] = saturatingSub(a, r)
		v.T += costAddSub
		v.lr++

	case lir.OpGet:
		v.Registers[accIndex] = new(big.Int).Set(v.Registers[regIndex(line.Reg)])
		v.T += costDefault
		v.lr++

	case lir.OpPut:
		v.Registers[regIndex(line.Reg)] = new(big.Int).Set(a)
		v.T += costDefault
		v.lr++

	case lir.OpRst:
		v.Registers[regIndex(line.Reg)] = big.NewInt(0)
		v.T += costDefault
		v.lr++

	case lir.OpInc:
		r := regIndex(line.Reg)
		v.Registers[r] = new(big.Int).Add(v.Registers[r], big.NewInt(1))
		v.T += costDefault
		v.lr++

	case lir.OpDec:
		r := regIndex(line.Reg)
		v.Registers[r] = saturatingSub(v.Registers[r], big.NewInt(1))
		v.T += costDefault
		v.lr++

	case lir.OpShl:
		r := regIndex(line.Reg)
		v.Registers[r] = new(big.Int).Lsh(v.Registers[r], 1)
		v.T += costDefault
		v.lr++

	case lir.OpShr:
		r := regIndex(line.Reg)
		v.Registers[r] = new(big.Int).Rsh(v.Registers[r], 1)
		v.T += costDefault
		v.lr++

	case lir.OpJump:
		v.lr = line.Addr
		v.T += costDefault

	case lir.OpJpos:
		v.T += costDefault
		if a.Sign() > 0 {
			v.lr = line.Addr
		} else {
			v.lr++
		}

	case lir.OpJzero:
		v.T += costDefault
		if a.Sign() == 0 {
			v.lr = line.Addr
		} else {
			v.lr++
		}

	case lir.OpStrk:
		// The call site is the two-instruction pair STRK (here, at addr) followed immediately
		// by the JUMP to the callee (at addr+1). STRK captures addr+1 -- the address of that
		// JUMP, i.e. lr's value once this instruction's own advance-by-one takes effect -- so
		// that JUMPR's "+1" convention below lands the return exactly on addr+2, the
		// instruction right after the whole call site (spec.md section 4.5).
		v.Registers[regIndex(line.Reg)] = big.NewInt(int64(addr + 1))
		v.T += costDefault
		v.lr = addr + 1

	case lir.OpJumpr:
		// Resumes at value_in_r + 1 (spec.md section 4.5), matching STRK's own +1 capture above.
		r := v.Registers[regIndex(line.Reg)]
		v.lr = int(r.Int64()) + 1
		v.T += costDefault

	case lir.OpHalt:
		v.T += costDefault
		return true, nil

	default:
		panic(fmt.Sprintf("vm: unhandled op %d", int(line.Op)))
	}

	return false, nil
}

// readInt reads one non-negative decimal integer from v.in (spec.md section 4.5: registers
// hold "arbitrary-precision non-negative integers").
func (v *VM) readInt() (*big.Int, error) {
	for {
		tok, err := v.in.ReadString('\n')
		tok = strings.TrimSpace(tok)
		if tok != "" {
			n, ok := new(big.Int).SetString(tok, 10)
			if !ok || n.Sign() < 0 {
				return nil, fmt.Errorf("malformed input %q", tok)
			}
			return n, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
