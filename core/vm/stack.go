package vm

import (
	"sync"
)

// Stack is the 1024-entry U256 evaluation stack (§3 C3). The interpreter
// loop validates an opcode's minStack/maxStack before dispatch, so the
// per-opcode pop/peek/push helpers below trust the caller and never
// re-check bounds themselves — mirroring the teacher's own stack, which
// carries no error return on the hot path.
type Stack struct {
	data []U256
}

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{data: make([]U256, 0, 16)}
	},
}

func newStack() *Stack {
	return stackPool.Get().(*Stack)
}

func returnStack(s *Stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

func (s *Stack) push(v *U256) {
	s.data = append(s.data, *v)
}

func (s *Stack) pop() (v U256) {
	n := len(s.data) - 1
	v = s.data[n]
	s.data = s.data[:n]
	return v
}

// pop2 pops two values in push order (first-popped, second-popped), the
// shape most binary opcodes consume.
func (s *Stack) pop2() (U256, U256) {
	return s.pop(), s.pop()
}

func (s *Stack) len() int { return len(s.data) }

// peek returns the top of stack without popping it.
func (s *Stack) peek() *U256 {
	return &s.data[len(s.data)-1]
}

// Back returns the n-th element from the top, 0-indexed (Back(0) == peek()).
func (s *Stack) Back(n int) *U256 {
	return &s.data[len(s.data)-n-1]
}

func (s *Stack) swap(n int) {
	top := len(s.data) - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
}

func (s *Stack) dup(n int) {
	s.data = append(s.data, s.data[len(s.data)-n])
}

func (s *Stack) Data() []U256 { return s.data }
