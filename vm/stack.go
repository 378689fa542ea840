package vm

const (
	STACK_LIMIT = 16 // Maximum stack depth
)

// Stack is the fixed depth return address stack.
type Stack struct {
	Data [STACK_LIMIT]uint16
	SP   uint8 // Number of entries in use.
}

// Push appends a return address. It fails if the stack is full.
func (s *Stack) Push(value uint16) (ok bool) {
	if s.Full() {
		return
	}

	s.Data[s.SP] = value
	s.SP++
	return true
}

// Pop removes the most recent return address.
func (s *Stack) Pop() (value uint16, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.SP--
	}
	return
}

func (s *Stack) Empty() bool {
	return s.SP == 0
}

func (s *Stack) Full() bool {
	return int(s.SP) == STACK_LIMIT
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[s.SP-1], true
}

// Len returns the number of entries on the stack.
func (s *Stack) Len() int {
	return int(s.SP)
}

func (s *Stack) Reset() {
	clear(s.Data[:])
	s.SP = 0
}
