package chain

import "strconv"

// ErrIndexOutOfRange is returned when an index falls outside the range an
// operation accepts. Insert accepts 0 through Length; Remove and Get accept
// 0 through Length-1.
type ErrIndexOutOfRange struct {
	Op     string
	Index  int
	Length int
}

func (e ErrIndexOutOfRange) Error() string {
	return e.Op + ": index " + strconv.Itoa(e.Index) + " out of range for chain of length " + strconv.Itoa(e.Length)
}

// ErrEmptyChain is returned by Remove and Get on a chain with no nodes.
// It unwraps to ErrIndexOutOfRange.
type ErrEmptyChain struct {
	Op    string
	Index int
}

func (e ErrEmptyChain) Error() string {
	return e.Op + ": chain is empty"
}

func (e ErrEmptyChain) Unwrap() error {
	return ErrIndexOutOfRange{Op: e.Op, Index: e.Index, Length: 0}
}
