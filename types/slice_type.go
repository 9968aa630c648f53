// slice_type.go defines the SliceType enum and its methods.

package types

import (
	"fmt"
)

type SliceType int

const (
	SliceTypeUnknown = SliceType(iota)
	SliceTypeI
	SliceTypeP
	SliceTypeB
	EndOfSliceType
)

func (t SliceType) String() string {
	switch t {
	case SliceTypeUnknown:
		return "?"
	case SliceTypeI:
		return "I"
	case SliceTypeP:
		return "P"
	case SliceTypeB:
		return "B"
	}
	return fmt.Sprintf("SliceType(%d)", int(t))
}
