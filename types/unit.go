// unit.go defines the Unit enum: the unit durations are reported in.

package types

import (
	"fmt"
	"strings"
)

type Unit int

const (
	UnitUndefined = Unit(iota)
	UnitNanoseconds
	UnitMilliseconds
	EndOfUnit
)

func (u Unit) String() string {
	switch u {
	case UnitUndefined:
		return "<undefined>"
	case UnitNanoseconds:
		return "ns"
	case UnitMilliseconds:
		return "ms"
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

func UnitFromString(s string) (Unit, error) {
	s = strings.Trim(strings.ToLower(s), " \"\n\r\t")
	for u := UnitNanoseconds; u < EndOfUnit; u++ {
		if u.String() == s {
			return u, nil
		}
	}
	return UnitUndefined, fmt.Errorf("unknown unit: '%s'", s)
}

// Set implements pflag.Value.
func (u *Unit) Set(s string) error {
	v, err := UnitFromString(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Type implements pflag.Value.
func (u *Unit) Type() string {
	return "unit"
}

func (u *Unit) UnmarshalText(b []byte) error {
	return u.Set(string(b))
}

func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}
