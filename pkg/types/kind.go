package types

import "fmt"

// kind of lock a holder owns
type LockKind uint

const (
	// KindNone marks an unlocked name in status reports.
	KindNone LockKind = iota
	// KindExclusive grants sole access; incompatible with every other holder.
	KindExclusive
	// KindShared coexists with other shared holders, never with exclusive.
	KindShared
)

func (k LockKind) String() string {
	switch k {
	case KindNone:
		return "unlocked"
	case KindExclusive:
		return "exclusive"
	case KindShared:
		return "shared"
	default:
		return fmt.Sprintf("unknown(%d)", uint(k))
	}
}

// ParseKind maps the wire representation to a LockKind.
func ParseKind(s string) (LockKind, error) {
	switch s {
	case "exclusive":
		return KindExclusive, nil
	case "shared":
		return KindShared, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}
