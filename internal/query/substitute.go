package query

import "strings"

// Placeholder tokens recognized inside string-leaf variables.
const (
	PlaceholderAddress      = "{user_eth_address}"
	PlaceholderAddressLower = "{user_eth_address_lowercase}"
)

// ZeroAddress is substituted when no user address is supplied, so that
// dry-run and schema-inspection flows proceed instead of aborting.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// UserContext carries the per-user values available to substitution. It is
// passed explicitly; nothing here is read from process-wide state.
type UserContext struct {
	// Address is the requesting user's address in its original casing.
	Address string
}

func (u UserContext) address() string {
	if u.Address == "" {
		return ZeroAddress
	}
	return u.Address
}

// Substitute returns a copy of vars with every occurrence of the
// recognized placeholder tokens replaced by the literal context values.
// Replacement is plain token substitution with no escaping rules; strings
// without placeholders and numeric leaves pass through unchanged. The
// function is pure: its inputs are never mutated.
func Substitute(vars Variables, uctx UserContext) Variables {
	addr := uctx.address()
	lower := strings.ToLower(addr)

	switch vars.Kind {
	case KindString:
		s := strings.ReplaceAll(vars.Str, PlaceholderAddressLower, lower)
		s = strings.ReplaceAll(s, PlaceholderAddress, addr)
		return String(s)
	case KindMap:
		children := make(map[string]Variables, len(vars.Map))
		for k, child := range vars.Map {
			children[k] = Substitute(child, uctx)
		}
		return Map(children)
	default:
		return vars
	}
}
