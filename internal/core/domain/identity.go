package domain

import "strings"

// IdentityKind distinguishes the two identifier namespaces the upstream
// uses for the same logical item. The namespaces overlap syntactically but
// behave differently against the enrichment endpoint, so downstream code
// branches on Kind instead of sniffing string patterns.
type IdentityKind string

const (
	// VendorID is a vendor-assigned alphanumeric identifier.
	VendorID IdentityKind = "vendor"

	// NumericID is a plain numeric identifier such as an ISBN. Numeric
	// identities are a known correlate of a higher hard-failure rate
	// against the enrichment endpoint.
	NumericID IdentityKind = "isbn"
)

// Identity is the key used to deduplicate and merge catalog items.
// It is an opaque tagged value; the zero Identity is invalid.
type Identity struct {
	Kind  IdentityKind `json:"kind"`
	Value string       `json:"value"`
}

// String returns the canonical "kind:value" form used as map keys and in
// persisted files.
func (id Identity) String() string {
	return string(id.Kind) + ":" + id.Value
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool {
	return id.Value == ""
}

// ClassifyRawID tags a bare identifier string as reported by the listing
// endpoint. This is the single sanctioned place where namespace detection
// happens: identifiers made entirely of digits (with an optional trailing
// ISBN-10 check character) are numeric, everything else is vendor-assigned.
func ClassifyRawID(raw string) Identity {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}
	}
	if isNumericID(raw) {
		return Identity{Kind: NumericID, Value: raw}
	}
	return Identity{Kind: VendorID, Value: raw}
}

// ParseIdentity parses the canonical "kind:value" form. Bare identifiers
// from legacy files are accepted and classified like listing output.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identity{}, ErrInvalidIdentity
	}

	kind, value, found := strings.Cut(s, ":")
	if !found {
		return ClassifyRawID(s), nil
	}

	switch IdentityKind(kind) {
	case VendorID, NumericID:
		if value == "" {
			return Identity{}, ErrInvalidIdentity
		}
		return Identity{Kind: IdentityKind(kind), Value: value}, nil
	default:
		// A colon inside a bare vendor id, not a kind prefix.
		return Identity{Kind: VendorID, Value: s}, nil
	}
}

// isNumericID reports whether raw looks like an ISBN-shaped identifier:
// all digits, or digits with a trailing X check character.
func isNumericID(raw string) bool {
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			continue
		}
		if (r == 'X' || r == 'x') && i == len(raw)-1 && i > 0 {
			continue
		}
		return false
	}
	return true
}
