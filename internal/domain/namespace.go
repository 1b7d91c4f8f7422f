package domain

import "strings"

// NamespaceSeparator is the reserved byte joining namespace segments in the
// wire encoding. It can never legally appear inside a segment, so the
// encode/decode pair round-trips without escaping.
const NamespaceSeparator = "\x1f"

// Namespace is an ordered sequence of path segments. The empty namespace
// denotes the catalog root.
type Namespace []string

// Encode joins the segments with the reserved separator. The empty namespace
// encodes to the empty string. Segments containing the separator byte are a
// caller error: the encoding is not escaped.
func (n Namespace) Encode() string {
	return strings.Join(n, NamespaceSeparator)
}

// DecodeNamespace splits a wire-encoded namespace back into its segments.
// The empty string decodes to the root namespace.
func DecodeNamespace(wire string) Namespace {
	if wire == "" {
		return Namespace{}
	}
	return Namespace(strings.Split(wire, NamespaceSeparator))
}

// IsRoot reports whether the namespace is the catalog root.
func (n Namespace) IsRoot() bool { return len(n) == 0 }

// String returns the dotted display form, e.g. "accounting.tax". The root
// namespace renders as the empty string.
func (n Namespace) String() string {
	return strings.Join(n, ".")
}

// ParseNamespace parses a dotted namespace as typed on the command line or in
// a URL query. The empty string parses to the root namespace.
func ParseNamespace(dotted string) Namespace {
	if dotted == "" {
		return Namespace{}
	}
	return Namespace(strings.Split(dotted, "."))
}

// Equal reports element-wise equality.
func (n Namespace) Equal(other Namespace) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if n[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix matches the leading segments of n.
// Every namespace has the root namespace as a prefix.
func (n Namespace) HasPrefix(prefix Namespace) bool {
	if len(prefix) > len(n) {
		return false
	}
	for i := range prefix {
		if n[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Child returns a new namespace with one more segment appended. The receiver
// is not modified.
func (n Namespace) Child(segment string) Namespace {
	out := make(Namespace, len(n), len(n)+1)
	copy(out, n)
	return append(out, segment)
}

// Parent returns the namespace with the last segment removed. The parent of
// the root is the root.
func (n Namespace) Parent() Namespace {
	if len(n) == 0 {
		return Namespace{}
	}
	return n[:len(n)-1]
}
