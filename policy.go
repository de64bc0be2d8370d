// Policies governing table behaviour.
//
// A Policy is pure data threaded through every operation: whether the
// table may mutate the filesystem (and whether Close writes back
// implicitly), how directory entries with unexpected extensions are
// classified during load, and whether undecodable files abort the load.
// The zero value of each enum is the default, so Policy{} means
// automatic write-back, foreign files skipped, decode errors promoted.
package binder

// Permission controls write access and the implicit write-back on Close.
type Permission int

const (
	WriteAutomatic Permission = iota // Writable, Close performs a write-back
	WriteManual                      // Writable, caller must call WriteBack
	ReadOnly                         // No mutation, no handles retained
)

func (p Permission) String() string {
	switch p {
	case WriteAutomatic:
		return "write-automatic"
	case WriteManual:
		return "write-manual"
	case ReadOnly:
		return "read-only"
	default:
		return "unknown"
	}
}

func (p Permission) writable() bool {
	return p != ReadOnly
}

// ExtensionRule controls how Load classifies directory entries whose
// extension does not match the codec's.
type ExtensionRule int

const (
	SkipForeign      ExtensionRule = iota // Silently skip non-matching entries
	RejectForeign                         // Fail the load on the first non-matching entry
	IgnoreExtensions                      // Load every regular file regardless of extension
)

func (r ExtensionRule) String() string {
	switch r {
	case SkipForeign:
		return "skip-foreign"
	case RejectForeign:
		return "reject-foreign"
	case IgnoreExtensions:
		return "ignore-extensions"
	default:
		return "unknown"
	}
}

// DecodeRule controls how Load treats a file the codec cannot decode.
type DecodeRule int

const (
	PromoteDecodeErrors DecodeRule = iota // Abort the whole load
	SkipUndecodable                       // Drop the entry, no record created
)

func (r DecodeRule) String() string {
	switch r {
	case PromoteDecodeErrors:
		return "promote-decode-errors"
	case SkipUndecodable:
		return "skip-undecodable"
	default:
		return "unknown"
	}
}

// Policy bundles the three rules. Immutable once a table is constructed.
type Policy struct {
	Permission   Permission
	Extensions   ExtensionRule
	DecodeErrors DecodeRule
}
