package trie

import "errors"

// Structural errors: the node codec and store disagree with the claimed
// shape of the data.
var (
	// ErrRlpEncoding is returned when a node's RLP payload cannot be parsed
	// as a list of the expected element count.
	ErrRlpEncoding = errors.New("trie: rlp encoding error")

	// ErrGarbledNode is returned when a decoded list has a length other than
	// 2 or 17, or a length-2 list's elements have the wrong kind.
	ErrGarbledNode = errors.New("trie: garbled node")

	// ErrNodeNotFound is returned when a key is looked up and absent from
	// the store.
	ErrNodeNotFound = errors.New("trie: node not found")
)

// Path/navigation errors, returned by the path resolver (C4) and nearby
// navigator (C5).
var (
	// ErrEmptyPath is returned when an operation requires a non-empty path
	// but received one with zero steps and an empty tail.
	ErrEmptyPath = errors.New("trie: empty path")

	// ErrPathTail is returned when a path's unresolved tail is inconsistent
	// with the operation being performed on it.
	ErrPathTail = errors.New("trie: unexpected path tail")

	// ErrDanglingLink is returned when navigation needs to descend through
	// a child reference that is not present in the store.
	ErrDanglingLink = errors.New("trie: dangling link")

	// ErrExtensionError is returned when an extension node is encountered
	// in a state inconsistent with navigation (e.g. empty child link).
	ErrExtensionError = errors.New("trie: extension node error")

	// ErrBranchError is returned when a branch node is encountered in a
	// state inconsistent with navigation.
	ErrBranchError = errors.New("trie: branch node error")

	// ErrNestingTooDeep is returned when a walk exceeds the maximum
	// possible trie depth (64 nibbles), indicating a cyclic or malformed
	// store.
	ErrNestingTooDeep = errors.New("trie: nesting too deep")

	// ErrUnexpectedNode is returned when a node of one kind is found where
	// another kind was required (e.g. a leaf where a branch was expected).
	ErrUnexpectedNode = errors.New("trie: unexpected node kind")

	// ErrFailed is returned by the nearby navigator when no leaf exists in
	// the requested direction.
	ErrFailed = errors.New("trie: no leaf in requested direction")

	// ErrLeafExpected is returned when a step was expected to terminate at
	// a leaf but did not.
	ErrLeafExpected = errors.New("trie: leaf expected")
)

// Envelope errors (C7).
var (
	// ErrDisjunct is returned by envelope_decompose when the supplied
	// interval iv does not overlap the partial path's envelope at all.
	ErrDisjunct = errors.New("trie: envelope disjunct from interval")

	// ErrDegenerated is returned by envelope_decompose when the partial
	// path's envelope is already fully contained in iv -- nothing to
	// decompose.
	ErrDegenerated = errors.New("trie: envelope degenerated")
)

// Interpolation errors (C8).
var (
	// ErrAccountRepairBlocked is returned for a single leaf whose ancestor
	// chain could not yet be finalized; retryable within the same batch.
	ErrAccountRepairBlocked = errors.New("trie: account repair blocked")

	// ErrBoundaryProofFailed is returned when a Phase B retry pass makes no
	// progress; the whole batch is rejected.
	ErrBoundaryProofFailed = errors.New("trie: boundary proof failed")

	// ErrUnresolvedRepairNode is returned when a commit is attempted while
	// provisional keys remain in the store.
	ErrUnresolvedRepairNode = errors.New("trie: unresolved repair node")
)

// Range/proof errors (C9).
var (
	// ErrFailedNextNode is returned when range extraction makes no forward
	// progress (the next leaf tag is not strictly greater than the last).
	ErrFailedNextNode = errors.New("trie: failed to advance to next node")

	// ErrLowerBoundProofError is returned when the left boundary of a range
	// proof cannot be established.
	ErrLowerBoundProofError = errors.New("trie: lower bound proof error")
)

// Backend errors (C10).
var (
	// ErrNoPersistentBackend is returned when an operation requiring a
	// backend is invoked on a store with none configured.
	ErrNoPersistentBackend = errors.New("trie: no persistent backend configured")

	// ErrOpenBulkSessionFailed is returned when a bulk-ingest session could
	// not be opened.
	ErrOpenBulkSessionFailed = errors.New("trie: failed to open bulk session")

	// ErrAddBulkItemFailed is returned when an item could not be staged
	// into an open bulk session.
	ErrAddBulkItemFailed = errors.New("trie: failed to add bulk item")

	// ErrCommitBulkItemsFailed is returned when a bulk session failed to
	// commit.
	ErrCommitBulkItemsFailed = errors.New("trie: failed to commit bulk items")
)

// RepairBlockedError wraps ErrAccountRepairBlocked with the claimed hash,
// read as a NodeTag, of a dangling subtree whose rebuilt surrogate did not
// hash to that claim. It identifies the subtree, not an individual leaf.
type RepairBlockedError struct {
	PathTag NodeTag
}

func (e *RepairBlockedError) Error() string {
	return "trie: account repair blocked for path " + e.PathTag.String()
}

func (e *RepairBlockedError) Unwrap() error { return ErrAccountRepairBlocked }
