package fragment

import "errors"

// Sentinel errors for the taxonomy in §7 of the fragmentation protocol.
// The decode-side errors describe a frame or group that was dropped; none
// of them ever propagate out of decode as a panic or abort the receiver.
// ErrConfigError is the only one returned to callers, by Encode.
var (
	// ErrMalformedHeader covers a bad protocol_id, an XOR fragment at
	// block_index 0, block_index >= block_count, or a size mismatch
	// against the structural checks in Phase A.
	ErrMalformedHeader = errors.New("fragment: malformed header")

	// ErrStaleGroup means group_index < min_group_index: the group was
	// already delivered or retired.
	ErrStaleGroup = errors.New("fragment: stale group")

	// ErrDuplicateFragment means the bitmap bit for this fragment index
	// was already set.
	ErrDuplicateFragment = errors.New("fragment: duplicate fragment")

	// ErrGroupMismatch means the header disagrees with the stored group
	// head (group_bytes or block_count changed mid-group).
	ErrGroupMismatch = errors.New("fragment: group header mismatch")

	// ErrConfigError covers encode-time configuration failures: empty
	// message, max_block_size too small, or too many blocks.
	ErrConfigError = errors.New("fragment: invalid configuration")

	// ErrDeadlineExpired is never returned to a caller; it documents the
	// expiry branch of Phase C for logging purposes only.
	ErrDeadlineExpired = errors.New("fragment: group deadline expired")
)
