package gateway

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// teamPortBase and teamPortSpan define the per-team port window the node
// tier derives a team's executive port from.
const (
	teamPortBase = 1024
	teamPortSpan = 64000
)

// TeamDigest returns the SHA-256 digest of the big-endian encoding of
// userID, the value both the proxy's node-routing hash and the node's
// container-name/port derivation are built from.
func TeamDigest(userID uint64) [sha256.Size]byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], userID)
	return sha256.Sum256(buf[:])
}

// teamHash folds a team digest down to the u64 used for both node
// selection and team-port derivation: the first 8 digest bytes,
// interpreted big-endian.
func teamHash(digest [sha256.Size]byte) uint64 {
	return binary.BigEndian.Uint64(digest[:8])
}

// NodeIndex selects which of n nodes owns userID's traffic.
func NodeIndex(userID uint64, n int) int {
	if n <= 0 {
		return 0
	}
	return int(teamHash(TeamDigest(userID)) % uint64(n))
}

// TeamPort derives the per-team TCP port an executive container listens on
// inside its node, per spec: 1024 + (hash mod 64000).
func TeamPort(userID uint64) int {
	return teamPortBase + int(teamHash(TeamDigest(userID))%teamPortSpan)
}

// ContainerName returns the deterministic per-team container name a node
// creates and tears down, hex-encoding the full team digest.
func ContainerName(userID uint64) string {
	digest := TeamDigest(userID)
	return "dc2021q-rad-" + hex.EncodeToString(digest[:])
}
