package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// DatasetHash fingerprints the exact rows an analysis ran against, so two
// reports can be compared by input identity rather than by file path.
type DatasetHash Hash

func NewDatasetHash(data []byte) DatasetHash { return DatasetHash(NewHash(data)) }

func (h DatasetHash) String() string { return Hash(h).String() }

// ComputeDatasetHash hashes a header row plus data rows in order. Row order is
// part of the identity: reordered input is a different dataset.
func ComputeDatasetHash(headers []string, rows [][]string) DatasetHash {
	var data strings.Builder
	data.WriteString(strings.Join(headers, "\x1f"))
	data.WriteString("\x1e")
	for i, row := range rows {
		data.WriteString(strconv.Itoa(i))
		data.WriteString(strings.Join(row, "\x1f"))
		data.WriteString("\x1e")
	}
	return NewDatasetHash([]byte(data.String()))
}
