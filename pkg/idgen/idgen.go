// Package idgen generates collision-resistant identifiers for nodes, edges,
// and transactions.
//
// Identifiers are 128 bits of crypto/rand output, lowercase hex encoded.
// Generation is thread-safe because it holds no shared state: every call
// reads fresh randomness from the OS.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// New returns a new globally-unique identifier.
func New() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand.Read on a supported OS does not fail; if it ever
		// does, the process has bigger problems than a bad id.
		panic(fmt.Sprintf("idgen: crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}
