// Package store caches issued codes keyed by a digest of the identity.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"curpkit/pkg/curp"
)

// IdentityKey digests the normalized identity. Raw names never leave the
// process as cache keys. The entity is taken as given; callers validate it
// against the catalog before looking up.
func IdentityKey(id curp.Identity) string {
	parts := []string{
		curp.Normalize(id.GivenName),
		curp.Normalize(id.PaternalSurname),
		curp.Normalize(id.MaternalSurname),
		id.BirthDate.Format("2006-01-02"),
		id.Sex.String(),
		string(id.Entity),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
