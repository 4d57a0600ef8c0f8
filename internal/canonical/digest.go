package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDocument prefixes document digests. The version suffix leaves room
// for a future encoding change.
const DomainDocument = "formexport/document/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns the content digest of already canonical bytes.
func Digest(data []byte) string {
	return hashWithDomain(DomainDocument, data)
}

// DigestOf canonically encodes v and returns its digest.
func DigestOf(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("DigestOf: failed to marshal: %w", err)
	}
	return Digest(data), nil
}
