package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainTrace separates trace digests from any other hash of the same bytes.
const DomainTrace = "reactor/trace/v1"

// Digest returns the hex SHA-256 of the canonical form of events, with
// domain separation: SHA256(domain + 0x00 + canonical).
func Digest(events []Event) (string, error) {
	canonical, err := MarshalEvents(events)
	if err != nil {
		return "", fmt.Errorf("trace digest: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(DomainTrace))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
