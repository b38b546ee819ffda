package app

import "crypto/rand"

// generateID produces a random hex identifier with a type prefix
// ("lst" for listings, "aud" for audit entries). Isolated here so the
// ID strategy can evolve independently.
func generateID(prefix string) (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	const hex = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hex[v>>4]
		out[i*2+1] = hex[v&0x0f]
	}
	return prefix + "_" + string(out), nil
}
