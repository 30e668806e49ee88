package chunk

import (
	"github.com/cnf/structhash"
)

// fingerprinted is the hashable view of a chunk.
type fingerprinted struct {
	Constants []int32
	Code      []byte
}

// Fingerprint returns a hash over the constant pool and the code of a chunk.
// Equal chunks have equal fingerprints.
func (c *Chunk) Fingerprint() (string, error) {
	f := fingerprinted{Constants: c.constants, Code: c.code}
	h, err := structhash.Hash(f, 1)
	if err != nil {
		tracer().Errorf("cannot fingerprint chunk: %v", err)
		return "", err
	}
	return h, nil
}
