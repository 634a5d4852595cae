package publish

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"hash"
)

// Digest computes a deterministic SHA256 digest over the calls of the plan:
// every delete and every put document, in run order. Two plans with equal
// digests send the same requests. Skipped artifacts and link scopes are not
// part of it.
//
// Format: "sha256:<hex>".
func (p *Plan) Digest() string {
	h := sha256.New()
	for _, kp := range p.Deletes {
		for _, names := range kp.Deletes {
			writeLine(h, "D", string(kp.Kind()), kp.Descriptor.URI(names), nil)
		}
	}
	for _, kp := range p.Puts {
		for _, batch := range stages(kp.Descriptor, kp.Puts) {
			for _, a := range batch {
				writeLine(h, "P", string(kp.Kind()), kp.Descriptor.URI(a.Names), a.Document)
			}
		}
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil))
}

func writeLine(h hash.Hash, op, kind, uri string, doc map[string]any) {
	h.Write([]byte(op + " " + kind + " " + uri))
	if doc != nil {
		// json.Marshal sorts map keys
		b, err := json.Marshal(doc)
		if err != nil {
			b = []byte(fmt.Sprintf("%v", doc))
		}
		h.Write([]byte(" "))
		h.Write(b)
	}
	h.Write([]byte("\n"))
}
