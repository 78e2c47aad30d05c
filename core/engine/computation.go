package engine

import (
	"encoding/json"
	"time"
)

// Computation is one job for the confidential compute engine. Offset
// is the caller-chosen job identifier; it must be fresh per submission.
type Computation struct {
	Offset     uint64     `json:"computationOffset"`
	Definition string     `json:"definition"`
	Cluster    uint32     `json:"clusterOffset"`
	Args       []Argument `json:"args"`
	SignerKey  string     `json:"signerKey,omitempty"` // hex ed25519 node key
	Signature  string     `json:"signature,omitempty"` // base64 over CanonicalBytes
}

// CanonicalBytes is the signed portion of the computation: everything
// except the signature fields, in fixed field order.
func (c Computation) CanonicalBytes() []byte {
	unsigned := Computation{
		Offset:     c.Offset,
		Definition: c.Definition,
		Cluster:    c.Cluster,
		Args:       c.Args,
	}
	data, _ := json.Marshal(unsigned)
	return data
}

// JobHandle is the fire-and-forget receipt for an accepted job. It
// promises the engine took the work, nothing about the outcome.
type JobHandle struct {
	ReceiptID  string    `json:"receiptId"`
	Offset     uint64    `json:"computationOffset"`
	Definition string    `json:"definition"`
	QueuedAt   time.Time `json:"queuedAt"`
	Status     string    `json:"status"`
}

// CompDefinition describes a computation definition to register with
// the engine before first use.
type CompDefinition struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}
