package reshare

import (
	"encoding/base64"
	"fmt"

	"medishare/core/audit"
	"medishare/core/auth"
	"medishare/core/engine"
	"medishare/core/signer"
	"medishare/core/storage"
	"medishare/types/ids"
)

// DefinitionName is the engine-side computation this protocol queues.
const DefinitionName = "share_patient_data"

// Definition is the registration payload for the re-share computation.
var Definition = engine.CompDefinition{Name: DefinitionName, Version: 1}

// Request names everything a re-share needs: whose record, which job
// offset, and the two key/nonce pairs the computation re-encrypts
// between. All of it is caller-supplied and opaque to the node.
type Request struct {
	Owner             ids.ID
	ComputationOffset uint64
	Destination       engine.PubKey
	DestinationNonce  engine.Nonce
	CallerPubKey      engine.PubKey
	CallerNonce       engine.Nonce
}

// Protocol orchestrates record re-authorization: verify the caller may
// ask, make sure the node can sign, resolve the record region, then
// hand the engine one fully-ordered job. No step mutates the record.
type Protocol struct {
	Records *storage.RecordStore
	Signers *signer.Registry
	Engine  engine.Queue
	Gate    *auth.CredentialGate
	Cluster uint32
	Audit   audit.AuditLogger
}

func NewProtocol(records *storage.RecordStore, signers *signer.Registry, eng engine.Queue, gate *auth.CredentialGate, cluster uint32, auditLogger audit.AuditLogger) *Protocol {
	return &Protocol{
		Records: records,
		Signers: signers,
		Engine:  eng,
		Gate:    gate,
		Cluster: cluster,
		Audit:   auditLogger,
	}
}

// Submit runs the ungated re-share flow, for callers who are the
// record owner themselves.
func (p *Protocol) Submit(req Request) (engine.JobHandle, error) {
	return p.submit(req, nil)
}

// SubmitWithCredential runs the role-gated flow. The credential is
// checked before anything else happens; a rejected caller causes no
// signer work and no engine traffic.
func (p *Protocol) SubmitWithCredential(req Request, proof auth.CredentialProof) (engine.JobHandle, error) {
	return p.submit(req, &proof)
}

func (p *Protocol) submit(req Request, proof *auth.CredentialProof) (engine.JobHandle, error) {
	if proof != nil {
		if err := p.Gate.Verify(*proof); err != nil {
			p.logOutcome(req, "rejected", err.Error())
			return engine.JobHandle{}, err
		}
	}

	identity, err := p.Signers.Ensure()
	if err != nil {
		p.logOutcome(req, "failure", err.Error())
		return engine.JobHandle{}, fmt.Errorf("signing identity unavailable: %w", err)
	}

	region, err := p.Records.GetRecordRegion(req.Owner)
	if err != nil {
		p.logOutcome(req, "failure", err.Error())
		return engine.JobHandle{}, err
	}

	// Argument order is the computation contract: destination key and
	// nonce, then caller key and nonce, then the record region.
	comp := engine.Computation{
		Offset:     req.ComputationOffset,
		Definition: DefinitionName,
		Cluster:    p.Cluster,
		Args: []engine.Argument{
			engine.SharedPubkey(req.Destination),
			engine.PlaintextU128(req.DestinationNonce),
			engine.SharedPubkey(req.CallerPubKey),
			engine.PlaintextU128(req.CallerNonce),
			engine.AccountRegion(region.Key, region.Offset, region.Length),
		},
	}

	sig, err := p.Signers.Sign(comp.CanonicalBytes())
	if err != nil {
		p.logOutcome(req, "failure", err.Error())
		return engine.JobHandle{}, fmt.Errorf("failed to sign computation: %w", err)
	}
	comp.SignerKey = identity.PublicKeyHex()
	comp.Signature = base64.StdEncoding.EncodeToString(sig)

	handle, err := p.Engine.QueueComputation(comp)
	if err != nil {
		p.logOutcome(req, "failure", err.Error())
		return engine.JobHandle{}, err
	}

	fmt.Printf("[RESHARE] Queued re-share for owner %s (offset %d)\n", req.Owner.Short(), req.ComputationOffset)
	p.logOutcome(req, "submitted", handle.ReceiptID)
	return handle, nil
}

func (p *Protocol) logOutcome(req Request, result, detail string) {
	if p.Audit == nil {
		return
	}
	p.Audit.LogEvent(audit.NewEvent("ReShareSubmission", req.Owner.String(), result, detail, map[string]string{
		"computationOffset": fmt.Sprintf("%d", req.ComputationOffset),
		"destination":       req.Destination.String()[:8],
	}))
}
