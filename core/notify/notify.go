package notify

import (
	"log"
	"sync"
)

// NotificationType represents the kind of notification dispatched to
// off-node consumers (indexers, dashboards, webhooks).
type NotificationType string

const (
	NotifyRecordStored  NotificationType = "record_stored"
	NotifyDomainWritten NotificationType = "domain_written"
	NotifyJobQueued     NotificationType = "job_queued"
)

// Notification carries only addressing facts: owner, nonce, domain,
// sizes, receipt IDs. Never ciphertext, never field contents.
type Notification struct {
	Type      NotificationType
	Owner     string // hex owner ID
	Nonce     string // hex submission nonce, for record events
	Domain    string // record domain, for domain_written
	Slots     int    // slot count of the domain
	ReceiptID string // job receipt, for job_queued
	Reason    string
}

// Sink receives notifications. Implementations must not block.
type Sink interface {
	Deliver(n Notification)
}

// LogSink writes notifications to the process log.
type LogSink struct{}

func (LogSink) Deliver(n Notification) {
	log.Printf("[NOTIFY] type=%s owner=%s nonce=%s domain=%s slots=%d receipt=%s %s",
		n.Type, n.Owner, n.Nonce, n.Domain, n.Slots, n.ReceiptID, n.Reason)
}

// Dispatcher fans notifications out to every registered sink.
type Dispatcher struct {
	mu    sync.Mutex
	sinks []Sink
}

func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

// AddSink registers another consumer.
func (d *Dispatcher) AddSink(s Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, s)
}

// Announce delivers n to every sink.
func (d *Dispatcher) Announce(n Notification) {
	d.mu.Lock()
	sinks := make([]Sink, len(d.sinks))
	copy(sinks, d.sinks)
	d.mu.Unlock()

	for _, sink := range sinks {
		sink.Deliver(n)
	}
}

// AnnounceRecordStored emits the stored event plus one domain_written
// per record domain, in layout order. Every event carries the
// submission nonce so consumers can correlate them.
func (d *Dispatcher) AnnounceRecordStored(owner, nonce string, domainSlots map[string]int, order []string) {
	d.Announce(Notification{Type: NotifyRecordStored, Owner: owner, Nonce: nonce})
	for _, domain := range order {
		d.Announce(Notification{
			Type:   NotifyDomainWritten,
			Owner:  owner,
			Nonce:  nonce,
			Domain: domain,
			Slots:  domainSlots[domain],
		})
	}
}
