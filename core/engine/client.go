package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAbortedComputation is the pass-through failure for jobs the
	// engine rejects as aborted. The node adds nothing to it.
	ErrAbortedComputation = errors.New("computation aborted by engine")
	// ErrDuplicateComputation means the offset is already in flight.
	ErrDuplicateComputation = errors.New("computation offset already queued")
)

// Queue is what the re-share protocol needs from the engine.
type Queue interface {
	QueueComputation(comp Computation) (JobHandle, error)
	EnsureDefinition(def CompDefinition) error
}

// Client talks to the confidential compute engine over HTTP.
// Submission is fire-and-forget: an accepted POST is the whole
// contract, outputs come back via channels this node does not own.
type Client struct {
	baseURL string
	client  *http.Client

	mu       sync.Mutex
	inFlight map[uint64]time.Time // offset -> queue time, dedup
	defsDone map[string]struct{}  // definitions known registered
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
		inFlight: make(map[uint64]time.Time),
		defsDone: make(map[string]struct{}),
	}
}

// QueueComputation submits one job. The offset must be fresh: a
// repeat of an in-flight offset fails locally with
// ErrDuplicateComputation before anything is sent.
func (c *Client) QueueComputation(comp Computation) (JobHandle, error) {
	c.mu.Lock()
	if _, seen := c.inFlight[comp.Offset]; seen {
		c.mu.Unlock()
		return JobHandle{}, ErrDuplicateComputation
	}
	c.inFlight[comp.Offset] = time.Now().UTC()
	c.mu.Unlock()

	handle, err := c.postComputation(comp)
	if err != nil {
		// Submission never happened; free the offset for a retry.
		c.mu.Lock()
		delete(c.inFlight, comp.Offset)
		c.mu.Unlock()
		return JobHandle{}, err
	}
	fmt.Printf("[ENGINE] Queued computation %d (%s)\n", comp.Offset, comp.Definition)
	return handle, nil
}

func (c *Client) postComputation(comp Computation) (JobHandle, error) {
	payload, err := json.Marshal(comp)
	if err != nil {
		return JobHandle{}, err
	}
	resp, err := c.client.Post(c.baseURL+"/v1/computations", "application/json", bytes.NewReader(payload))
	if err != nil {
		return JobHandle{}, fmt.Errorf("engine unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return JobHandle{
			ReceiptID:  uuid.NewString(),
			Offset:     comp.Offset,
			Definition: comp.Definition,
			QueuedAt:   time.Now().UTC(),
			Status:     "queued",
		}, nil
	case http.StatusConflict:
		return JobHandle{}, ErrDuplicateComputation
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if strings.Contains(strings.ToLower(string(body)), "abort") {
			return JobHandle{}, ErrAbortedComputation
		}
		return JobHandle{}, fmt.Errorf("engine rejected computation %d: %d %s", comp.Offset, resp.StatusCode, string(body))
	}
}

// EnsureDefinition registers a computation definition, once. The call
// is idempotent end to end: a definition the engine already knows is
// success, and later calls short-circuit locally.
func (c *Client) EnsureDefinition(def CompDefinition) error {
	c.mu.Lock()
	if _, done := c.defsDone[def.Name]; done {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	payload, err := json.Marshal(def)
	if err != nil {
		return err
	}
	resp, err := c.client.Post(c.baseURL+"/v1/definitions", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("engine unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusConflict:
		// Conflict = already registered, which is what we wanted.
		c.mu.Lock()
		c.defsDone[def.Name] = struct{}{}
		c.mu.Unlock()
		fmt.Printf("[ENGINE] Definition %s ready\n", def.Name)
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("engine refused definition %s: %d %s", def.Name, resp.StatusCode, string(body))
	}
}

// Ping reports whether the engine answers its health endpoint.
func (c *Client) Ping() bool {
	resp, err := c.client.Get(c.baseURL + "/v1/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// InFlight lists queued offsets, ascending. Dev inspection only.
func (c *Client) InFlight() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	offsets := make([]uint64, 0, len(c.inFlight))
	for offset := range c.inFlight {
		offsets = append(offsets, offset)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return offsets
}

// Forget drops an offset from the dedup set so it can be reused.
func (c *Client) Forget(offset uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, offset)
}

// ForgetOlderThan drops dedup entries queued more than age ago and
// returns how many were released. The engine enforces real offset
// uniqueness; this only bounds local memory.
func (c *Client) ForgetOlderThan(age time.Duration) int {
	cutoff := time.Now().Add(-age)
	c.mu.Lock()
	defer c.mu.Unlock()
	released := 0
	for offset, queuedAt := range c.inFlight {
		if queuedAt.Before(cutoff) {
			delete(c.inFlight, offset)
			released++
		}
	}
	return released
}
