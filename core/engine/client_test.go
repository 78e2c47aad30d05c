package engine

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testComputation(offset uint64) Computation {
	var dest, caller PubKey
	dest[0], caller[0] = 1, 2
	var n1, n2 Nonce
	n1[0], n2[0] = 3, 4
	return Computation{
		Offset:     offset,
		Definition: "share_patient_data",
		Cluster:    7,
		Args: []Argument{
			SharedPubkey(dest),
			PlaintextU128(n1),
			SharedPubkey(caller),
			PlaintextU128(n2),
			AccountRegion("record:abc", 8, 4864),
		},
	}
}

func TestQueueComputation(t *testing.T) {
	var got Computation
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/computations" {
			t.Errorf("posted to %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	handle, err := client.QueueComputation(testComputation(42))
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if handle.Offset != 42 || handle.Status != "queued" || handle.ReceiptID == "" {
		t.Errorf("handle not populated: %+v", handle)
	}
	if got.Offset != 42 || len(got.Args) != 5 {
		t.Errorf("engine saw %+v", got)
	}
	if got.Args[4].Kind != ArgAccountRegion || got.Args[4].Length != 4864 {
		t.Errorf("region arg mangled: %+v", got.Args[4])
	}
}

func TestQueueComputationRejectsDuplicateOffset(t *testing.T) {
	var posts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&posts, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.QueueComputation(testComputation(9)); err != nil {
		t.Fatal(err)
	}
	_, err := client.QueueComputation(testComputation(9))
	if !errors.Is(err, ErrDuplicateComputation) {
		t.Fatalf("got %v, want ErrDuplicateComputation", err)
	}
	if atomic.LoadInt32(&posts) != 1 {
		t.Errorf("duplicate reached the engine (%d posts)", posts)
	}

	// Forget releases the offset.
	client.Forget(9)
	if _, err := client.QueueComputation(testComputation(9)); err != nil {
		t.Fatalf("after forget: %v", err)
	}
}

func TestQueueComputationReleasesOffsetOnFailure(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.QueueComputation(testComputation(5)); err == nil {
		t.Fatal("expected engine failure")
	}
	if len(client.InFlight()) != 0 {
		t.Fatal("failed submission left offset in flight")
	}

	fail.Store(false)
	if _, err := client.QueueComputation(testComputation(5)); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestQueueComputationAbortPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"computation aborted"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).QueueComputation(testComputation(6))
	if !errors.Is(err, ErrAbortedComputation) {
		t.Fatalf("got %v, want ErrAbortedComputation", err)
	}
}

func TestEnsureDefinitionIdempotent(t *testing.T) {
	var posts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Engine says it already has the definition.
		atomic.AddInt32(&posts, 1)
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	def := CompDefinition{Name: "share_patient_data", Version: 1}
	if err := client.EnsureDefinition(def); err != nil {
		t.Fatalf("already-registered must be success, got %v", err)
	}
	if err := client.EnsureDefinition(def); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&posts) != 1 {
		t.Errorf("second ensure hit the engine (%d posts)", posts)
	}
}

func TestEnsureDefinitionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if err := client.EnsureDefinition(CompDefinition{Name: "x"}); err == nil {
		t.Fatal("expected error on engine failure")
	}
	// Failure must not mark the definition as done.
	if err := client.EnsureDefinition(CompDefinition{Name: "x"}); err == nil {
		t.Fatal("failed definition was cached as registered")
	}
}

func TestNonceAndPubKeyParsing(t *testing.T) {
	if _, err := NonceFromHex("00112233445566778899aabbccddeeff"); err != nil {
		t.Errorf("valid nonce rejected: %v", err)
	}
	if _, err := NonceFromHex("0011"); err == nil {
		t.Error("short nonce accepted")
	}
	if _, err := PubKeyFromHex("zz"); err == nil {
		t.Error("bad hex accepted")
	}
	longKey := "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	if _, err := PubKeyFromHex(longKey); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
}

func TestForgetOlderThanReleasesOnlyStale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.QueueComputation(testComputation(1)); err != nil {
		t.Fatalf("queue: %v", err)
	}
	if _, err := client.QueueComputation(testComputation(2)); err != nil {
		t.Fatalf("queue: %v", err)
	}

	// Backdate offset 1 so it looks settled.
	client.mu.Lock()
	client.inFlight[1] = time.Now().Add(-time.Hour)
	client.mu.Unlock()

	if released := client.ForgetOlderThan(30 * time.Minute); released != 1 {
		t.Fatalf("released %d offsets, want 1", released)
	}
	offsets := client.InFlight()
	if len(offsets) != 1 || offsets[0] != 2 {
		t.Fatalf("in flight after sweep = %v, want [2]", offsets)
	}
}
