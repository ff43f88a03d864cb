package registry

import (
	"strings"
	"testing"

	"github.com/SkynetHQ/skynet-go/keys"
	"github.com/SkynetHQ/skynet-go/skyerr"
)

func mustKeyPair(t *testing.T, seed string) keys.KeyPair {
	t.Helper()
	kp, err := keys.GenKeyPairFromSeed(seed)
	if err != nil {
		t.Fatalf("GenKeyPairFromSeed: %v", err)
	}
	return kp
}

func TestHashEntryCanonicalForm(t *testing.T) {
	e := Entry{DataKey: "app.json", Data: []byte("pointer"), Revision: 7}

	h1, err := HashEntry(e, false)
	if err != nil {
		t.Fatalf("HashEntry: %v", err)
	}
	h2, err := HashEntry(e, false)
	if err != nil {
		t.Fatalf("HashEntry: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected deterministic canonical hash")
	}

	// Every field participates in the digest.
	for _, mutated := range []Entry{
		{DataKey: "app.jsoN", Data: []byte("pointer"), Revision: 7},
		{DataKey: "app.json", Data: []byte("pointer!"), Revision: 7},
		{DataKey: "app.json", Data: []byte("pointer"), Revision: 8},
	} {
		hm, err := HashEntry(mutated, false)
		if err != nil {
			t.Fatalf("HashEntry: %v", err)
		}
		if hm == h1 {
			t.Fatalf("mutation %+v did not change the hash", mutated)
		}
	}
}

func TestHashEntryDataKeyRepresentation(t *testing.T) {
	tweak := strings.Repeat("ab", 32)

	raw, err := HashEntry(Entry{DataKey: tweak, Revision: 1}, false)
	if err != nil {
		t.Fatalf("HashEntry raw: %v", err)
	}
	decoded, err := HashEntry(Entry{DataKey: tweak, Revision: 1}, true)
	if err != nil {
		t.Fatalf("HashEntry hashed: %v", err)
	}
	if raw == decoded {
		t.Fatalf("raw and hex-decoded dataKey must hash differently")
	}

	// A hashed dataKey must decode to exactly 32 bytes.
	_, err = HashEntry(Entry{DataKey: "abcd", Revision: 1}, true)
	if !skyerr.IsKind(err, skyerr.KindValidation) {
		t.Fatalf("expected validation error for short hashed dataKey, got %v", err)
	}
}

func TestHashEntryLengthPrefixing(t *testing.T) {
	// Without the length prefix these two would share a concatenated
	// preimage: dataKey "ab"+data "c" vs dataKey "a"+data "bc".
	h1, err := HashEntry(Entry{DataKey: "ab", Data: []byte("c"), Revision: 0}, false)
	if err != nil {
		t.Fatalf("HashEntry: %v", err)
	}
	h2, err := HashEntry(Entry{DataKey: "a", Data: []byte("bc"), Revision: 0}, false)
	if err != nil {
		t.Fatalf("HashEntry: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("length prefixing failed to separate shifted fields")
	}
}

func TestHashEntryDataBound(t *testing.T) {
	_, err := HashEntry(Entry{DataKey: "k", Data: make([]byte, MaxDataSize+1)}, false)
	if !skyerr.IsKind(err, skyerr.KindValidation) {
		t.Fatalf("expected validation error for oversized data, got %v", err)
	}
	if _, err := HashEntry(Entry{DataKey: "k", Data: make([]byte, MaxDataSize)}, false); err != nil {
		t.Fatalf("HashEntry at bound: %v", err)
	}
}

func TestSignAndVerifyEntry(t *testing.T) {
	kp := mustKeyPair(t, "registry signing seed")
	e := Entry{DataKey: "file", Data: []byte("cid"), Revision: 3}

	se, err := SignEntry(e, false, kp)
	if err != nil {
		t.Fatalf("SignEntry: %v", err)
	}
	if len(se.Signature) != 128 {
		t.Fatalf("signature must be 128 hex chars, got %d", len(se.Signature))
	}
	if err := VerifyEntry(se, false, kp.PublicKey); err != nil {
		t.Fatalf("VerifyEntry: %v", err)
	}

	// Signing is deterministic for the same entry and key.
	se2, err := SignEntry(e, false, kp)
	if err != nil {
		t.Fatalf("SignEntry: %v", err)
	}
	if se2.Signature != se.Signature {
		t.Fatalf("expected deterministic signature")
	}

	// Any field mutation invalidates the signature.
	tampered := se
	tampered.Revision++
	err = VerifyEntry(tampered, false, kp.PublicKey)
	if !skyerr.IsKind(err, skyerr.KindAuthentication) {
		t.Fatalf("expected authentication error for tampered entry, got %v", err)
	}

	// A different identity cannot claim the entry.
	other := mustKeyPair(t, "some other seed")
	err = VerifyEntry(se, false, other.PublicKey)
	if !skyerr.IsKind(err, skyerr.KindAuthentication) {
		t.Fatalf("expected authentication error for wrong public key, got %v", err)
	}
}
