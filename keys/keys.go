package keys

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/SkynetHQ/skynet-go/cryptoutil"
	"github.com/SkynetHQ/skynet-go/skyerr"
)

// DefaultSeedLength is the byte length of seeds produced by
// GenKeyPairAndSeed when the caller does not choose one.
const DefaultSeedLength = 64

// KeyPair holds an Ed25519 key pair as lowercase hex strings.
//
// PublicKey is 64 hex characters (32 bytes) and is the stable identity
// under which registry entries are stored. PrivateKey is 128 hex
// characters (64 bytes, the ed25519 expanded form).
type KeyPair struct {
	PublicKey  string
	PrivateKey string
}

// DeriveChildSeed deterministically combines a master seed and a sub seed
// into a child seed: hex(hash(utf8(masterSeed) || utf8(subSeed))).
//
// The construction is order-sensitive and non-commutative: swapping the
// arguments yields an unrelated result. This lets one master seed spawn
// unrelated child domains safely.
func DeriveChildSeed(masterSeed, subSeed string) string {
	sum := cryptoutil.HashAll([]byte(masterSeed), []byte(subSeed))
	return cryptoutil.ToHex(sum[:])
}

// GenKeyPairFromSeed derives the Ed25519 key pair for a seed.
//
// The seed is stretched through the KDF to exactly ed25519.SeedSize bytes
// and fed to the standard deterministic key generation: the same seed
// always yields the same pair.
func GenKeyPairFromSeed(seed string) (KeyPair, error) {
	if seed == "" {
		return KeyPair{}, skyerr.Validation("seed", "seed must not be empty")
	}
	material := cryptoutil.DeriveKey(seed)
	priv := ed25519.NewKeyFromSeed(material[:ed25519.SeedSize])
	pub := priv.Public().(ed25519.PublicKey)
	return KeyPair{
		PublicKey:  cryptoutil.ToHex(pub),
		PrivateKey: cryptoutil.ToHex(priv),
	}, nil
}

// GenKeyPairAndSeed generates a fresh random seed of byteLen bytes from the
// platform's secure random source and returns the derived key pair along
// with the hex-encoded seed. A byteLen of 0 selects DefaultSeedLength;
// negative lengths are rejected. This is the only place fresh entropy
// enters the module; everything else is pure derivation.
func GenKeyPairAndSeed(byteLen int) (KeyPair, string, error) {
	if byteLen < 0 {
		return KeyPair{}, "", skyerr.Validation("byteLen", "seed length must not be negative, got %d", byteLen)
	}
	if byteLen == 0 {
		byteLen = DefaultSeedLength
	}
	raw := make([]byte, byteLen)
	if _, err := rand.Read(raw); err != nil {
		return KeyPair{}, "", skyerr.Wrap(skyerr.KindInternal, "secure random source failed", err)
	}
	seed := cryptoutil.ToHex(raw)
	kp, err := GenKeyPairFromSeed(seed)
	if err != nil {
		return KeyPair{}, "", err
	}
	return kp, seed, nil
}

// PublicKeyFromHex parses a 64-hex-character Ed25519 public key.
func PublicKeyFromHex(publicKey string) (ed25519.PublicKey, error) {
	b, err := cryptoutil.FromHexExact("publicKey", publicKey, ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(b), nil
}

// PrivateKeyFromHex parses a 128-hex-character Ed25519 private key.
func PrivateKeyFromHex(privateKey string) (ed25519.PrivateKey, error) {
	b, err := cryptoutil.FromHexExact("privateKey", privateKey, ed25519.PrivateKeySize)
	if err != nil {
		return nil, err
	}
	return ed25519.PrivateKey(b), nil
}
