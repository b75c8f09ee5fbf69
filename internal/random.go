package internal

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"math/big"
	"time"
)

const secretSize = 32

// NewRecoverySecret returns a fresh 256-bit secret rendered as a
// fixed-length base64url string. The rendering is the only form that ever
// leaves the process; stores keep a digest.
func NewRecoverySecret() (string, error) {
	var raw [secretSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// SecretEncodedLen is the length of every encoded secret.
const SecretEncodedLen = 43 // base64url of 32 bytes, no padding

// ValidSecretShape rejects strings that cannot be an encoded secret before
// any store round-trip happens.
func ValidSecretShape(secret string) bool {
	if len(secret) != SecretEncodedLen {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(secret)
	return err == nil
}

// HashSecret digests a secret for storage and index lookup.
func HashSecret(secret string) [32]byte {
	return sha256.Sum256([]byte(secret))
}

var errDelayInterrupted = errors.New("enumeration delay interrupted")

// EnumerationDelay sleeps 20-40ms so the unknown-account issue path stays
// within timing range of the real one.
func EnumerationDelay(ctx context.Context) error {
	minMs := int64(20)
	maxMs := int64(40)
	span := maxMs - minMs + 1

	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return err
	}

	delay := time.Duration(minMs+n.Int64()) * time.Millisecond
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return errors.Join(errDelayInterrupted, ctx.Err())
	}
}
