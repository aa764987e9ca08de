// Package cryptox implements the symmetric encryption envelope used to
// protect files before they leave the client.
//
// Every file is sealed under a fresh random 256-bit key with AES-GCM.
// The resulting Envelope carries ciphertext, nonce, authentication tag and
// the raw key material separately, because the wire format transports them
// as distinct base64 fields. The store receives the raw key alongside the
// ciphertext, so it is fully trusted with plaintext-equivalent material.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"fmt"

	"secureshare/internal/common"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the AES-GCM nonce length in bytes. A nonce is never
	// reused with the same key: Seal draws a fresh one per call and a key
	// is never used for more than one file.
	NonceSize = 12
	// TagSize is the AES-GCM authentication tag length in bytes.
	TagSize = 16
	// Algorithm identifies the only AEAD this envelope format supports.
	Algorithm = "AES-256-GCM"
)

// Envelope is the self-describing bundle produced by Seal. It is created
// once per upload and immutable thereafter. Ciphertext is meaningless
// without the nonce, tag and key, and must never be stored or transmitted
// without them.
type Envelope struct {
	Ciphertext []byte
	Nonce      []byte
	Tag        []byte
	Key        []byte
	Algorithm  string
	MediaType  string
	Name       string
}

// GenerateKey produces a fresh 256-bit AES key. Keys are never derived from
// user input and never reused across files.
func GenerateKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// Seal encrypts plaintext under key with AES-GCM using a fresh random
// 12-byte nonce and returns the complete envelope. The authentication tag
// is split off the ciphertext so the wire format can carry it separately.
//
// Any primitive failure is returned to the caller; it must not be retried
// with the same inputs (reusing a nonce is a security bug).
func Seal(plaintext, key []byte, name, mediaType string) (*Envelope, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key length %d: %w", len(key), common.ErrValidation)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())

	// Seal appends the tag to the ciphertext; detach it.
	sealed := aesgcm.Seal(nil, nonce, plaintext, nil)
	n := len(sealed) - TagSize

	return &Envelope{
		Ciphertext: sealed[:n],
		Nonce:      nonce,
		Tag:        sealed[n:],
		Key:        append([]byte(nil), key...),
		Algorithm:  Algorithm,
		MediaType:  mediaType,
		Name:       name,
	}, nil
}

// Open decrypts the envelope and returns the plaintext. The ciphertext and
// tag are concatenated back into the order AES-GCM expects before opening.
//
// If the tag does not verify (tampered or truncated ciphertext, wrong key
// or wrong nonce) Open fails with common.ErrIntegrity and returns no
// plaintext, partial or otherwise.
func (e *Envelope) Open() ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(e.Key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	combined := make([]byte, 0, len(e.Ciphertext)+len(e.Tag))
	combined = append(combined, e.Ciphertext...)
	combined = append(combined, e.Tag...)

	plaintext, err := aesgcm.Open(nil, e.Nonce, combined, nil)
	if err != nil {
		return nil, common.ErrIntegrity
	}
	return plaintext, nil
}

// validate rejects envelopes whose byte fields are inconsistent with the
// declared algorithm.
func (e *Envelope) validate() error {
	if e.Algorithm != Algorithm {
		return fmt.Errorf("unsupported algorithm %q: %w", e.Algorithm, common.ErrValidation)
	}
	if len(e.Nonce) != NonceSize {
		return fmt.Errorf("invalid nonce length %d: %w", len(e.Nonce), common.ErrValidation)
	}
	if len(e.Tag) != TagSize {
		return fmt.Errorf("invalid tag length %d: %w", len(e.Tag), common.ErrValidation)
	}
	if len(e.Key) != KeySize {
		return fmt.Errorf("invalid key length %d: %w", len(e.Key), common.ErrValidation)
	}
	// Ciphertext may be empty: sealing a zero-byte plaintext yields only
	// the tag.
	return nil
}

// envelopeJSON is the wire representation. encoding/json base64-encodes
// the []byte fields, matching the transport format.
type envelopeJSON struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"iv"`
	Tag        []byte `json:"tag"`
	Key        []byte `json:"key"`
	Algorithm  string `json:"algorithm"`
	MediaType  string `json:"media_type"`
	Name       string `json:"name"`
}

// MarshalJSON serializes the envelope with all byte fields base64-encoded.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(envelopeJSON{
		Ciphertext: e.Ciphertext,
		Nonce:      e.Nonce,
		Tag:        e.Tag,
		Key:        e.Key,
		Algorithm:  e.Algorithm,
		MediaType:  e.MediaType,
		Name:       e.Name,
	})
}

// UnmarshalJSON decodes the wire form and rejects inputs whose decoded
// lengths are inconsistent with the declared algorithm.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var w envelopeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	decoded := Envelope{
		Ciphertext: w.Ciphertext,
		Nonce:      w.Nonce,
		Tag:        w.Tag,
		Key:        w.Key,
		Algorithm:  w.Algorithm,
		MediaType:  w.MediaType,
		Name:       w.Name,
	}
	if err := decoded.validate(); err != nil {
		return err
	}
	*e = decoded
	return nil
}
