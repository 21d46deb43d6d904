// Package cryptox implements the two symmetric schemes used by Keepsake.
//
// The vault scheme (Encrypt/Decrypt) protects a user's file tree and file
// contents. Each envelope carries its own random salt and nonce, so decryption
// needs only the envelope and the passphrase. AES-256-GCM provides the
// integrity check that turns a wrong key into a clean failure instead of
// garbage plaintext.
//
// The share scheme (EncryptShare/DecryptShare) protects anonymous one-off
// shares. It is deliberately weaker: the key is a pad-or-truncate of an
// optional passphrase (a fixed default key when none is given) and the IV is
// explicit, because a share must be decryptable by someone who holds nothing
// but the link and, optionally, a short password.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"encoding/base64"
	"fmt"

	"github.com/avolkovs/keepsake/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12

	// ShareIVSize is the AES block size; share IVs travel hex-encoded
	// alongside the ciphertext.
	ShareIVSize = 16

	shareKeySize = 32
)

// envelopeMagic identifies a vault ciphertext envelope. Version bump means a
// new envelope layout, not a new KDF cost.
var envelopeMagic = []byte("KSV1")

// defaultShareKey is used when a share has no password. It provides obfuscation
// of the stored blob, not secrecy; anyone with the link can decrypt.
var defaultShareKey = []byte("keepsake.default.share.key.v1---")

// DeriveKey derives a 32-byte AES key from a passphrase and salt using
// argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// Encrypt seals plaintext under the given passphrase. The result is
// base64(magic || salt || nonce || AES-256-GCM ciphertext); everything needed
// for decryption except the passphrase is embedded.
func Encrypt(plaintext, passphrase []byte) (string, error) {
	salt := common.GenerateRandByteArray(saltSize)
	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("new gcm: %w", err)
	}

	nonce := common.GenerateRandByteArray(nonceSize)

	envelope := make([]byte, 0, len(envelopeMagic)+saltSize+nonceSize+len(plaintext)+aesgcm.Overhead())
	envelope = append(envelope, envelopeMagic...)
	envelope = append(envelope, salt...)
	envelope = append(envelope, nonce...)
	envelope = aesgcm.Seal(envelope, nonce, plaintext, nil)

	return base64.StdEncoding.EncodeToString(envelope), nil
}

// Decrypt opens an envelope produced by Encrypt. Any failure, whether a
// malformed envelope, corrupted ciphertext or a wrong passphrase, is
// reported as common.ErrInvalidKeyOrData so the caller never sees garbage
// plaintext or a raw crypto error.
func Decrypt(envelope string, passphrase []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, common.ErrInvalidKeyOrData
	}

	headerLen := len(envelopeMagic) + saltSize + nonceSize
	if len(raw) < headerLen || !hmac.Equal(raw[:len(envelopeMagic)], envelopeMagic) {
		return nil, common.ErrInvalidKeyOrData
	}

	salt := raw[len(envelopeMagic) : len(envelopeMagic)+saltSize]
	nonce := raw[len(envelopeMagic)+saltSize : headerLen]
	ciphertext := raw[headerLen:]

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, common.ErrInvalidKeyOrData
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, common.ErrInvalidKeyOrData
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrInvalidKeyOrData
	}

	return plaintext, nil
}

// ShareKey turns an optional share passphrase into a fixed-length AES key by
// padding with zero bytes or truncating. An empty passphrase yields the
// default key.
func ShareKey(passphrase string) []byte {
	if passphrase == "" {
		key := make([]byte, shareKeySize)
		copy(key, defaultShareKey)
		return key
	}
	key := make([]byte, shareKeySize)
	copy(key, passphrase)
	return key
}

// NewShareIV returns a fresh random IV for the share scheme.
func NewShareIV() []byte {
	return common.GenerateRandByteArray(ShareIVSize)
}

// EncryptShare encrypts plaintext with AES-256-CTR under the given key and
// explicit IV and returns it base64-encoded. The IV is not embedded; it is
// stored next to the ciphertext by the server.
func EncryptShare(plaintext, key, iv []byte) (string, error) {
	ciphertext, err := shareXOR(plaintext, key, iv)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptShare reverses EncryptShare. CTR mode has no integrity check; the
// server verifies the share password before the ciphertext is ever handed
// out, so a wrong key does not normally reach this function.
func DecryptShare(encoded string, key, iv []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, common.ErrInvalidKeyOrData
	}
	return shareXOR(ciphertext, key, iv)
}

func shareXOR(in, key, iv []byte) ([]byte, error) {
	if len(iv) != ShareIVSize {
		return nil, common.ErrInvalidKeyOrData
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, common.ErrInvalidKeyOrData
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}
