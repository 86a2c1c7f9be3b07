// Package keys loads the judge's private key and decrypts submission
// payloads with it.
package keys

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/ecies"

	"github.com/tidemark/challenge-judge/pkg/config"
)

// Decrypter holds the judge's ECIES private key. Implements
// contracts.Decrypter.
type Decrypter struct {
	key     *ecies.PrivateKey
	address string
}

// Load parses the configured private key and verifies it derives the
// configured judge address. Submissions are encrypted against that
// address's public key, so a mismatch means nothing would decrypt.
func Load(cfg config.JudgeConfig) (*Decrypter, error) {
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("JUDGE_PRIVATE_KEY is required")
	}

	ecdsaKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	derived := crypto.PubkeyToAddress(ecdsaKey.PublicKey).Hex()
	if !strings.EqualFold(derived, cfg.Address) {
		return nil, fmt.Errorf("private key derives %s, want judge address %s", derived, cfg.Address)
	}

	return &Decrypter{
		key:     ecies.ImportECDSA(ecdsaKey),
		address: derived,
	}, nil
}

// Address returns the checksummed judge address the key derives.
func (d *Decrypter) Address() string {
	return d.address
}

// Decrypt hex-decodes a ciphertext and decrypts it with the judge key.
func (d *Decrypter) Decrypt(ciphertext string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(ciphertext, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext hex: %w", err)
	}

	plaintext, err := d.key.Decrypt(raw, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt payload: %w", err)
	}
	return plaintext, nil
}

// Encrypt encrypts a plaintext for the judge's public key and returns
// it hex-encoded. Used by tests and by the submission helper tooling.
func (d *Decrypter) Encrypt(plaintext []byte) (string, error) {
	raw, err := ecies.Encrypt(rand.Reader, &d.key.PublicKey, plaintext, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt payload: %w", err)
	}
	return "0x" + hex.EncodeToString(raw), nil
}
