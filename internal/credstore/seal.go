package credstore

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	sealVersion  = 1
	saltLength   = 16
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var errWrongPassphrase = errors.New("wrong passphrase or tampered document")

type sealedDocument struct {
	Version int    `json:"version"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Payload []byte `json:"payload"`
}

// sealer encrypts the credential document with XChaCha20-Poly1305. The derived
// key is cached per salt; Argon2id is too slow to run on every read.
type sealer struct {
	passphrase []byte

	mu   sync.Mutex
	salt []byte
	key  []byte
}

func newSealer(passphrase string) *sealer {
	return &sealer{passphrase: []byte(passphrase)}
}

func (s *sealer) keyFor(salt []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != nil && bytes.Equal(s.salt, salt) {
		return s.key
	}
	s.salt = append([]byte(nil), salt...)
	s.key = argon2.IDKey(s.passphrase, s.salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	return s.key
}

func (s *sealer) currentSalt() ([]byte, error) {
	s.mu.Lock()
	salt := s.salt
	s.mu.Unlock()
	if salt != nil {
		return salt, nil
	}
	salt = make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

func (s *sealer) seal(plain []byte) ([]byte, error) {
	salt, err := s.currentSalt()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(s.keyFor(salt))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return json.Marshal(sealedDocument{
		Version: sealVersion,
		Salt:    salt,
		Nonce:   nonce,
		Payload: aead.Seal(nil, nonce, plain, nil),
	})
}

func (s *sealer) open(raw []byte) ([]byte, error) {
	var doc sealedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode sealed document: %w", err)
	}
	if doc.Version != sealVersion {
		return nil, fmt.Errorf("unsupported sealed document version %d", doc.Version)
	}
	if len(doc.Salt) != saltLength || len(doc.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, errors.New("malformed sealed document")
	}
	aead, err := chacha20poly1305.NewX(s.keyFor(doc.Salt))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	plain, err := aead.Open(nil, doc.Nonce, doc.Payload, nil)
	if err != nil {
		return nil, errWrongPassphrase
	}
	return plain, nil
}
