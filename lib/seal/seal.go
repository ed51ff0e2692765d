package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Errors reported when opening a token. Callers match with errors.Is.
var (
	ErrFormat    = errors.New("seal: invalid token format")
	ErrSignature = errors.New("seal: signature verification failed")
	ErrDecrypt   = errors.New("seal: decryption failed")
)

// Sealer produces and opens sealed descriptor payloads. A sealed payload
// carries server-decided fields (capability flags, entity context) through
// untrusted markup. Two modes:
//   - Signed (default): Base64 + HMAC signature - visible but tamper-proof
//   - Private: AES-256-GCM - fully opaque
type Sealer struct {
	key []byte
	gcm cipher.AEAD
}

// New creates a Sealer from the given key. The key should be 32 bytes for
// AES-256; shorter keys are stretched with SHA-256.
func New(key []byte) (*Sealer, error) {
	if len(key) == 0 {
		return nil, errors.New("seal: empty key")
	}
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Sealer{
		key: key,
		gcm: gcm,
	}, nil
}

// Seal packs the payload with msgpack and returns a token string. If private
// is true, the payload is encrypted; otherwise it is signed but readable.
func (s *Sealer) Seal(payload map[string]any, private bool) (string, error) {
	packed, err := msgpack.Marshal(payload)
	if err != nil {
		return "", err
	}

	if private {
		return s.encrypt(packed)
	}
	return s.sign(packed), nil
}

// Open verifies (or decrypts) a token and returns the payload. The private
// flag must match the one passed to Seal.
func (s *Sealer) Open(token string, private bool) (map[string]any, error) {
	var packed []byte
	var err error

	if private {
		packed, err = s.decrypt(token)
	} else {
		packed, err = s.verify(token)
	}
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := msgpack.Unmarshal(packed, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return payload, nil
}

// sign creates a signed (but visible) token: base64.signature
func (s *Sealer) sign(data []byte) string {
	b64 := base64.RawURLEncoding.EncodeToString(data)
	mac := hmac.New(sha256.New, s.key)
	mac.Write(data)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16]) // 16 bytes = 128 bits
	return b64 + "." + sig
}

// verify checks the signature and decodes a signed token
func (s *Sealer) verify(token string) ([]byte, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: missing signature", ErrFormat)
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(data)
	expected := mac.Sum(nil)[:16]

	if !hmac.Equal(sig, expected) {
		return nil, ErrSignature
	}

	return data, nil
}

// encrypt creates a private token using AES-256-GCM
func (s *Sealer) encrypt(data []byte) (string, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ciphertext := s.gcm.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// decrypt decodes and decrypts a private token
func (s *Sealer) decrypt(token string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	if len(ciphertext) < s.gcm.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrFormat)
	}

	nonce := ciphertext[:s.gcm.NonceSize()]
	ciphertext = ciphertext[s.gcm.NonceSize():]

	plain, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
