package seal

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{"short key gets derived", []byte("short"), false},
		{"exact 32 bytes", make([]byte, 32), false},
		{"long key gets derived", make([]byte, 64), false},
		{"empty key", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSealOpenRoundtrip(t *testing.T) {
	s, err := New([]byte("test-key"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	payload := map[string]any{
		"canEdit": true,
		"bundle":  "product",
	}

	for _, private := range []bool{false, true} {
		name := "signed"
		if private {
			name = "private"
		}
		t.Run(name, func(t *testing.T) {
			token, err := s.Seal(payload, private)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			got, err := s.Open(token, private)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if got["canEdit"] != true {
				t.Errorf("Open()[canEdit] = %v, want true", got["canEdit"])
			}
			if got["bundle"] != "product" {
				t.Errorf("Open()[bundle] = %v, want %q", got["bundle"], "product")
			}
		})
	}
}

func TestOpenTamperedToken(t *testing.T) {
	s, _ := New([]byte("test-key"))
	token, err := s.Seal(map[string]any{"canEdit": false}, false)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	// Flip a character in the payload half, keeping the signature.
	parts := strings.SplitN(token, ".", 2)
	flipped := "A" + parts[0][1:]
	if flipped == parts[0] {
		flipped = "B" + parts[0][1:]
	}

	_, err = s.Open(flipped+"."+parts[1], false)
	if !errors.Is(err, ErrSignature) {
		t.Errorf("Open(tampered) error = %v, want ErrSignature", err)
	}
}

func TestOpenWrongKey(t *testing.T) {
	s1, _ := New([]byte("key-one"))
	s2, _ := New([]byte("key-two"))

	signed, _ := s1.Seal(map[string]any{"a": "b"}, false)
	if _, err := s2.Open(signed, false); !errors.Is(err, ErrSignature) {
		t.Errorf("Open(signed, wrong key) error = %v, want ErrSignature", err)
	}

	private, _ := s1.Seal(map[string]any{"a": "b"}, true)
	if _, err := s2.Open(private, true); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Open(private, wrong key) error = %v, want ErrDecrypt", err)
	}
}

func TestOpenBadFormat(t *testing.T) {
	s, _ := New([]byte("test-key"))

	tests := []struct {
		name  string
		token string
	}{
		{"missing signature", "justonepart"},
		{"bad payload base64", "!!!.c2ln"},
		{"bad signature base64", "c2ln.!!!"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Open(tt.token, false); !errors.Is(err, ErrFormat) {
				t.Errorf("Open(%q) error = %v, want ErrFormat", tt.token, err)
			}
		})
	}

	t.Run("private too short", func(t *testing.T) {
		if _, err := s.Open("c2hvcnQ", true); !errors.Is(err, ErrFormat) {
			t.Errorf("Open(short private) error = %v, want ErrFormat", err)
		}
	})
}

func TestPrivateTokensAreOpaqueAndFresh(t *testing.T) {
	s, _ := New([]byte("test-key"))
	payload := map[string]any{"secret": "value"}

	t1, err := s.Seal(payload, true)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	t2, err := s.Seal(payload, true)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	// Random nonce: equal payloads never share a token.
	if t1 == t2 {
		t.Error("two private tokens for the same payload are identical")
	}
	if strings.Contains(t1, ".") {
		t.Error("private token carries a signed-format separator")
	}
}

func TestShortKeyDerivationIsStable(t *testing.T) {
	s1, _ := New([]byte("abc"))
	s2, _ := New([]byte("abc"))

	token, err := s1.Seal(map[string]any{"x": "y"}, false)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if _, err := s2.Open(token, false); err != nil {
		t.Errorf("Open() with independently derived key error = %v", err)
	}
}
