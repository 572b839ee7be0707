package assets

import (
	"testing"
)

func spirvHeader() []byte {
	return []byte{
		0x03, 0x02, 0x23, 0x07,
		0x00, 0x00, 0x01, 0x00,
	}
}

func TestBytecode(t *testing.T) {
	code, err := Bytecode(spirvHeader())
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}

	if len(code) != 2 {
		t.Fatalf("expected 2 words, got %d", len(code))
	}
	if code[0] != spirvMagic {
		t.Errorf("expected magic %#x, got %#x", spirvMagic, code[0])
	}
	if code[1] != 0x00010000 {
		t.Errorf("expected version word 0x00010000, got %#x", code[1])
	}
}

func TestBytecodeRejectsBadInput(t *testing.T) {
	tests := map[string][]byte{
		"empty":     {},
		"unaligned": {0x03, 0x02, 0x23},
		"magic":     {0x07, 0x23, 0x02, 0x03},
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Bytecode(input)
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
