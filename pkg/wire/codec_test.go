package wire

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarshalDeterministic(t *testing.T) {
	v := map[string]any{
		"systolic":  int64(80),
		"diastolic": int64(120),
		"units":     "mmHg",
	}

	a, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		b, err := Marshal(v)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("encoding %d differs: %x vs %x", i, a, b)
		}
	}
}

func TestUnmarshalStringKeyedMap(t *testing.T) {
	data, err := Marshal(map[string]any{"pulserate": int64(58)})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out any
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", out)
	}
	if got := m["pulserate"]; got != uint64(58) {
		t.Errorf("pulserate = %v (%T), want 58", got, got)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"units": "mmHg"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	s, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose failed: %v", err)
	}
	if !strings.Contains(s, `"units"`) || !strings.Contains(s, `"mmHg"`) {
		t.Errorf("Diagnose = %s, want units and mmHg", s)
	}

	s, err = Diagnose(nil)
	if err != nil || s != "" {
		t.Errorf("Diagnose(nil) = %q, %v; want empty", s, err)
	}

	if _, err := Diagnose([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for malformed CBOR")
	}
}

func TestEqual(t *testing.T) {
	if !Equal(map[string]any{"a": 1, "b": 2}, map[string]any{"b": 2, "a": 1}) {
		t.Error("maps with same content should be equal")
	}
	if Equal(map[string]any{"a": 1}, map[string]any{"a": 2}) {
		t.Error("maps with different content should not be equal")
	}
}
