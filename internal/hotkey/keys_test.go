package hotkey

import "testing"

func TestLookup(t *testing.T) {
	t.Run("function_key", func(t *testing.T) {
		code, label, err := Lookup("f8")
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if code == 0 {
			t.Error("code = 0, want non-zero")
		}
		if label != "F8" {
			t.Errorf("label = %q, want F8", label)
		}
	})

	t.Run("case_and_whitespace_insensitive", func(t *testing.T) {
		a, _, err := Lookup("  F8 ")
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		b, _, _ := Lookup("f8")
		if a != b {
			t.Errorf("codes differ: %d vs %d", a, b)
		}
	})

	t.Run("aliases", func(t *testing.T) {
		ret, _, err := Lookup("return")
		if err != nil {
			t.Fatalf("Lookup(return): %v", err)
		}
		enter, _, _ := Lookup("enter")
		if ret != enter {
			t.Errorf("return code %d != enter code %d", ret, enter)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, _, err := Lookup(""); err == nil {
			t.Error("expected error for empty hotkey")
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if _, _, err := Lookup("hyperdrive"); err == nil {
			t.Error("expected error for unknown key name")
		}
	})
}
