package types

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestByteOrderResolve(t *testing.T) {
	if ByteOrderDefault.Resolve() != LittleEndian {
		t.Fatal("default should resolve little")
	}
	if BigEndian.Resolve() != BigEndian {
		t.Fatal("big should stay big")
	}
	if ByteOrder(99).Resolve() != LittleEndian {
		t.Fatal("unknown code should resolve little")
	}
}

func TestRegisterOrderResolve(t *testing.T) {
	if RegisterOrderDefault.Resolve() != R0R1R2R3 {
		t.Fatal("default should resolve r0r1r2r3")
	}
	for _, o := range []RegisterOrder{R3R2R1R0, R1R0R3R2, R2R3R0R1} {
		if o.Resolve() != o {
			t.Fatalf("%v should resolve to itself", o)
		}
	}
	if RegisterOrder(42).Resolve() != R0R1R2R3 {
		t.Fatal("unknown code should resolve r0r1r2r3")
	}
}

func TestParseOrders(t *testing.T) {
	if o, err := ParseByteOrder("  Big "); err != nil || o != BigEndian {
		t.Fatalf("ParseByteOrder = %v, %v", o, err)
	}
	if _, err := ParseByteOrder("middle"); err == nil {
		t.Fatal("expected error for unknown byte order")
	}
	if o, err := ParseRegisterOrder("R3R2R1R0"); err != nil || o != R3R2R1R0 {
		t.Fatalf("ParseRegisterOrder = %v, %v", o, err)
	}
	if _, err := ParseRegisterOrder("r9"); err == nil {
		t.Fatal("expected error for unknown register order")
	}
}

func TestOrderYAML(t *testing.T) {
	var cfg struct {
		BO ByteOrder     `yaml:"bo"`
		RO RegisterOrder `yaml:"ro"`
	}
	if err := yaml.Unmarshal([]byte("bo: big\nro: r1r0r3r2\n"), &cfg); err != nil {
		t.Fatalf("unmarshal names: %v", err)
	}
	if cfg.BO != BigEndian || cfg.RO != R1R0R3R2 {
		t.Fatalf("got %v/%v", cfg.BO, cfg.RO)
	}

	if err := yaml.Unmarshal([]byte("bo: 1\nro: -1\n"), &cfg); err != nil {
		t.Fatalf("unmarshal codes: %v", err)
	}
	if cfg.BO != BigEndian || cfg.RO != RegisterOrderDefault {
		t.Fatalf("got %v/%v", cfg.BO, cfg.RO)
	}

	if err := yaml.Unmarshal([]byte("bo: sideways\n"), &cfg); err == nil {
		t.Fatal("expected error for unknown name")
	}
	if err := yaml.Unmarshal([]byte("ro: 7\n"), &cfg); err == nil {
		t.Fatal("expected error for out-of-range code")
	}

	out, err := yaml.Marshal(struct {
		BO ByteOrder     `yaml:"bo"`
		RO RegisterOrder `yaml:"ro"`
	}{BigEndian, R2R3R0R1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "bo: big\nro: r2r3r0r1\n" {
		t.Fatalf("marshal = %q", out)
	}
}
