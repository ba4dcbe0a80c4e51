package privilege

import (
	"math/bits"
	"testing"
)

func TestOfAssignsDistinctBits(t *testing.T) {
	seen := make(map[Mask]Operation)

	for _, op := range Operations() {
		mask := Of(op)

		if op == OpAny {
			if mask != None {
				t.Fatalf("Of(OpAny) = %v, want None", mask)
			}
			continue
		}

		if got := bits.OnesCount32(uint32(mask)); got != 1 {
			t.Fatalf("Of(%v) has %d bits set, want exactly 1", op, got)
		}
		if prev, dup := seen[mask]; dup {
			t.Fatalf("Of(%v) and Of(%v) share bit %v", op, prev, mask)
		}
		seen[mask] = op
	}

	if len(seen) != len(Operations())-1 {
		t.Fatalf("expected %d distinct bits, got %d", len(Operations())-1, len(seen))
	}
}

func TestOfStatGrantsLookup(t *testing.T) {
	if Of(OpStat) != Lookup {
		t.Fatalf("Of(OpStat) = %v, want Lookup", Of(OpStat))
	}
	if Of(OpReaddir) != Readdir {
		t.Fatalf("Of(OpReaddir) = %v, want Readdir", Of(OpReaddir))
	}
}

func TestOfOutOfRange(t *testing.T) {
	if got := Of(Operation(200)); got != None {
		t.Fatalf("Of(out of range) = %v, want None", got)
	}
}

func TestMaskHas(t *testing.T) {
	m := Read | Lookup

	if !m.Has(Read) {
		t.Fatal("mask should hold Read")
	}
	if !m.Has(Read | Lookup) {
		t.Fatal("mask should hold Read|Lookup")
	}
	if m.Has(Create) {
		t.Fatal("mask should not hold Create")
	}
	if m.Has(Read | Create) {
		t.Fatal("subset check must require every bit")
	}
	if !m.Has(None) {
		t.Fatal("every mask holds the empty mask")
	}
}

func TestMaskString(t *testing.T) {
	tests := []struct {
		mask Mask
		want string
	}{
		{None, "none"},
		{Read, "read"},
		{Read | Create, "create|read"},
		{Lookup | Update | Chmod, "chmod|lookup|update"},
	}

	for _, tt := range tests {
		if got := tt.mask.String(); got != tt.want {
			t.Errorf("Mask(%b).String() = %q, want %q", tt.mask, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	for _, op := range Operations() {
		got, ok := Parse(op.String())
		if !ok || got != op {
			t.Fatalf("Parse(%q) = %v, %v; want %v, true", op.String(), got, ok, op)
		}
	}

	if _, ok := Parse("truncate"); ok {
		t.Fatal("Parse should reject names outside the enumeration")
	}
	if _, ok := Parse("Read"); ok {
		t.Fatal("Parse is case-sensitive by contract")
	}
}
