package netflow

import "testing"

func TestRegistryFallsBackToIANATable(t *testing.T) {
	r := NewRegistry()
	def, ok := r.Lookup(FieldKey{Enterprise: 0, ID: 8})
	if !ok || def.Name != "sourceIPv4Address" {
		t.Fatalf("expected builtin lookup for field 8, got %+v ok=%v", def, ok)
	}
}

func TestRegistryUserOverrideWins(t *testing.T) {
	r := NewRegistry()
	r.Register(FieldKey{Enterprise: 0, ID: 8}, FieldDef{Name: "customSourceAddr", Type: DataTypeOpaque})

	def, ok := r.Lookup(FieldKey{Enterprise: 0, ID: 8})
	if !ok || def.Name != "customSourceAddr" {
		t.Fatalf("expected user override to win, got %+v", def)
	}
}

func TestRegistryEnterpriseFieldUnknownWithoutOverride(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup(FieldKey{Enterprise: 4491, ID: 1})
	if ok {
		t.Fatal("enterprise fields should never fall back to the IANA table")
	}
}

func TestRegisterManyAndContains(t *testing.T) {
	r := NewRegistry()
	key := FieldKey{Enterprise: 4491, ID: 1}
	r.RegisterMany(map[FieldKey]FieldDef{
		key: {Name: "casaSubscriberIpAddr", Type: DataTypeIPv4},
	})

	if !r.Contains(key) {
		t.Fatal("expected Contains to report true after RegisterMany")
	}
	if r.Len() != 1 {
		t.Fatalf("expected len 1, got %d", r.Len())
	}

	r.Clear()
	if r.Contains(key) || r.Len() != 0 {
		t.Fatal("expected Clear to remove all user overrides")
	}
}
