package inventory

import (
	"reflect"
	"testing"
)

func TestKeys(t *testing.T) {
	if got := HostKey("lab1", "CoreRouter-1"); got != "GNS3LAB_INVENTORY|lab1|CoreRouter-1" {
		t.Errorf("HostKey() = %q", got)
	}
	if got := ProjectKey("lab1"); got != "GNS3LAB_PROJECT|lab1" {
		t.Errorf("ProjectKey() = %q", got)
	}
}

func TestHostEntries(t *testing.T) {
	inv := &Inventory{
		Project: "lab1",
		Groups: []*Group{
			{Name: "ios", Hosts: []Host{{Name: "R-1", Address: "10.0.0.1", NodeID: "n1", Console: 5000}}},
			{Name: "junos", Hosts: []Host{{Name: "E-1", Address: "10.0.1.1", NodeID: "n2", Console: 5001}}},
		},
	}

	entries := hostEntries(inv)
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Key != "GNS3LAB_INVENTORY|lab1|R-1" {
		t.Errorf("entries[0].Key = %q", entries[0].Key)
	}
	want := map[string]interface{}{
		"group":        "junos",
		"ansible_host": "10.0.1.1",
		"node_id":      "n2",
		"console":      "5001",
	}
	if !reflect.DeepEqual(entries[1].Fields, want) {
		t.Errorf("entries[1].Fields = %v, want %v", entries[1].Fields, want)
	}

	if got := hostNames(inv); !reflect.DeepEqual(got, []interface{}{"R-1", "E-1"}) {
		t.Errorf("hostNames() = %v", got)
	}
}

func TestStaleKeys(t *testing.T) {
	got := staleKeys("lab1", []string{"old-1", "old-2"})
	want := []string{
		"GNS3LAB_INVENTORY|lab1|old-1",
		"GNS3LAB_INVENTORY|lab1|old-2",
		"GNS3LAB_PROJECT|lab1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("staleKeys() = %v, want %v", got, want)
	}
}
