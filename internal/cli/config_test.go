package cli

import (
	"fmt"
	"reflect"
	"testing"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		spec    string
		from    int
		to      int
		wantErr bool
	}{
		{"5-10", 5, 10, false},
		{"1-1", 1, 1, false},
		{" 3 - 7 ", 3, 7, false},
		{"10-5", 0, 0, true},
		{"0-5", 0, 0, true},
		{"abc", 0, 0, true},
		{"5-", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			from, to, err := ParseRange(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRange(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if err == nil && (from != tt.from || to != tt.to) {
				t.Errorf("ParseRange(%q) = %d-%d, want %d-%d", tt.spec, from, to, tt.from, tt.to)
			}
		})
	}
}

func TestSelectChapters(t *testing.T) {
	available := []int{1, 2, 3, 5, 8, 13}

	tests := []struct {
		name    string
		flags   Flags
		want    []int
		wantErr bool
	}{
		{"no selection", Flags{}, available, false},
		{"single chapter", Flags{Chapter: 5}, []int{5}, false},
		{"missing chapter", Flags{Chapter: 4}, nil, true},
		{"range", Flags{RangeSpec: "2-8"}, []int{2, 3, 5, 8}, false},
		{"bad range", Flags{RangeSpec: "8-2"}, nil, true},
		{"start", Flags{Start: 3}, []int{3, 5, 8, 13}, false},
		{"start and count", Flags{Start: 3, Count: 2}, []int{3, 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.SelectChapters(available)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SelectChapters() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SelectChapters() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAPIKeysFromEnvironment(t *testing.T) {
	t.Setenv("API_KEY", "primary")
	t.Setenv("API_KEY_1", "extra-one")
	t.Setenv("API_KEY_2", "")
	t.Setenv("API_KEY_3", "extra-three")

	keys := APIKeys()
	want := []string{"primary", "extra-one", "extra-three"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("APIKeys() = %v, want %v", keys, want)
	}
}

func TestAPIKeysPrefixedEnvironment(t *testing.T) {
	t.Setenv("NOVELTRANS_API_KEY", "prefixed-primary")
	t.Setenv("API_KEY", "plain-primary")
	t.Setenv("NOVELTRANS_API_KEY_1", "prefixed-one")
	t.Setenv("API_KEY_2", "plain-two")

	keys := APIKeys()
	want := []string{"prefixed-primary", "prefixed-one", "plain-two"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("APIKeys() = %v, want %v", keys, want)
	}
}

func TestAPIKeysKeepsScanOrder(t *testing.T) {
	t.Setenv("API_KEY", "k0")
	for i := 1; i <= 5; i++ {
		t.Setenv(fmt.Sprintf("API_KEY_%d", i), fmt.Sprintf("k%d", i))
	}

	keys := APIKeys()
	if len(keys) != 6 {
		t.Fatalf("got %d keys, want 6", len(keys))
	}
	for i, k := range keys {
		if k != fmt.Sprintf("k%d", i) {
			t.Errorf("keys[%d] = %s, want k%d", i, k, i)
		}
	}
}
