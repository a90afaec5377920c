package sponsors

import (
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

var testConfig = Config{
	BaseURL: "https://example.org/",
	Tiers: []Tier{
		{Name: "gold", Sponsors: []Entry{{Image: "a.png", URL: "a.example"}, {Image: "b.png", URL: "b.example"}}},
		{Name: "silver", Sponsors: []Entry{{Image: "/c.png", URL: "c.example"}}},
	},
}

func TestFlattenKeepsTierOrder(t *testing.T) {
	got := testConfig.Flatten()
	want := []string{"a.png", "b.png", "/c.png"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, e := range got {
		if e.Image != want[i] {
			t.Errorf("entry %d: got %s, want %s", i, e.Image, want[i])
		}
	}
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		cfg   Config
		image string
		want  string
	}{
		{testConfig, "a.png", "https://example.org/sponsors/a.png"},
		{testConfig, "/c.png", "https://example.org/sponsors/c.png"},
		{Config{}, "x.svg.png", DefaultBaseURL + "/sponsors/x.svg.png"},
		{testConfig, "https://cdn.example/x.png", "https://cdn.example/x.png"},
	}
	for _, tt := range tests {
		if got := tt.cfg.ImageURL(Entry{Image: tt.image}); got != tt.want {
			t.Errorf("ImageURL(%q) = %q, want %q", tt.image, got, tt.want)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	in := testConfig.Flatten()
	orig := append([]Entry(nil), in...)

	out := Shuffle(in, rand.New(rand.NewSource(7)))
	if !reflect.DeepEqual(in, orig) {
		t.Error("Shuffle modified its input")
	}

	names := func(es []Entry) []string {
		var s []string
		for _, e := range es {
			s = append(s, e.URL)
		}
		sort.Strings(s)
		return s
	}
	if !reflect.DeepEqual(names(in), names(out)) {
		t.Errorf("shuffled set differs: %v vs %v", names(in), names(out))
	}

	again := Shuffle(in, rand.New(rand.NewSource(7)))
	if !reflect.DeepEqual(out, again) {
		t.Error("same seed produced a different order")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sponsors.yaml")
	data := []byte(`base_url: https://2024.example.org
qr_code: true
tiers:
  - name: gold
    sponsors:
      - image: gold/acme.png
        url: acme.example
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !c.QRCode || len(c.Tiers) != 1 || c.Tiers[0].Sponsors[0].URL != "acme.example" {
		t.Errorf("unexpected config: %+v", c)
	}
}

func TestQRCode(t *testing.T) {
	img, err := QRCode("https://nixos.org", 128)
	if err != nil {
		t.Fatalf("QRCode failed: %v", err)
	}
	if img.Bounds().Dx() != 128 {
		t.Errorf("expected 128px code, got %v", img.Bounds())
	}
}
