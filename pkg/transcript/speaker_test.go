package transcript

import "testing"

func TestSpeakerFromFileName(t *testing.T) {
	cases := []struct {
		name     string
		expected string
	}{
		{"12-alice_7.mp3", "alice"},
		{"3-bob_12.wav", "bob"},
		{"12-alice_7.tsv", "alice"},
		{"weird name.mp3", "weird name"},
		{"no_pattern_here.flac", "no_pattern_here"},
		{"12-alice.mp3", "12-alice"},  // no trailing _<digits>
		{"alice_7.mp3", "alice_7"},    // no leading <digits>-
		{"12-_7.mp3", "12-_7"},        // empty label does not match
		{"noextension", "noextension"},
	}

	for _, c := range cases {
		if got := SpeakerFromFileName(c.name); got != c.expected {
			t.Errorf("SpeakerFromFileName(%q) = %q, expected %q", c.name, got, c.expected)
		}
	}
}

func TestSpeakerFromFileNameNonEmpty(t *testing.T) {
	if got := SpeakerFromFileName("x.mp3"); got == "" {
		t.Error("expected non-empty label for non-empty input")
	}
}
