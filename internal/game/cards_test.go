package game

import "testing"

func TestCardStringRoundTrip(t *testing.T) {
	c := Card{Species: "chemander", Rank: 17}
	if c.String() != "chemander#17" {
		t.Fatalf("String() = %q, want chemander#17", c.String())
	}
	parsed, err := ParseCard(c.String())
	if err != nil {
		t.Fatalf("ParseCard: %v", err)
	}
	if parsed != c {
		t.Fatalf("round trip = %+v, want %+v", parsed, c)
	}
}

func TestParseCardRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "pikachu", "#5", "pikachu#", "pikachu#five"} {
		if _, err := ParseCard(s); err == nil {
			t.Fatalf("ParseCard(%q) expected error, got nil", s)
		}
	}
}

func TestValidCard(t *testing.T) {
	if !ValidCard(Card{Species: "pikachu", Rank: 5}) {
		t.Fatal("pikachu#5 should be valid")
	}
	if ValidCard(Card{Species: "pikachu", Rank: 3}) {
		t.Fatal("pikachu#3 should be invalid")
	}
	if ValidCard(Card{Species: "mewtwo", Rank: 1}) {
		t.Fatal("unknown species should be invalid")
	}
}
