package reply

import (
	"strings"
	"testing"

	"thanks-bot/internal/ledger"
)

func TestLeaderboardMedals(t *testing.T) {
	rows := []ledger.Standing{
		{FirstName: "Bob", LastName: "B", Username: "bob", Total: 9},
		{FirstName: "Cat", Username: "cat", Total: 9},
		{FirstName: "Ann", LastName: "A", Username: "ann", Total: 5},
		{FirstName: "Dan", LastName: "D", Username: "dan", Total: 1},
	}

	got := Leaderboard(rows, "репутация")
	want := "🥇 9 - Bob B (@bob)\n" +
		"🥈 9 - Cat (@cat)\n" +
		"🥉 5 - Ann A (@ann)\n" +
		"       1 - Dan D (@dan)\n"
	if got != want {
		t.Errorf("unexpected leaderboard:\n%q\nwant:\n%q", got, want)
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	got := Leaderboard(nil, "спасибок")
	if !strings.Contains(got, "спасибок") {
		t.Errorf("empty leaderboard should mention the coin, got %q", got)
	}
}

func TestAwarded(t *testing.T) {
	got := Awarded("bob", 3, "репутация")
	if got != "@bob\nРепутация повышена: 3" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestMe(t *testing.T) {
	if got := Me(4, -1, "репутация"); strings.Contains(got, "Осталось") {
		t.Errorf("unlimited quota should not show remaining awards: %q", got)
	}
	if got := Me(4, 2, "репутация"); !strings.Contains(got, "Осталось благодарностей на сегодня: 2") {
		t.Errorf("missing remaining awards: %q", got)
	}
}

func TestRegistered(t *testing.T) {
	created := Registered(ledger.Created, "Alice")
	again := Registered(ledger.AlreadyExists, "Alice")
	if created == again {
		t.Errorf("created and already-registered texts should differ")
	}
	if !strings.Contains(again, "Alice") {
		t.Errorf("missing name in %q", again)
	}
}

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"coin":      "Coin",
		"репутация": "Репутация",
		"Ok":        "Ok",
	}
	for in, want := range cases {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}
