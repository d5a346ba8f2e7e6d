package trigger

import "testing"

func TestParseCommand(t *testing.T) {
	cases := []struct {
		text string
		ok   bool
		name string
		arg  string
	}{
		{"/top", true, "top", ""},
		{"/TOP", true, "top", ""},
		{"  /top  ", true, "top", ""},
		{"/top@quorra_bot", true, "top", ""},
		{"/top@Quorra_Bot", true, "top", ""},
		{"/top@Quorra", true, "top", ""},
		{"/top@other_bot", false, "", ""},
		{"/reg secret", true, "reg", "secret"},
		{"/reg@quorra_bot   secret  ", true, "reg", "secret"},
		{"/start", true, "start", ""},
		{"/", false, "", ""},
		{"/@quorra_bot", false, "", ""},
		{"/путин", false, "", ""},
		{"top", false, "", ""},
		{"спасибо @bob", false, "", ""},
	}

	for _, c := range cases {
		cmd, ok := ParseCommand(c.text, "quorra_bot", "Quorra")
		if ok != c.ok {
			t.Errorf("ParseCommand(%q) ok=%v, want %v", c.text, ok, c.ok)
			continue
		}
		if !ok {
			continue
		}
		if cmd.Name != c.name || cmd.Arg != c.arg {
			t.Errorf("ParseCommand(%q) = %+v, want name=%q arg=%q", c.text, cmd, c.name, c.arg)
		}
	}
}

func TestParseCommandIgnoresEmptyNames(t *testing.T) {
	if _, ok := ParseCommand("/top@", "", "@"); ok {
		t.Errorf("empty bot names must not match an empty handle")
	}
}
