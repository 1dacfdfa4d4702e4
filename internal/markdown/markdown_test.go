package markdown

import "testing"

func TestToPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Great service!", "Great service!"},
		{"emphasis", "This is **really** bad", "This is really bad"},
		{"link label kept", "See [our shop](https://example.com/shop) today", "See our shop today"},
		{"bare url dropped", "Loved it https://example.com/x thanks", "Loved it thanks"},
		{"entities", `He said "wow" & left`, `He said "wow" & left`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToPlainText(tt.in); got != tt.want {
				t.Errorf("ToPlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripHTMLTags(t *testing.T) {
	got := StripHTMLTags("<p>Hello</p><p>World</p>")
	if got != " Hello  World " {
		t.Errorf("StripHTMLTags = %q", got)
	}
}

func TestHasMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Great service!", false},
		{">:( terrible", false},
		{`bad :\`, false},
		{"I <3 this place", false},
		{"This is **really** bad", true},
		{"See [our shop](https://example.com/shop)", true},
		{"Loved it https://example.com/x", true},
		{"<b>awful</b>", true},
		{"use `retry` next time", true},
		{"# Terrible\nnever again", true},
		{"fish &amp; chips", true},
	}

	for _, tt := range tests {
		if got := HasMarkup(tt.in); got != tt.want {
			t.Errorf("HasMarkup(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
