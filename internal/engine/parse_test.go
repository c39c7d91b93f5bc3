package engine

import "testing"

func TestParsePlaceQueries(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"geobot: who is in France?", "France"},
		{"geobot: who is from Japan", "Japan"},
		{"geobot: who do you know in Norway?", "Norway"},
		{"geobot: who is in the Netherlands?", "Netherlands"},
		{"geobot who is in  Portugal ?", "Portugal"},
	}
	for _, tt := range tests {
		in, ok := Parse(tt.text).(PeopleInPlace)
		if !ok {
			t.Errorf("Parse(%q) = %T, want PeopleInPlace", tt.text, Parse(tt.text))
			continue
		}
		if in.Place != tt.want {
			t.Errorf("Parse(%q).Place = %q, want %q", tt.text, in.Place, tt.want)
		}
	}
}

func TestParseSnack(t *testing.T) {
	if _, ok := Parse("geobot: botsnack").(Snack); !ok {
		t.Error("botsnack should parse as Snack")
	}
	if _, ok := Parse("geobot: BOTSNACK!").(Snack); !ok {
		t.Error("botsnack matching should be case-insensitive")
	}
}

func TestParseFallthrough(t *testing.T) {
	texts := []string{
		"geobot: where is bob?",
		"geobot: locate bob",
		"geobot: hello there",
	}
	for _, text := range texts {
		in, ok := Parse(text).(NickQuery)
		if !ok {
			t.Errorf("Parse(%q) = %T, want NickQuery", text, Parse(text))
			continue
		}
		if in.Text != text {
			t.Errorf("NickQuery.Text = %q, want the original text", in.Text)
		}
	}
}

func TestParsePlaceBeforeSnack(t *testing.T) {
	// Place patterns win over a botsnack mention later in the message.
	in, ok := Parse("geobot: who is in botsnackland").(PeopleInPlace)
	if !ok {
		t.Fatal("expected PeopleInPlace")
	}
	if in.Place != "botsnackland" {
		t.Errorf("Place = %q", in.Place)
	}
}
