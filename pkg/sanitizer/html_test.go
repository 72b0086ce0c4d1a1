package sanitizer

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Анна Петрова", "Анна Петрова"},
		{"script tag", "<script>alert('x')</script>", "&lt;script&gt;alert(&#x27;x&#x27;)&lt;&#x2F;script&gt;"},
		{"ampersand", "Tom & Jerry", "Tom &amp; Jerry"},
		{"quotes and backtick", "\"a\" `b`", "&quot;a&quot; &#96;b&#96;"},
		{"backslash", `a\b`, "a&#x5C;b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeHTML(tt.input); got != tt.want {
				t.Errorf("EscapeHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeTelegramHTML(t *testing.T) {
	got := EscapeTelegramHTML(`<b>"Tom" & 'Jerry'</b>`)
	want := `&lt;b&gt;&quot;Tom&quot; &amp; 'Jerry'&lt;/b&gt;`
	if got != want {
		t.Errorf("EscapeTelegramHTML() = %q, want %q", got, want)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Анна-Мария  ", "Анна-Мария"},
		{"\tJohn Smith\n", "John Smith"},
		{" <b>x</b> ", "&lt;b&gt;x&lt;&#x2F;b&gt;"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.input); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeNameIdempotentForValidNames(t *testing.T) {
	for _, name := range []string{"Анна", "Jean-Luc Picard", "Ёлкин Пётр"} {
		once := SanitizeName(name)
		if twice := SanitizeName(once); twice != once {
			t.Errorf("SanitizeName not idempotent for %q: %q then %q", name, once, twice)
		}
	}
}
