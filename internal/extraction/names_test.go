package extraction

import (
	"regexp"
	"testing"
	"unicode/utf8"
)

func TestListingID(t *testing.T) {
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://www.kleinanzeigen.de/s-anzeige/rennrad/2801234567-217-1234", "2801234567", true},
		{"https://www.kleinanzeigen.de/s-anzeige/rennrad/123456789-217", "", false},
		{"https://www.kleinanzeigen.de/s-anzeige/x/28012345678901-217", "2801234567", true},
	}
	for _, tt := range tests {
		got, ok := ListingID(tt.url)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ListingID(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.wantOK)
		}
	}
}

var safeDirName = regexp.MustCompile(`^[\p{L}\p{N}_\s.\-]*$`)

func TestSanitizeDirName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Rennrad Alu 28 Zoll", "Rennrad Alu 28 Zoll"},
		{"slashes and colons", "Bosch: Akku/Ladegerät 18V", "Bosch_ Akku_Ladegerät 18V"},
		{"emoji", "Sofa 🛋️ top!", "Sofa __ top_"},
		{"trims", "  Tisch  ", "Tisch"},
		{"only dots", "..", "2801234567"},
		{"empty", "", "2801234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeDirName(tt.title, "2801234567")
			if got != tt.want {
				t.Errorf("SanitizeDirName(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSanitizeDirNameLimits(t *testing.T) {
	long := "Über: sehr/langer Titel mit Sonderzeichen ★★★ und noch viel mehr Text dahinter"
	got := SanitizeDirName(long, "x")

	if n := utf8.RuneCountInString(got); n > MaxDirNameLength {
		t.Errorf("got %d runes, want at most %d", n, MaxDirNameLength)
	}
	if !safeDirName.MatchString(got) {
		t.Errorf("unsafe characters left in %q", got)
	}
}
