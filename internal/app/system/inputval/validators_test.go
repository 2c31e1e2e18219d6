package inputval

import "testing"

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		// Valid passwords
		{"abcdefg1", true},
		{"1abcdefg", true},
		{"pass1234", true},
		{"Str0ng-password", true},

		// Too short
		{"", false},
		{"a1", false},
		{"abc1234", false},

		// Missing letter or digit
		{"abcdefgh", false},
		{"12345678", false},
		{"!!!!!!!!", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			got := IsValidPassword(tt.password)
			if got != tt.want {
				t.Errorf("IsValidPassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		username string
		want     bool
	}{
		// Valid usernames
		{"bob", true},
		{"alice_42", true},
		{"Jean-Luc", true},
		{"  trimmed  ", true},

		// Too short / too long
		{"", false},
		{"ab", false},
		{"this-username-is-way-too-long-to-accept", false},

		// Bad characters
		{"space name", false},
		{"user@name", false},
		{"name!", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			got := IsValidUsername(tt.username)
			if got != tt.want {
				t.Errorf("IsValidUsername(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}

func TestIsValidActivityTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"normal", "Morning Run", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"at limit", string(make([]byte, 200)), true},
		{"over limit", string(make([]byte, 201)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title := tt.title
			if tt.name == "at limit" || tt.name == "over limit" {
				b := make([]byte, len(tt.title))
				for i := range b {
					b[i] = 'x'
				}
				title = string(b)
			}
			got := IsValidActivityTitle(title)
			if got != tt.want {
				t.Errorf("IsValidActivityTitle(len %d) = %v, want %v", len(title), got, tt.want)
			}
		})
	}
}

func TestIsValidMaxParticipants(t *testing.T) {
	tests := []struct {
		n    int
		want bool
	}{
		{1, true},
		{50, true},
		{0, false},
		{-5, false},
	}

	for _, tt := range tests {
		got := IsValidMaxParticipants(tt.n)
		if got != tt.want {
			t.Errorf("IsValidMaxParticipants(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}
