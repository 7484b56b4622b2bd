package helper

import "testing"

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		cc      string
		want    string
		wantErr bool
	}{
		{
			name:  "bare national number gets country code",
			phone: "1234567890",
			cc:    "62",
			want:  "621234567890@s.whatsapp.net",
		},
		{
			name:  "leading zero swapped for country code",
			phone: "081234567890",
			cc:    "62",
			want:  "6281234567890@s.whatsapp.net",
		},
		{
			name:  "already has country code",
			phone: "6281234567890",
			cc:    "62",
			want:  "6281234567890@s.whatsapp.net",
		},
		{
			name:  "plus and separators stripped",
			phone: "+62 812-3456-7890",
			cc:    "62",
			want:  "6281234567890@s.whatsapp.net",
		},
		{
			name:  "parentheses allowed",
			phone: "(62) 812 3456 7890",
			cc:    "62",
			want:  "6281234567890@s.whatsapp.net",
		},
		{
			name:    "empty input",
			phone:   "   ",
			cc:      "62",
			wantErr: true,
		},
		{
			name:    "letters rejected before stripping",
			phone:   "62abc812345678",
			cc:      "62",
			wantErr: true,
		},
		{
			name:    "too short after normalization",
			phone:   "0812345",
			cc:      "62",
			wantErr: true,
		},
		{
			name:    "too long",
			phone:   "12345678901234567890",
			cc:      "1",
			wantErr: true,
		},
		{
			name:    "only separators",
			phone:   "+-() ",
			cc:      "62",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatPhoneNumber(tt.phone, tt.cc)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("FormatPhoneNumber(%q) = %q, want error", tt.phone, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatPhoneNumber(%q) error: %v", tt.phone, err)
			}
			if got != tt.want {
				t.Errorf("FormatPhoneNumber(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}

func TestBareNumber(t *testing.T) {
	tests := []struct {
		jid  string
		want string
	}{
		{"6281234567890@s.whatsapp.net", "6281234567890"},
		{"6281234567890:12@s.whatsapp.net", "6281234567890"},
		{"6281234567890", "6281234567890"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := BareNumber(tt.jid); got != tt.want {
			t.Errorf("BareNumber(%q) = %q, want %q", tt.jid, got, tt.want)
		}
	}
}
