package mailer

import "testing"

func TestIsConfigured(t *testing.T) {
	cases := []struct {
		name   string
		config Config
		want   bool
	}{
		{"empty", Config{}, false},
		{"missing from", Config{Host: "smtp.example.com", Port: "465"}, false},
		{"complete", Config{Host: "smtp.example.com", Port: "465", From: "noreply@example.com"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewService(tc.config).IsConfigured(); got != tc.want {
				t.Fatalf("IsConfigured() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNotifyUnconfiguredFails(t *testing.T) {
	if err := NewService(Config{}).Notify("a@example.com", "subject", "body"); err == nil {
		t.Fatal("expected error when unconfigured")
	}
}
