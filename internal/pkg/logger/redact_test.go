package logger

import "testing"

func TestRedactEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"a@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
		{"two@at@signs", "***@***"},
	}
	for _, c := range cases {
		if got := RedactEmail(c.in); got != c.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRedactPIIValue_EmbeddedEmail(t *testing.T) {
	got := redactPIIValue("reason", "bounced recipient user@example.com rejected")
	want := "bounced recipient us***@example.com rejected"
	if got != want {
		t.Errorf("redactPIIValue = %q, want %q", got, want)
	}
}

func TestRedactPIIValue_EmailKey(t *testing.T) {
	if got := redactPIIValue("email", "someone@example.com"); got != "so***@example.com" {
		t.Errorf("redactPIIValue(email key) = %q", got)
	}
}
