package normalize_test

import (
	"testing"

	"github.com/dalemusser/applyhub/internal/app/system/normalize"
)

func TestEmail(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Jane@Example.COM", "jane@example.com"},
		{"  user@test.com  ", "user@test.com"},
		{"already@lower.com", "already@lower.com"},
		{"", ""},
	}
	for _, c := range cases {
		if got := normalize.Email(c.in); got != c.want {
			t.Errorf("Email(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Jane   Doe ", "Jane Doe"},
		{"Jane Doe", "Jane Doe"},
		{"\tJane\nDoe", "Jane Doe"},
		{"", ""},
	}
	for _, c := range cases {
		if got := normalize.Name(c.in); got != c.want {
			t.Errorf("Name(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStatus(t *testing.T) {
	if got := normalize.Status(" Approved "); got != "approved" {
		t.Errorf("Status: got %q, want %q", got, "approved")
	}
}
