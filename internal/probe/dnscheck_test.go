package probe

import (
	"context"
	"testing"
)

func TestDNSDiagnoser_ShortCircuits(t *testing.T) {
	d := NewDNSDiagnoser()

	if got := d.Diagnose(context.Background(), "http://127.0.0.1:8080/x"); got.Class != DNSLiteralIP {
		t.Fatalf("want LITERAL_IP, got %+v", got)
	}
	if got := d.Diagnose(context.Background(), ""); got.Class != DNSInvalidName {
		t.Fatalf("want INVALID_NAME, got %+v", got)
	}
}

func TestHostOf(t *testing.T) {
	cases := map[string]string{
		"https://www.example.com/api2/": "www.example.com",
		"http://20.29.187.121":          "20.29.187.121",
		"http://[::1]:4100/":            "::1",
		"example.com":                   "example.com",
	}
	for in, want := range cases {
		if got := hostOf(in); got != want {
			t.Fatalf("hostOf(%q)=%q want %q", in, got, want)
		}
	}
}
