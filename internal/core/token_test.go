package core

import (
	"regexp"
	"testing"
)

func TestNewToken(t *testing.T) {
	hex := regexp.MustCompile(`^[0-9a-f]+$`)

	cases := []struct {
		length   int
		expected int
	}{
		{length: 8, expected: 8},
		{length: 12, expected: 12},
		{length: 32, expected: 32},
		{length: 0, expected: DefaultTokenLength},
		{length: 33, expected: DefaultTokenLength},
	}

	for _, c := range cases {
		token := NewToken(c.length)
		if len(token) != c.expected {
			t.Errorf("length %v\n\tExpected %v but got %v instead", c.length, c.expected, len(token))
		}
		if !hex.MatchString(token) {
			t.Errorf("Expected a lowercase hex token but got %q instead", token)
		}
	}
}

func TestNewTokenIsFresh(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token := NewToken(DefaultTokenLength)
		if seen[token] {
			t.Fatalf("Token %q was generated twice", token)
		}
		seen[token] = true
	}
}

func TestDisambiguatedName(t *testing.T) {
	cases := []struct {
		name     string
		expected string
	}{
		{name: "IMG_1.jpg", expected: "IMG_1 (a1b2c3d4).jpg"},
		{name: "archive.tar.gz", expected: "archive.tar (a1b2c3d4).gz"},
		{name: "README", expected: "README (a1b2c3d4)"},
		{name: ".hidden", expected: ".hidden (a1b2c3d4)"},
		{name: "file.", expected: "file. (a1b2c3d4)"},
	}

	for _, c := range cases {
		if got := DisambiguatedName(c.name, "a1b2c3d4"); got != c.expected {
			t.Errorf("%v\n\tExpected %q but got %q instead", c.name, c.expected, got)
		}
	}
}
