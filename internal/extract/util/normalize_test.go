package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Joe's Pizza", CleanText("  Joe's  Pizza \n"))
	assert.Equal(t, "", CleanText("   \t\n"))
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(212) 555-0147", "2125550147"},
		{"+1 212 555 0147", "+12125550147"},
		{"212.555.0147 ext", "2125550147"},
		{"12345", ""},             // too short
		{"12345678901234567", ""}, // too long
		{"call us", ""},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizePhone(c.in), "input %q", c.in)
	}
}

func TestNormalizeWebsite(t *testing.T) {
	assert.Equal(t, "https://example.com", NormalizeWebsite("example.com"))
	assert.Equal(t, "http://example.com/menu", NormalizeWebsite("http://example.com/menu"))
	assert.Equal(t, "", NormalizeWebsite("localhost"))
	assert.Equal(t, "", NormalizeWebsite(""))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "info@example.com", NormalizeEmail(" Info@Example.com "))
	assert.Equal(t, "", NormalizeEmail("not-an-email"))
	assert.Equal(t, "", NormalizeEmail(""))
}

func TestFirstEmail(t *testing.T) {
	assert.Equal(t, "sales@acme.io", FirstEmail("Contact Sales@Acme.io or call us"))
	assert.Equal(t, "", FirstEmail("no address here"))
}

func TestIsPersonalEmail(t *testing.T) {
	assert.True(t, IsPersonalEmail("bob@gmail.com"))
	assert.True(t, IsPersonalEmail("sue@icloud.com"))
	assert.False(t, IsPersonalEmail("info@acmeplumbing.com"))
	assert.False(t, IsPersonalEmail("not-an-email"))
}

func TestLooksLikePhone(t *testing.T) {
	assert.True(t, LooksLikePhone("(212) 555-0147"))
	assert.True(t, LooksLikePhone("+44 20 7946 0958"))
	assert.False(t, LooksLikePhone("Open 9-5"))
	assert.False(t, LooksLikePhone("visit example.com"))
}
