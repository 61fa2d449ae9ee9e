package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "HDFC Top 100 Fund", SanitizeText("  HDFC Top 100 Fund  "))
	assert.Equal(t, "HDFC Top 100", SanitizeText("<b>HDFC</b> Top 100"))
	assert.Equal(t, "", SanitizeText("<script>alert(1)</script>"))
	assert.Equal(t, "12345/67", SanitizeText("12345/67\x00"))
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "a\tb\nc", StripUnprintable("a\tb\nc\x07"))
	assert.Equal(t, "plain", StripUnprintable("plain"))
}
