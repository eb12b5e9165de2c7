package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDoctorName(t *testing.T) {
	cases := map[string]string{
		"Dr. Jane Mouabbi":    "mouabbi",
		"dr rimawi":           "rimawi",
		"Drs. Hamilton":       "hamilton",
		"Maria O'Shaughnessy": "o'shaughnessy",
		"Sarah Chen, MD":      "chen",
		"  ":                  "",
		"Singleword":          "singleword",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDoctorName(in), "input %q", in)
	}
}

func TestExtractSurnamesFromGroupName(t *testing.T) {
	got := ExtractSurnamesFromGroupName("Mouabbi/Rimawi")
	assert.True(t, got["mouabbi"])
	assert.True(t, got["rimawi"])

	got = ExtractSurnamesFromGroupName("Hamilton & Chen and Walker")
	assert.True(t, got["hamilton"])
	assert.True(t, got["chen"])
	assert.True(t, got["walker"])

	// Short fragments are noise and must be dropped.
	got = ExtractSurnamesFromGroupName("Ng / Li")
	assert.Empty(t, got)
}
