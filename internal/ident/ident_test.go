package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"test.txt", "test_txt"},
		{"my-file.tar.gz", "my_file_tar_gz"},
		{"a,b", "a_b"},
		{"plain", "plain"},
		{"", ""},
		{"...", "___"},
		{"1st.txt", "1st_txt"},
		{"with space.txt", "with space_txt"},
		{"ünïcode-name", "ünïcode_name"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.raw), "Sanitize(%q)", tt.raw)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{"a.b-c,d", "___", "x", "", "logo.min.svg", "-.,"}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "Sanitize not idempotent for %q", in)
	}
}

func TestSanitize_DistinctInputsMayCollide(t *testing.T) {
	// No collision detection happens here.
	assert.Equal(t, Sanitize("a.b"), Sanitize("a-b"))
}

func TestExport(t *testing.T) {
	assert.Equal(t, "Test_txt", Export("test_txt"))
	assert.Equal(t, "Already", Export("Already"))
	assert.Equal(t, "_private", Export("_private"))
	assert.Equal(t, "1_txt", Export("1_txt"))
	assert.Equal(t, "Élan", Export("élan"))
	assert.Equal(t, "", Export(""))
}

func TestUnexport(t *testing.T) {
	assert.Equal(t, "res", Unexport("Res"))
	assert.Equal(t, "res", Unexport("res"))
	assert.Equal(t, "", Unexport(""))
}

func TestIsExported(t *testing.T) {
	assert.True(t, IsExported("Res"))
	assert.False(t, IsExported("res"))
	assert.False(t, IsExported("_Res"))
	assert.False(t, IsExported(""))
}
