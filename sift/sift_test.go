package sift_test

import (
	"testing"

	"github.com/primo-ppcg/bf-jit/sift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes_DropsNonTokens(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"comment text", "this is a comment +++ and this too", "+++"},
		{"whitespace", "+ + - -\n< >\t.,", "++--<>.,"},
		{"all tokens", "+-<>.,[]", "+-<>.,[]"},
		{"empty", "", ""},
		{"no tokens", "hello world", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := sift.Bytes([]byte(tc.src))
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestBytes_Idempotent(t *testing.T) {
	srcs := []string{
		"",
		"Hello, World! This is brainfuck: ++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.",
		"no brainfuck here at all",
	}
	for _, src := range srcs {
		once := sift.Bytes([]byte(src))
		twice := sift.Bytes(once)
		require.Equal(t, once, twice, "sift(sift(s)) must equal sift(s)")
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, []byte("+-"), sift.String("a+b-c"))
}
