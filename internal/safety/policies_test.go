package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreamble(t *testing.T) {
	require.Equal(t, defaultPreamble, Preamble(""))

	p := Preamble("medical")
	require.True(t, strings.Contains(p, "diagnosis"))
	require.True(t, strings.Contains(p, "appointment availability"))

	// unknown vertical yields an empty policy, not the default
	require.Equal(t, "", Preamble("finance"))
}

func TestRefusalsFor(t *testing.T) {
	require.Len(t, RefusalsFor("food"), 2)
	require.Len(t, RefusalsFor("trades"), 2)
	require.Nil(t, RefusalsFor("nope"))
}
