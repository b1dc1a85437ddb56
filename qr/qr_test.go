package qr_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/refrank/go-refrank/qr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURIIsPNG(t *testing.T) {
	uri, err := qr.NewEncoder().DataURI("https://app.example.com/signup?business=BUS-2024-001&rank=Gold")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4])
}

func TestDataURIDeterministic(t *testing.T) {
	e := qr.NewEncoder()
	link := "https://app.example.com/signup?business=BUS-2024-001&rank=Gold"

	first, err := e.DataURI(link)
	require.NoError(t, err)
	second, err := e.DataURI(link)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	renamed, err := e.DataURI("https://app.example.com/signup?business=BUS-2024-001&rank=Platinum")
	require.NoError(t, err)
	assert.NotEqual(t, first, renamed)
}

func TestDataURIRejectsEmptyText(t *testing.T) {
	_, err := qr.NewEncoder().DataURI("")
	assert.Error(t, err)
}
