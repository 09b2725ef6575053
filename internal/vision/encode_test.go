package vision

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDataURI(t *testing.T) {
	uri, payloadLen, err := encodeDataURI(testImage())
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	payload := strings.TrimPrefix(uri, "data:image/png;base64,")
	assert.Equal(t, len(payload), payloadLen)

	decoded, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	// PNG signature
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, decoded[:4])
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t, "Describe this image in detail:", buildPrompt(DescribeOptions{}))
	assert.Equal(t, "Describe this image in detail:",
		buildPrompt(DescribeOptions{DocumentLanguage: "auto", UILanguage: "de"}))

	prompt := buildPrompt(DescribeOptions{DocumentLanguage: "ja", UILanguage: "en"})
	require.True(t, strings.HasPrefix(prompt, "Describe this image in detail:\n"))
	assert.Contains(t, prompt, "Japanese")
}
