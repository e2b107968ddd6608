package proxy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSocksClient_Direct(t *testing.T) {
	c, err := NewSocksClient("")
	require.NoError(t, err)
	assert.Nil(t, c.Transport)
}

func TestNewSocksClient_UnreachableProxy(t *testing.T) {
	c, err := NewSocksClient("127.0.0.1:1")
	require.NoError(t, err)
	require.IsType(t, &http.Transport{}, c.Transport)

	_, err = c.Get("http://example.invalid/")
	assert.Error(t, err)
}
