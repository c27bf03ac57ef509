package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultName(t *testing.T) {
	req := require.New(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// Given no name was ever stored
	// When identity is loaded without an override
	id, err := Load("")
	req.NoError(err)

	// Then the fallback display name is used and a session id is assigned
	req.Equal(DefaultName, id.Username)
	req.NotEmpty(id.ID)
}

func TestLoad_OverridePersists(t *testing.T) {
	req := require.New(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// When identity is loaded with an override
	first, err := Load("Marta")
	req.NoError(err)
	req.Equal("Marta", first.Username)

	// Then a later load without an override reuses the stored name
	second, err := Load("")
	req.NoError(err)
	req.Equal("Marta", second.Username)

	// And every invocation gets a fresh participant id
	req.NotEqual(first.ID, second.ID)
}
