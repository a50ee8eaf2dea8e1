package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("file values fill unset variables only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("FLOWISEAI_MCP_DOTENV_A=from-file\nFLOWISEAI_MCP_DOTENV_B=from-file\n"), 0o600))

		t.Setenv("FLOWISEAI_MCP_DOTENV_A", "from-env")
		t.Setenv("FLOWISEAI_MCP_DOTENV_B", "")
		require.NoError(t, os.Unsetenv("FLOWISEAI_MCP_DOTENV_B"))

		require.NoError(t, LoadDotEnv(path))
		assert.Equal(t, "from-env", os.Getenv("FLOWISEAI_MCP_DOTENV_A"))
		assert.Equal(t, "from-file", os.Getenv("FLOWISEAI_MCP_DOTENV_B"))
	})
}
