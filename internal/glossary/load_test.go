package glossary_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robalyx/deeplweb/internal/glossary"
	"github.com/robalyx/deeplweb/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGlossary(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "glossary.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeGlossary(t, `
source_language = "en"
target_language = "fr"

[[terms]]
source = "server"
target = "serveur"

[[terms]]
source = "cloud"
target = "nuage"
`)

	g, err := glossary.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "EN", g.SourceLanguage)
	assert.Equal(t, "FR", g.TargetLanguage)
	assert.Equal(t, []glossary.Entry{
		{Source: "cloud", Target: "nuage"},
		{Source: "server", Target: "serveur"},
	}, g.Entries)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		expectedErr error
	}{
		{
			name: "missing header",
			content: `
[[terms]]
source = "cloud"
target = "nuage"
`,
			expectedErr: rpc.ErrGlossaryHeaderMalformed,
		},
		{
			name: "incomplete term",
			content: `
source_language = "EN"
target_language = "FR"

[[terms]]
source = "cloud"
`,
			expectedErr: rpc.ErrGlossaryHeaderMalformed,
		},
		{
			name: "unsupported combination",
			content: `
source_language = "EN"
target_language = "KO"
`,
			expectedErr: rpc.ErrGlossaryCombinationUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := glossary.Load(writeGlossary(t, tt.content))
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := glossary.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, glossary.ErrNotFound)
}
