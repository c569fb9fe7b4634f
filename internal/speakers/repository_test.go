package speakers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRepository_Load(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "speakers.json")
	req.NoError(os.WriteFile(path, []byte(`[
		{"slug": "alice", "name": "Alice Adams"},
		{"slug": "bob", "name": "Bob Brown"}
	]`), 0o644))

	repo, err := NewRepository(path)
	req.NoError(err)

	list := repo.List()
	req.Len(list, 2)
	req.Equal("alice", list[0].Slug)
	req.Equal("Alice Adams", list[0].Name)
}

func TestRepository_MissingFileYieldsEmptyList(t *testing.T) {
	req := require.New(t)
	repo, err := NewRepository(filepath.Join(t.TempDir(), "nope.json"))
	req.NoError(err)
	req.Empty(repo.List())
}

func TestRepository_MalformedFile(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "speakers.json")
	req.NoError(os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := NewRepository(path)
	req.Error(err)
}
