package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageWritesAndCleansUp(t *testing.T) {
	base := t.TempDir()
	s := NewStagingService(base)

	path, cleanup, err := s.Stage(strings.NewReader("%PDF-1.4 content"), "paper.pdf")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 content", string(data))

	cleanup()
	_, err = os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(err), "staging directory must be removed by cleanup")

	// Calling cleanup again must be harmless.
	cleanup()
}

func TestStageNeverCollides(t *testing.T) {
	base := t.TempDir()
	s := NewStagingService(base)

	pathA, cleanupA, err := s.Stage(strings.NewReader("a"), "same.pdf")
	require.NoError(t, err)
	defer cleanupA()
	pathB, cleanupB, err := s.Stage(strings.NewReader("b"), "same.pdf")
	require.NoError(t, err)
	defer cleanupB()

	assert.NotEqual(t, pathA, pathB)

	a, err := os.ReadFile(pathA)
	require.NoError(t, err)
	b, err := os.ReadFile(pathB)
	require.NoError(t, err)
	assert.Equal(t, "a", string(a))
	assert.Equal(t, "b", string(b))
}

func TestStageSanitizesFileName(t *testing.T) {
	base := t.TempDir()
	s := NewStagingService(base)

	path, cleanup, err := s.Stage(strings.NewReader("x"), "../weird name!.pdf")
	require.NoError(t, err)
	defer cleanup()

	name := filepath.Base(path)
	assert.Equal(t, "weird_name_.pdf", name)
	// The staged file must stay inside the staging area.
	rel, err := filepath.Rel(base, path)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(rel, ".."))
}

func TestStageFailsOnUnwritableBase(t *testing.T) {
	// Using a regular file as the base directory makes MkdirAll fail on
	// every platform, regardless of the user we run as.
	base := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(base, []byte("x"), 0644))

	s := NewStagingService(base)
	_, cleanup, err := s.Stage(strings.NewReader("x"), "paper.pdf")
	assert.Error(t, err)
	assert.Nil(t, cleanup)
}
