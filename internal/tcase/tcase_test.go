package tcase_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbachurski/taucheck/internal/tcase"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeZst(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return path
}

func TestDiscoverPairsByBaseName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "t1.in", "1\n")
	writeFile(t, dir, "t1.out", "2\n")
	writeFile(t, dir, "t2.in", "three\n")
	writeFile(t, dir, "t2.out", "four\n")
	// received outputs from an earlier run must not disturb discovery
	writeFile(t, dir, "t1.got", "stale\n")
	writeFile(t, dir, "notes.txt", "unrelated\n")

	cases, err := tcase.Discover(dir, dir)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "t1", cases[0].Base)
	assert.Equal(t, filepath.Join(dir, "t1.in"), cases[0].InputPath)
	assert.Equal(t, filepath.Join(dir, "t1.out"), cases[0].AnswerPath)
	assert.Equal(t, int64(2), cases[0].InputSize)
	assert.Equal(t, "t2", cases[1].Base)
	assert.Equal(t, int64(6), cases[1].InputSize)
}

func TestDiscoverSeparateOutputsDir(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeFile(t, inDir, "a.in", "in\n")
	writeFile(t, outDir, "a.out", "out\n")

	cases, err := tcase.Discover(inDir, outDir)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, filepath.Join(inDir, "a.in"), cases[0].InputPath)
	assert.Equal(t, filepath.Join(outDir, "a.out"), cases[0].AnswerPath)
}

func TestDiscoverCompressedFiles(t *testing.T) {
	dir := t.TempDir()
	writeZst(t, dir, "big.in.zst", "1 2 3\n")
	writeFile(t, dir, "big.out", "6\n")

	cases, err := tcase.Discover(dir, dir)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "big", cases[0].Base)
	assert.Equal(t, filepath.Join(dir, "big.in.zst"), cases[0].InputPath)

	content, err := tcase.ReadFile(cases[0].InputPath)
	require.NoError(t, err)
	assert.Equal(t, "1 2 3\n", string(content))
}

func TestDiscoverUnmatchedSidesFail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "t1.in", "")
	writeFile(t, dir, "t1.out", "")
	writeFile(t, dir, "t2.in", "")
	writeFile(t, dir, "t3.out", "")

	_, err := tcase.Discover(dir, dir)
	require.Error(t, err)

	var derr *tcase.DiscoveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, []string{"t2"}, derr.MissingAnswers)
	assert.Equal(t, []string{"t3"}, derr.MissingInputs)
	assert.Contains(t, err.Error(), "t2")
	assert.Contains(t, err.Error(), "t3")
}

func TestDiscoverAmbiguousPlainAndCompressed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "t1.in", "plain")
	writeZst(t, dir, "t1.in.zst", "compressed")
	writeFile(t, dir, "t1.out", "")

	_, err := tcase.Discover(dir, dir)
	var derr *tcase.DiscoveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, []string{"t1"}, derr.Duplicates)
}

func TestDiscoverEmptyDirFails(t *testing.T) {
	dir := t.TempDir()
	_, err := tcase.Discover(dir, dir)
	require.Error(t, err)
}

func TestDiscoverMissingDirFails(t *testing.T) {
	_, err := tcase.Discover(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
}
