package safeio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"b.xlsx", "a.XLSM", "c.xls", "notes.txt", "~$b.xlsx"} {
		writeFile(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0o755))

	var messages []string
	files := Discover(dir, func(msg string) { messages = append(messages, msg) })

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	require.Equal(t, []string{"a.XLSM", "b.xlsx", "c.xls"}, names)

	require.Len(t, messages, 1)
	require.Contains(t, messages[0], "~$b.xlsx")
}

func TestDiscoverMissingDirectory(t *testing.T) {
	var messages []string
	files := Discover(filepath.Join(t.TempDir(), "nope"), func(msg string) { messages = append(messages, msg) })

	require.Empty(t, files)
	require.Len(t, messages, 1)
	require.Contains(t, messages[0], "Директория не существует")
}

func TestDiscoverNotADirectory(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "plain.xlsx"))

	var messages []string
	files := Discover(file, func(msg string) { messages = append(messages, msg) })

	require.Empty(t, files)
	require.Len(t, messages, 1)
	require.Contains(t, messages[0], "не является директорией")
}

func TestDiscoverDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.xlsx", "a.xlsx", "m.xlsx"} {
		writeFile(t, filepath.Join(dir, name))
	}

	first := Discover(dir, nil)
	second := Discover(dir, nil)
	require.Equal(t, first, second)
	require.True(t, strings.HasSuffix(first[0], "a.xlsx"))
}
