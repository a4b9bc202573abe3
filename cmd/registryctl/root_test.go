package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFixtures(t *testing.T) (dir, animalsCSV, vaccinesCSV string) {
	t.Helper()
	dir = t.TempDir()
	t.Chdir(dir) // config.Load busca .env en el cwd

	rex := uuid.NewString()
	animalsCSV = filepath.Join(dir, "animals.csv")
	vaccinesCSV = filepath.Join(dir, "vaccines.csv")
	require.NoError(t, os.WriteFile(animalsCSV, []byte(rex+";Rex;3\nbroken\n"+uuid.NewString()+";Milo;2\n"), 0o644))
	require.NoError(t, os.WriteFile(vaccinesCSV, []byte(rex+";120;Pfizer;2024-01-01\n"), 0o644))
	return dir, animalsCSV, vaccinesCSV
}

func TestReport_PrintsExpiredLines(t *testing.T) {
	dir, a, v := writeFixtures(t)
	outFile := filepath.Join(dir, "expired.txt")

	out, err := runCLI(t, "report", "--animals", a, "--vaccines", v, "--at", "2025-06-01", "--out", outFile)
	require.NoError(t, err)
	assert.Equal(t, "Rex has Pfizer of 120 ml expired on 2025-01-01\n", out)

	b, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, out, string(b))
}

func TestReport_Errors(t *testing.T) {
	_, a, _ := writeFixtures(t)

	_, err := runCLI(t, "report", "--animals", a, "--at", "01/06/2025")
	assert.Error(t, err)

	_, err = runCLI(t, "report")
	assert.Error(t, err)

	_, err = runCLI(t, "report", "--animals", "nope.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestConvert_CSVToSnapshotAndBack(t *testing.T) {
	dir, a, v := writeFixtures(t)
	snap := filepath.Join(dir, "registry.bin")

	out, err := runCLI(t, "convert", "--animals", a, "--vaccines", v, "--to-snapshot", snap)
	require.NoError(t, err)
	assert.Equal(t, "2 animals written\n", out)

	back := filepath.Join(dir, "back.csv")
	backVac := filepath.Join(dir, "back-vaccines.csv")
	_, err = runCLI(t, "convert", "--snapshot", snap, "--to-animals", back, "--to-vaccines", backVac, "-d", ",")
	require.NoError(t, err)

	b, err := os.ReadFile(back)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], ",Rex,3"))

	b, err = os.ReadFile(backVac)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(b)), ",120,Pfizer,2024-01-01"))

	_, err = runCLI(t, "convert", "--snapshot", snap)
	assert.Error(t, err, "nothing to write")
}

func TestInspect_Formats(t *testing.T) {
	_, a, v := writeFixtures(t)

	out, err := runCLI(t, "inspect", "--animals", a, "--vaccines", v)
	require.NoError(t, err)
	assert.Contains(t, out, "Rex (3)")
	assert.Contains(t, out, "EXPIRED")
	assert.True(t, strings.HasSuffix(out, "2 animals\n"))

	out, err = runCLI(t, "inspect", "--animals", a, "-o", "yaml")
	require.NoError(t, err)
	var items []inspectAnimal
	require.NoError(t, yaml.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Milo", items[1].Name)

	_, err = runCLI(t, "inspect", "--animals", a, "-o", "xml")
	assert.Error(t, err)
}
