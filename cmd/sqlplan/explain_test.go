package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const catalogYAML = `
databases:
  - name: mydb
    tables:
      - name: emp
        columns:
          - {name: id, type: INT64}
          - {name: dept, type: TEXT, nullable: true}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "sqlplan")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func runCommand(args []string, stdin string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExplain(t *testing.T) {
	require := require.New(t)
	catalog := writeFile(t, "catalog.yaml", catalogYAML)

	out, err := runCommand([]string{"explain", "--catalog", catalog, "SELECT dept FROM emp WHERE id = 1"}, "")
	require.NoError(err)
	require.Contains(out, "Fetch(mydb.emp)")
	require.Contains(out, "Subset")

	out, err = runCommand([]string{"explain", "--catalog", catalog, "--db", "mydb", "-"}, "SELECT id FROM emp ORDER BY id")
	require.NoError(err)
	require.Contains(out, "Sort")
}

func TestExplainCaseInsensitive(t *testing.T) {
	require := require.New(t)
	catalog := writeFile(t, "catalog.yaml", catalogYAML)
	config := writeFile(t, "config.yaml", "case_insensitive: true\n")

	_, err := runCommand([]string{"explain", "--catalog", catalog, "SELECT ID FROM EMP"}, "")
	require.Error(err)

	_, err = runCommand([]string{"explain", "--catalog", catalog, "--config", config, "SELECT ID FROM EMP"}, "")
	require.NoError(err)

	_, err = runCommand([]string{"explain", "--catalog", catalog, "--case-insensitive", "SELECT ID FROM EMP"}, "")
	require.NoError(err)
}

func TestExplainErrors(t *testing.T) {
	catalog := writeFile(t, "catalog.yaml", catalogYAML)

	testCases := []struct {
		name string
		args []string
	}{
		{"missing catalog flag", []string{"explain", "SELECT 1"}},
		{"missing query", []string{"explain", "--catalog", catalog}},
		{"unknown catalog file", []string{"explain", "--catalog", catalog + ".nope", "SELECT id FROM emp"}},
		{"unknown table", []string{"explain", "--catalog", catalog, "SELECT id FROM nope"}},
		{"unknown database", []string{"explain", "--catalog", catalog, "--db", "nope", "SELECT id FROM emp"}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(tt.args, "")
			require.Error(t, err)
		})
	}
}
