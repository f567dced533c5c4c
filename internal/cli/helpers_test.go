package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pablasso/specflow/internal/testutil"
	"github.com/spf13/cobra"
)

// chdirTemp switches into a fresh git repository for the duration of the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	return testutil.SetupGitRepo(t)
}

// initWorkspace runs init in a fresh directory and returns the root.
func initWorkspace(t *testing.T) string {
	t.Helper()
	root := chdirTemp(t)
	if err := runInit(newTestCmd(nil), nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}
	return root
}

// newTestCmd returns a command whose output is captured in out.
func newTestCmd(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	if out == nil {
		out = &bytes.Buffer{}
	}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(""))
	return cmd
}

func writeTasks(t *testing.T, root, feature, content string) {
	t.Helper()
	testutil.WriteFeatureDoc(t, root, feature, "tasks.md", content)
}

func readTasks(t *testing.T, root, feature string) string {
	t.Helper()
	return testutil.ReadFile(t, filepath.Join(root, ".specflow", "specs", feature, "tasks.md"))
}
