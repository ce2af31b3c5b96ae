package fancy

import (
	"strings"
	"testing"

	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
	"github.com/stretchr/testify/assert"
)

func TestTree(t *testing.T) {
	tree := Tree()
	assert.NotNil(t, tree)

	tree.Root("Root Node")
	child := tree.Child("Child Node")
	child.Child("Grandchild")

	out := tree.String()
	assert.Contains(t, out, "Root Node")
	assert.Contains(t, out, "Child Node")
	assert.Contains(t, out, "Grandchild")
}

func TestBranchNode(t *testing.T) {
	out := BranchNode("Arguments", "(5)").String()
	assert.Contains(t, out, "Arguments")
	assert.Contains(t, out, "(5)")
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{"shorter than max", "Short string", 20, "Short string"},
		{"exactly max", "Exactly twenty chars", 20, "Exactly twenty chars"},
		{"longer than max", "This string is too long to fit", 10, "This st..."},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateString(tt.input, tt.maxLength))
		})
	}
}

func TestToolTree(t *testing.T) {
	reg := tools.Default()

	t.Run("lists every tool and argument", func(t *testing.T) {
		out := ToolTree(reg, false).String()

		assert.Contains(t, out, "DeployHQ MCP tools")
		assert.Contains(t, out, "(7)")
		for _, name := range reg.Names() {
			assert.Contains(t, out, name)
		}
		assert.Contains(t, out, "permalink")
		assert.Contains(t, out, "(string, required)")
		assert.Contains(t, out, "one of queue|preview")
		assert.Contains(t, out, "[mutating]")
		assert.NotContains(t, out, "[blocked: read-only]")
	})

	t.Run("marks mutating tools blocked in read-only mode", func(t *testing.T) {
		out := ToolTree(reg, true).String()
		assert.Contains(t, out, "[blocked: read-only]")
		assert.Equal(t, 1, strings.Count(out, "[blocked: read-only]"))
	})

	t.Run("required arguments come first", func(t *testing.T) {
		d, ok := reg.Lookup(tools.ListDeployments)
		assert.True(t, ok)
		out := toolNode(d, false).String()

		project := strings.Index(out, "project (string, required)")
		page := strings.Index(out, "page (integer)")
		server := strings.Index(out, "server_uuid (string)")
		assert.GreaterOrEqual(t, project, 0)
		assert.Less(t, project, page)
		assert.Less(t, page, server)
	})

	t.Run("tools without arguments have no argument branch", func(t *testing.T) {
		d, ok := reg.Lookup(tools.ListProjects)
		assert.True(t, ok)
		assert.NotContains(t, toolNode(d, false).String(), "Arguments")
	})
}
