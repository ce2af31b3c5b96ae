// Package fancy provides pretty printing utilities and styling for CLI output
package fancy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// DescriptionWidth is where tool descriptions are cut in a ToolTree.
const DescriptionWidth = 72

// Tree returns a new tree with common styling applied
func Tree() *tree.Tree {
	t := tree.New()
	t.EnumeratorStyle(BranchStyle)
	t.Enumerator(tree.RoundedEnumerator)
	return t
}

// BranchNode creates a styled section header node
func BranchNode(title string, count string) *tree.Tree {
	return tree.New().Root(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			HeaderStyle.Render(title),
			" ",
			InfoStyle.Render(count),
		),
	)
}

// TruncateString truncates a string if it exceeds maxLength
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}

// ToolTree renders every tool in reg with its arguments. When readOnly is
// set, mutating tools are marked as blocked.
func ToolTree(reg *tools.Registry, readOnly bool) *tree.Tree {
	root := Tree().Root(
		RootStyle.Render("DeployHQ MCP tools") + " " + CountText(fmt.Sprintf("(%d)", reg.Len())),
	)

	for _, d := range reg.List() {
		root.Child(toolNode(d, readOnly))
	}
	return root
}

func toolNode(d *tools.Descriptor, readOnly bool) *tree.Tree {
	name := ToolText(d.Name)
	if d.Mutating {
		name = MutatingText(d.Name)
		if readOnly {
			name += " " + ErrorText("[blocked: read-only]")
		} else {
			name += " " + InfoStyle.Render("[mutating]")
		}
	}

	node := Tree().Root(name)
	node.Child(InfoStyle.Render(TruncateString(d.Description, DescriptionWidth)))

	if d.Schema == nil || len(d.Schema.Properties) == 0 {
		return node
	}

	args := BranchNode("Arguments", fmt.Sprintf("(%d)", len(d.Schema.Properties)))
	args.EnumeratorStyle(BranchStyle)
	args.Enumerator(tree.RoundedEnumerator)

	names := make([]string, 0, len(d.Schema.Properties))
	for p := range d.Schema.Properties {
		names = append(names, p)
	}
	// required first, then alphabetical
	slices.SortFunc(names, func(a, b string) int {
		ra, rb := slices.Contains(d.Schema.Required, a), slices.Contains(d.Schema.Required, b)
		if ra != rb {
			if ra {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})

	for _, p := range names {
		args.Child(argumentLine(p, d))
	}
	node.Child(args)
	return node
}

func argumentLine(name string, d *tools.Descriptor) string {
	prop := d.Schema.Properties[name]
	parts := []string{prop.Type}
	if slices.Contains(d.Schema.Required, name) {
		parts = append(parts, "required")
	}
	if len(prop.Enum) > 0 {
		values := make([]string, len(prop.Enum))
		for i, v := range prop.Enum {
			values[i] = fmt.Sprint(v)
		}
		parts = append(parts, "one of "+strings.Join(values, "|"))
	}
	return ArgumentText(name) + " " + InfoStyle.Render("("+strings.Join(parts, ", ")+")")
}
