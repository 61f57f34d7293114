package cmd

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/teemow/boxmcp/internal/server"
)

const otherCategory = "Other"

// docsFs is where generate-docs writes --output. Tests use a memory fs.
var docsFs = afero.NewOsFs()

func newGenerateDocsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Render a markdown reference of every MCP tool, write tools included,
from the registered tool definitions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, err := listAllTools()
			if err != nil {
				return err
			}
			markdown := generateToolsMarkdown(tools)

			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), markdown)
				return err
			}
			if err := afero.WriteFile(docsFs, output, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// listAllTools registers every tool on a throwaway server. Clients are
// created on first use, so no credentials are needed.
func listAllTools() ([]mcp.Tool, error) {
	sc, err := server.NewServerContext(context.Background(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := mcpserver.NewMCPServer("boxmcp", version, mcpserver.WithToolCapabilities(true))
	if err := registerAllTools(mcpSrv, sc, false); err != nil {
		return nil, err
	}

	var tools []mcp.Tool
	for _, t := range mcpSrv.ListTools() {
		tools = append(tools, t.Tool)
	}
	return tools, nil
}

const docsPreamble = `# MCP Tools Reference

Every tool boxmcp registers when it runs as an MCP server.

**Note:** This file is generated by ` + "`boxmcp generate-docs`" + `. Do not edit it by hand.

`

const accountsSection = `## Multi-Account Support

Every tool takes an optional ` + "`account`" + ` argument naming a Box account from the configuration file.

- Without ` + "`account`" + ` the ` + "`default`" + ` account is used.
- The ` + "`default`" + ` account can also be configured with ` + "`BOX_*`" + ` environment variables.
- Write operations are only registered when the server runs with ` + "`--yolo`" + `.

`

func generateToolsMarkdown(tools []mcp.Tool) string {
	byCategory := map[string][]mcp.Tool{}
	for _, t := range tools {
		c := getCategoryFromToolName(t.Name)
		byCategory[c] = append(byCategory[c], t)
	}
	categories := slices.Sorted(maps.Keys(byCategory))

	var sb strings.Builder
	sb.WriteString(docsPreamble)

	sb.WriteString("## Table of Contents\n\n")
	for _, c := range categories {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", c, strings.ToLower(strings.ReplaceAll(c, " ", "-")))
	}
	sb.WriteString("\n")
	sb.WriteString(accountsSection)

	for _, c := range categories {
		group := byCategory[c]
		slices.SortFunc(group, func(a, b mcp.Tool) int { return strings.Compare(a.Name, b.Name) })

		fmt.Fprintf(&sb, "## %s\n\n", c)
		for _, t := range group {
			writeToolMarkdown(&sb, t)
		}
	}
	return sb.String()
}

// getCategoryFromToolName maps box_<group>_<operation> to its section.
func getCategoryFromToolName(name string) string {
	prefix, rest, ok := strings.Cut(name, "_")
	if !ok || prefix != "box" {
		return otherCategory
	}
	group, _, _ := strings.Cut(rest, "_")
	switch group {
	case "tasks":
		return "Box Tasks Tools"
	case "collections":
		return "Box Collections Tools"
	}
	return otherCategory
}

func writeToolMarkdown(sb *strings.Builder, t mcp.Tool) {
	fmt.Fprintf(sb, "### %s\n\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(sb, "%s\n\n", t.Description)
	}
	if hint := t.Annotations.ReadOnlyHint; hint == nil || !*hint {
		sb.WriteString("_Write operation, requires `--yolo`._\n\n")
	}

	props := t.InputSchema.Properties
	if len(props) == 0 {
		sb.WriteString("\n")
		return
	}

	sb.WriteString("**Arguments:**\n")
	for _, name := range slices.Sorted(maps.Keys(props)) {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		presence := "optional"
		if slices.Contains(t.InputSchema.Required, name) {
			presence = "required"
		}
		desc, _ := prop["description"].(string)
		if desc == "" {
			typ, _ := prop["type"].(string)
			desc = cmp.Or(typ, "any") + " parameter"
		}
		fmt.Fprintf(sb, "- `%s` (%s): %s\n", name, presence, desc)
	}
	sb.WriteString("\n\n")
}
