package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

// Section order in the generated reference. Tools whose name prefix is not
// listed end up under "Other".
var toolSections = []struct {
	prefix, title string
}{
	{"gmail", "Gmail Tools"},
	{"classify", "Classification Tools"},
}

const otherSection = "Other"

func newGenerateDocsCmd(root *rootOptions) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Print a markdown reference of the MCP tools, built from the registered
tool definitions so it always matches what the server exposes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerateDocs(cmd, root, outputFile)
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func runGenerateDocs(cmd *cobra.Command, root *rootOptions, outputFile string) error {
	// Tools are only listed, never called, so no credentials are needed.
	sc, err := newServerContext(context.Background(), root.cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv, err := newMCPServer(sc)
	if err != nil {
		return err
	}

	tools := make([]mcp.Tool, 0)
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}

	if outputFile == "" {
		writeToolsMarkdown(cmd.OutOrStdout(), tools)
		return nil
	}

	var sb strings.Builder
	writeToolsMarkdown(&sb, tools)
	if err := os.WriteFile(outputFile, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
	return nil
}

func toolCategory(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	for _, s := range toolSections {
		if s.prefix == prefix {
			return s.title
		}
	}
	return otherSection
}

func writeToolsMarkdown(w io.Writer, tools []mcp.Tool) {
	grouped := make(map[string][]mcp.Tool)
	for _, t := range tools {
		c := toolCategory(t.Name)
		grouped[c] = append(grouped[c], t)
	}

	var sections []string
	for _, s := range toolSections {
		if len(grouped[s.title]) > 0 {
			sections = append(sections, s.title)
		}
	}
	if len(grouped[otherSection]) > 0 {
		sections = append(sections, otherSection)
	}

	fmt.Fprint(w, "# MCP Tools Reference\n\n")
	fmt.Fprint(w, "Tools available when inboxsort runs as an MCP server. Generated from the tool definitions.\n\n")

	fmt.Fprint(w, "## Table of Contents\n\n")
	for _, s := range sections {
		fmt.Fprintf(w, "- [%s](#%s)\n", s, strings.ToLower(strings.ReplaceAll(s, " ", "-")))
	}
	fmt.Fprint(w, "\n## Credentials\n\n")
	fmt.Fprint(w, "The server holds no user credentials. Each call carries its own:\n\n")
	fmt.Fprint(w, "- `gmail_fetch_messages` takes a Google OAuth `access_token` with the gmail.readonly scope\n")
	fmt.Fprint(w, "- `classify_messages` takes the model API key as `openai_key`\n\n")

	for _, s := range sections {
		list := grouped[s]
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

		fmt.Fprintf(w, "## %s\n\n", s)
		for _, t := range list {
			writeToolMarkdown(w, t)
		}
	}
}

func writeToolMarkdown(w io.Writer, tool mcp.Tool) {
	fmt.Fprintf(w, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(w, "%s\n\n", tool.Description)
	}

	props := tool.InputSchema.Properties
	if len(props) > 0 {
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprint(w, "**Arguments:**\n")
		for _, name := range names {
			prop, ok := props[name].(map[string]any)
			if !ok {
				continue
			}
			typ, _ := prop["type"].(string)
			if typ == "" {
				typ = "any"
			}
			need := "optional"
			if slices.Contains(tool.InputSchema.Required, name) {
				need = "required"
			}
			desc, _ := prop["description"].(string)
			fmt.Fprintf(w, "- `%s` (%s, %s): %s\n", name, typ, need, desc)
		}
		fmt.Fprint(w, "\n")
	}
	fmt.Fprint(w, "\n")
}
