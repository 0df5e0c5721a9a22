// ABOUTME: install-skill command that places the embedded SKILL.md for Claude Code.
// ABOUTME: Reads the skill's name, description, and MCP tools from its own front matter and body.
package main

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

var (
	skillSkipConfirm bool
	skillPrint       bool
)

var skillToolRef = regexp.MustCompile("`mcp__wellness__([a-z_]+)`")

// skillDoc is the parsed embedded skill.
type skillDoc struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	raw         []byte
	tools       []string
}

func loadSkill() (*skillDoc, error) {
	raw, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded skill: %w", err)
	}
	return parseSkill(raw)
}

// parseSkill reads the YAML front matter and collects MCP tool references
// in order of first mention.
func parseSkill(raw []byte) (*skillDoc, error) {
	rest, ok := bytes.CutPrefix(raw, []byte("---\n"))
	if !ok {
		return nil, errors.New("skill: missing front matter")
	}
	front, body, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return nil, errors.New("skill: unterminated front matter")
	}

	doc := &skillDoc{raw: raw}
	if err := yaml.Unmarshal(front, doc); err != nil {
		return nil, fmt.Errorf("skill: parse front matter: %w", err)
	}
	if doc.Name == "" {
		return nil, errors.New("skill: front matter has no name")
	}

	seen := make(map[string]bool)
	for _, m := range skillToolRef.FindAllSubmatch(body, -1) {
		tool := string(m[1])
		if !seen[tool] {
			seen[tool] = true
			doc.tools = append(doc.tools, tool)
		}
	}
	return doc, nil
}

// summary is the first sentence of the description.
func (d *skillDoc) summary() string {
	if i := strings.Index(d.Description, ". "); i >= 0 {
		return d.Description[:i+1]
	}
	return d.Description
}

func (d *skillDoc) pathFor(home string) string {
	return filepath.Join(home, ".claude", "skills", d.Name, "SKILL.md")
}

// current reports whether path already holds this skill verbatim.
func (d *skillDoc) current(path string) bool {
	existing, err := os.ReadFile(path)
	return err == nil && bytes.Equal(existing, d.raw)
}

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install Claude Code skill",
	Long: `Install the wellness skill for Claude Code.

This copies the skill definition to ~/.claude/skills/wellness/
so Claude Code can log habits and check-ins contextually.
Use --print to write the skill to stdout instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if skillPrint {
			doc, err := loadSkill()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc.raw)
			return err
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		return installSkill(home, os.Stdin)
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	installSkillCmd.Flags().BoolVar(&skillPrint, "print", false, "Print the skill instead of installing it")
	rootCmd.AddCommand(installSkillCmd)
}

func skillPathFor(home string) string {
	doc, err := loadSkill()
	if err != nil {
		return filepath.Join(home, ".claude", "skills", "wellness", "SKILL.md")
	}
	return doc.pathFor(home)
}

func installSkill(home string, in io.Reader) error {
	doc, err := loadSkill()
	if err != nil {
		return err
	}
	skillPath := doc.pathFor(home)

	if doc.current(skillPath) {
		fmt.Printf("%s skill is already up to date at %s\n", doc.Name, skillPath)
		return nil
	}

	bold := color.New(color.Bold)
	fmt.Println(bold.Sprintf("%s skill for Claude Code", doc.Name))
	fmt.Println(doc.summary())
	fmt.Println()
	fmt.Printf("MCP tools it uses (%d):\n", len(doc.tools))
	for _, tool := range doc.tools {
		fmt.Printf("  • %s\n", tool)
	}
	fmt.Println()
	fmt.Println("Destination:")
	fmt.Printf("  %s\n", skillPath)
	fmt.Println()

	if _, err := os.Stat(skillPath); err == nil {
		fmt.Println(color.YellowString("Note: an older skill file exists and will be overwritten."))
		fmt.Println()
	}

	if !skillSkipConfirm {
		fmt.Printf("Install the %s skill? [y/N] ", doc.Name)
		response, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read response: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Installation canceled.")
			return nil
		}
		fmt.Println()
	}

	if err := os.MkdirAll(filepath.Dir(skillPath), 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(skillPath, doc.raw, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	color.Green("✓ Installed %s skill", doc.Name)
	fmt.Println("Try asking Claude: \"I meditated today\" or \"Does exercise help my mood?\"")
	return nil
}
