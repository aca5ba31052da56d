// Package artifact defines the kinds of customization artifacts cuco manages
// and the on-disk naming conventions shared by the registry, custom sources,
// and project target directories.
package artifact

import (
	"fmt"
	"strings"
)

// Type represents the kind of artifact
type Type string

const (
	TypeAgent        Type = "agent"
	TypePrompt       Type = "prompt"
	TypeInstructions Type = "instructions"
	TypeSkill        Type = "skill"
	TypeMCP          Type = "mcp"
	TypeBundle       Type = "bundle"
)

// SkillFilename is the standard filename for skill definitions
// (agentskills.io convention).
const SkillFilename = "SKILL.md"

// types maps the singular type name to its storage directory.
var types = map[Type]string{
	TypeAgent:        "agents",
	TypePrompt:       "prompts",
	TypeInstructions: "instructions",
	TypeSkill:        "skills",
	TypeMCP:          "mcps",
	TypeBundle:       "bundles",
}

// ParseType validates a singular type name as given on the command line.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := types[t]; !ok {
		return "", fmt.Errorf("unknown artifact type %q (valid: agent, prompt, instructions, skill, mcp, bundle)", s)
	}
	return t, nil
}

// Dir returns the subdirectory name this type is stored under
// (e.g. "agents" for TypeAgent).
func (t Type) Dir() string {
	return types[t]
}

// Key returns the identity key used by the provenance store.
func Key(t Type, name string) string {
	return string(t) + "/" + name
}

// FileSuffixes are the recognized single-file naming conventions, most
// specific last so CandidateNames tries the bare directory first.
var FileSuffixes = []string{".md", ".agent.md", ".prompt.md"}

// CandidateNames returns the filenames an artifact may resolve to inside a
// type directory, in fixed priority order: an exact-name directory models a
// multi-file artifact (skill), the suffix variants model typed single files.
func CandidateNames(name string) []string {
	return []string{
		name,
		name + ".md",
		name + ".agent.md",
		name + ".prompt.md",
	}
}

// HasFileSuffix reports whether path ends in a recognized single-file
// suffix convention.
func HasFileSuffix(path string) bool {
	for _, suffix := range FileSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// TrimSuffixes strips the recognized suffix conventions from a filename,
// returning the bare artifact name.
func TrimSuffixes(filename string) string {
	for _, suffix := range []string{".agent.md", ".prompt.md", ".md"} {
		if strings.HasSuffix(filename, suffix) {
			return strings.TrimSuffix(filename, suffix)
		}
	}
	return filename
}
