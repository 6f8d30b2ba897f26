// ABOUTME: Built-in prompt styles for image description, with YAML file overrides.
// ABOUTME: A style names a reusable prompt; user files can replace built-ins or add new ones.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// builtinStyles are the prompt styles shipped with the tool.
var builtinStyles = map[string]string{
	"detailed": "Describe this image in detail. Cover the main subjects, their actions, " +
		"the setting, notable objects, colors, and any visible text. Write 3-5 sentences.",
	"concise": "Describe this image in one or two short sentences covering only the " +
		"main subject and setting.",
	"narrative": "Describe this image as if telling part of a story: who or what is " +
		"present, what seems to be happening, and the mood of the scene.",
	"technical": "Describe this image factually and precisely: subjects, composition, " +
		"lighting, camera angle, and any text or identifiable objects. Avoid speculation.",
}

// Styles is a named collection of prompt styles.
type Styles struct {
	prompts map[string]string
}

// LoadStyles returns the built-in styles, overlaid with entries from the
// given YAML file when path is non-empty. The file maps style names to prompt
// text; entries replace built-ins with the same name.
func LoadStyles(path string) (*Styles, error) {
	prompts := make(map[string]string, len(builtinStyles))
	for name, prompt := range builtinStyles {
		prompts[name] = prompt
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompts file %s: %w", path, err)
		}
		var overrides map[string]string
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
		}
		for name, prompt := range overrides {
			if strings.TrimSpace(prompt) == "" {
				return nil, fmt.Errorf("prompts file %s: style %q has empty prompt", path, name)
			}
			prompts[name] = prompt
		}
	}

	return &Styles{prompts: prompts}, nil
}

// Prompt returns the prompt text for a style name.
func (s *Styles) Prompt(name string) (string, error) {
	prompt, ok := s.prompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt style %q (available: %s)", name, strings.Join(s.Names(), ", "))
	}
	return prompt, nil
}

// Names returns all style names, sorted.
func (s *Styles) Names() []string {
	names := make([]string, 0, len(s.prompts))
	for name := range s.prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
