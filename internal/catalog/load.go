// ABOUTME: Catalog loaders for YAML files and illustration directories.
// ABOUTME: Loaders fall back to nothing; callers decide whether to use Default.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk YAML layout:
//
//	bodyweight_exercises: true
//	groups:
//	  Chest:
//	    - Bench Press
//	    - name: Dips
//	      illustration: /srv/gymbot/chest/dips.png
type fileFormat struct {
	Bodyweight bool                  `yaml:"bodyweight_exercises"`
	Groups     map[string][]Exercise `yaml:"groups"`
}

// UnmarshalYAML accepts either a bare exercise name or a mapping.
func (e *Exercise) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Name = node.Value
		return nil
	}
	type plain Exercise
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = Exercise(p)
	return nil
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	c, err := New(f.Groups, WithBodyweight(f.Bodyweight))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

var imageSuffixes = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

// Group overview images that share a folder with the exercises.
var excludedStems = map[string]bool{
	"chest": true, "abs": true, "back": true, "biceps": true,
	"calves": true, "legs": true, "shoulders": true, "triceps": true,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// bodyweightGuide is the file whose presence enables the bodyweight shortcut.
const bodyweightGuide = "exercises with body weight.pdf"

// LoadDir builds a catalog from a directory holding one folder per muscle
// group with one image per exercise.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	groups := make(map[string][]Exercise)
	bodyweight := false
	for _, entry := range entries {
		if !entry.IsDir() {
			if strings.ToLower(entry.Name()) == bodyweightGuide {
				bodyweight = true
			}
			continue
		}
		group := canonicalGroupName(entry.Name())
		groupDir := filepath.Join(dir, entry.Name())
		files, err := os.ReadDir(groupDir)
		if err != nil {
			return nil, fmt.Errorf("read group dir %s: %w", groupDir, err)
		}
		sort.Slice(files, func(i, j int) bool {
			return strings.ToLower(files[i].Name()) < strings.ToLower(files[j].Name())
		})
		for _, f := range files {
			ext := strings.ToLower(filepath.Ext(f.Name()))
			if f.IsDir() || !imageSuffixes[ext] {
				continue
			}
			stem := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
			key := normalizeKey(stem)
			if key == "" || key == normalizeKey(group) || excludedStems[key] {
				continue
			}
			groups[group] = append(groups[group], Exercise{
				Name:         prettyName(stem),
				Illustration: filepath.Join(groupDir, f.Name()),
			})
		}
	}
	c, err := New(groups, WithBodyweight(bodyweight))
	if err != nil {
		return nil, fmt.Errorf("catalog dir %s: %w", dir, err)
	}
	return c, nil
}

func normalizeKey(s string) string {
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(s), " "))
}

func prettyName(stem string) string {
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return strings.Join(strings.Fields(stem), " ")
}

func canonicalGroupName(raw string) string {
	name := prettyName(raw)
	if strings.HasSuffix(strings.ToLower(name), " exercise") {
		name = strings.TrimSpace(name[:len(name)-len(" exercise")])
	}
	parts := strings.Fields(name)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}
