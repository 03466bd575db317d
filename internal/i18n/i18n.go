// ABOUTME: Localized message tables for the bot conversation and reports.
// ABOUTME: Tables are embedded YAML; missing keys fall back to English.
package i18n

import (
	"embed"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/gymbot/internal/models"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Params holds placeholder values for a message template.
type Params = map[string]any

// Command is a bot command alias declared by a locale.
type Command struct {
	Command     string `yaml:"command"`
	Action      string `yaml:"action"`
	Description string `yaml:"description"`
}

type locale struct {
	Label         string            `yaml:"label"`
	Commands      []Command         `yaml:"commands"`
	Groups        map[string]string `yaml:"groups"`
	ExerciseTerms map[string]string `yaml:"exercise_terms"`
	Messages      map[string]string `yaml:"messages"`

	terms *termRule
}

// termRule matches every exercise term in one pass so a replacement is
// never translated twice.
type termRule struct {
	pattern      *regexp.Regexp
	replacements map[string]string
}

// Translator renders messages in any supported language.
type Translator struct {
	locales map[models.Language]*locale
}

// Load parses the embedded locale tables.
func Load() (*Translator, error) {
	t := &Translator{locales: make(map[models.Language]*locale, len(models.SupportedLanguages))}
	for _, lang := range models.SupportedLanguages {
		raw, err := localeFS.ReadFile("locales/" + string(lang) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", lang, err)
		}
		var loc locale
		if err := yaml.Unmarshal(raw, &loc); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", lang, err)
		}
		loc.terms = compileTerms(loc.ExerciseTerms)
		t.locales[lang] = &loc
	}
	return t, nil
}

// MustLoad is Load for package init and tests; the tables are compiled in.
func MustLoad() *Translator {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Languages returns the supported languages in menu order.
func (t *Translator) Languages() []models.Language {
	out := make([]models.Language, len(models.SupportedLanguages))
	copy(out, models.SupportedLanguages)
	return out
}

// Label is the human name of a language, in that language.
func (t *Translator) Label(lang models.Language) string {
	if loc, ok := t.locales[lang]; ok && loc.Label != "" {
		return loc.Label
	}
	return string(lang)
}

// Text renders key in lang, substituting {name} placeholders from params.
// Unknown keys render as the key itself.
func (t *Translator) Text(lang models.Language, key string, params Params) string {
	tmpl, ok := t.lookup(lang, key)
	if !ok {
		return key
	}
	if len(params) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", formatValue(value))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Has reports whether lang defines key itself, without fallback.
func (t *Translator) Has(lang models.Language, key string) bool {
	loc, ok := t.locales[lang]
	if !ok {
		return false
	}
	_, ok = loc.Messages[key]
	return ok
}

func (t *Translator) lookup(lang models.Language, key string) (string, bool) {
	if loc, ok := t.locales[lang]; ok {
		if msg, ok := loc.Messages[key]; ok {
			return msg, true
		}
	}
	msg, ok := t.locales[models.DefaultLanguage].Messages[key]
	return msg, ok
}

// Group translates a muscle group name for display.
func (t *Translator) Group(lang models.Language, group string) string {
	if loc, ok := t.locales[lang]; ok {
		if name, ok := loc.Groups[group]; ok {
			return name
		}
	}
	return group
}

// Groups translates a list of group names and joins them for display.
func (t *Translator) Groups(lang models.Language, groups []string) string {
	if len(groups) == 0 {
		return t.Text(lang, "none_yet", nil)
	}
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = t.Group(lang, g)
	}
	return strings.Join(names, ", ")
}

// Exercise translates the well-known terms inside an exercise name.
// Names are stored in English; this only affects display.
func (t *Translator) Exercise(lang models.Language, name string) string {
	loc, ok := t.locales[lang]
	if !ok || loc.terms == nil {
		return name
	}
	return loc.terms.pattern.ReplaceAllStringFunc(name, func(match string) string {
		return loc.terms.replacements[strings.ToLower(match)]
	})
}

// Commands returns every command alias across all locales, deduplicated by command name.
func (t *Translator) Commands() []Command {
	seen := make(map[string]bool)
	var out []Command
	for _, lang := range models.SupportedLanguages {
		for _, cmd := range t.locales[lang].Commands {
			if seen[cmd.Command] {
				continue
			}
			seen[cmd.Command] = true
			out = append(out, cmd)
		}
	}
	return out
}

// LocaleCommands returns the command menu for one language.
func (t *Translator) LocaleCommands(lang models.Language) []Command {
	loc, ok := t.locales[lang]
	if !ok {
		loc = t.locales[models.DefaultLanguage]
	}
	out := make([]Command, len(loc.Commands))
	copy(out, loc.Commands)
	return out
}

// compileTerms orders alternatives longest first so "Bench Press" wins over "Press".
func compileTerms(terms map[string]string) *termRule {
	if len(terms) == 0 {
		return nil
	}
	keys := make([]string, 0, len(terms))
	repl := make(map[string]string, len(terms))
	for k, v := range terms {
		keys = append(keys, k)
		repl[strings.ToLower(k)] = v
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return &termRule{
		pattern:      regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
		replacements: repl,
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', 2, 64)
	case *float64:
		if val == nil {
			return "-"
		}
		return strconv.FormatFloat(*val, 'f', 2, 64)
	case string:
		return val
	default:
		return fmt.Sprint(v)
	}
}
