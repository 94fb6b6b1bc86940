// Package styledoc extracts style-guide documentation from `///` comments
// in Sass stylesheets and writes it out as an HTML page and a JSON file.
//
// A run of `///` lines documents the next declaration it precedes:
//
//	/// Primary brand color.
//	/// @group colors
//	$brand: #0a66c2 !default;
//
// Variables, mixins, functions and placeholder selectors are recognized.
// `////` lines are file-level comments; a `@group` inside one applies to
// every item in the file that does not set its own group.
package styledoc

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

type Kind string

const (
	KindVariable    Kind = "variable"
	KindMixin       Kind = "mixin"
	KindFunction    Kind = "function"
	KindPlaceholder Kind = "placeholder"
)

// DefaultGroup holds items that name no group.
const DefaultGroup = "general"

type Param struct {
	Type        string `json:"type,omitempty"`
	Name        string `json:"name"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

type Return struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

type Example struct {
	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
	Code        string `json:"code"`
}

// Item is one documented declaration.
type Item struct {
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Value       string    `json:"value,omitempty"`
	Group       string    `json:"group"`
	Access      string    `json:"access"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type,omitempty"`
	Params      []Param   `json:"params,omitempty"`
	Return      *Return   `json:"return,omitempty"`
	Examples    []Example `json:"examples,omitempty"`
	Deprecated  *string   `json:"deprecated,omitempty"`
	Since       []string  `json:"since,omitempty"`
	See         []string  `json:"see,omitempty"`
	Author      []string  `json:"author,omitempty"`
	File        string    `json:"file"`
	Line        int       `json:"line"`
}

// Private reports whether the item is hidden from generated docs by default.
func (it Item) Private() bool {
	return it.Access == "private"
}

var (
	variableRe    = regexp.MustCompile(`^\$([\w-]+)\s*:\s*(.*?)\s*;?\s*$`)
	mixinRe       = regexp.MustCompile(`^@mixin\s+([\w-]+)`)
	functionRe    = regexp.MustCompile(`^@function\s+([\w-]+)`)
	placeholderRe = regexp.MustCompile(`^%([\w-]+)`)

	paramRe = regexp.MustCompile(`^(?:\{([^}]*)\}\s*)?\$?([\w-]+)(?:\s*\[([^\]]*)\])?(?:\s*-?\s*(.*))?$`)
	typedRe = regexp.MustCompile(`^(?:\{([^}]*)\}\s*)?(.*)$`)
)

type annotation struct {
	name string
	head string
	body []string
}

// MaxLineSize is the longest stylesheet line Parse accepts.
const MaxLineSize = 4 << 20

// Parse extracts the documented items of one stylesheet. name is recorded
// as each item's File.
func Parse(name string, src []byte) ([]Item, error) {
	var (
		items     []Item
		block     []string
		fileGroup string
		inPoster  bool
		lineNo    int
	)

	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "////"):
			text := strings.TrimSpace(strings.TrimLeft(line, "/"))
			if text == "" {
				inPoster = !inPoster
				block = nil
				continue
			}
			if g := posterGroup(text); g != "" {
				fileGroup = g
			}
		case strings.HasPrefix(line, "///") && inPoster:
			if g := posterGroup(strings.TrimSpace(strings.TrimPrefix(line, "///"))); g != "" {
				fileGroup = g
			}
		case strings.HasPrefix(line, "///"):
			text := strings.TrimPrefix(line, "///")
			text = strings.TrimPrefix(text, " ")
			block = append(block, text)
		case line == "" || strings.HasPrefix(line, "//"):
			// blank lines and ordinary comments keep a pending block
		default:
			if len(block) > 0 {
				if item, ok := declaration(line); ok {
					item.File = name
					item.Line = lineNo
					applyBlock(&item, block)
					if item.Group == "" {
						item.Group = fileGroup
					}
					if item.Group == "" {
						item.Group = DefaultGroup
					}
					if item.Access == "" {
						item.Access = defaultAccess(item.Name)
					}
					items = append(items, item)
				}
			}
			block = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s line %d: %w", name, lineNo+1, err)
	}
	return items, nil
}

func posterGroup(text string) string {
	name, value, ok := strings.Cut(text, " ")
	if !ok || name != "@group" {
		return ""
	}
	return strings.TrimSpace(value)
}

func declaration(line string) (Item, bool) {
	if m := variableRe.FindStringSubmatch(line); m != nil {
		return Item{Kind: KindVariable, Name: m[1], Value: m[2]}, true
	}
	if m := mixinRe.FindStringSubmatch(line); m != nil {
		return Item{Kind: KindMixin, Name: m[1]}, true
	}
	if m := functionRe.FindStringSubmatch(line); m != nil {
		return Item{Kind: KindFunction, Name: m[1]}, true
	}
	if m := placeholderRe.FindStringSubmatch(line); m != nil {
		return Item{Kind: KindPlaceholder, Name: m[1]}, true
	}
	return Item{}, false
}

func defaultAccess(name string) string {
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, "-") {
		return "private"
	}
	return "public"
}

func applyBlock(item *Item, block []string) {
	var desc []string
	var anns []*annotation
	for _, line := range block {
		if strings.HasPrefix(line, "@") {
			name, head, _ := strings.Cut(line[1:], " ")
			anns = append(anns, &annotation{name: name, head: strings.TrimSpace(head)})
			continue
		}
		if len(anns) == 0 {
			desc = append(desc, line)
			continue
		}
		cur := anns[len(anns)-1]
		cur.body = append(cur.body, line)
	}
	item.Description = strings.TrimSpace(strings.Join(desc, "\n"))

	for _, a := range anns {
		switch a.name {
		case "param", "arg", "argument":
			if m := paramRe.FindStringSubmatch(a.head); m != nil {
				item.Params = append(item.Params, Param{
					Type:        m[1],
					Name:        m[2],
					Default:     m[3],
					Description: joinText(m[4], a.body),
				})
			}
		case "return", "returns":
			m := typedRe.FindStringSubmatch(a.head)
			item.Return = &Return{Type: m[1], Description: joinText(m[2], a.body)}
		case "type":
			item.Type = strings.Trim(a.head, "{} ")
		case "example":
			lang, exDesc, _ := strings.Cut(a.head, "-")
			item.Examples = append(item.Examples, Example{
				Language:    strings.TrimSpace(lang),
				Description: strings.TrimSpace(exDesc),
				Code:        strings.TrimRight(strings.Join(a.body, "\n"), "\n "),
			})
		case "group":
			item.Group = a.head
		case "access":
			item.Access = a.head
		case "deprecated":
			msg := joinText(a.head, a.body)
			item.Deprecated = &msg
		case "since":
			item.Since = append(item.Since, a.head)
		case "see":
			item.See = append(item.See, a.head)
		case "author":
			item.Author = append(item.Author, a.head)
		}
	}
}

func joinText(head string, body []string) string {
	parts := append([]string{head}, body...)
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
