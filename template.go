package ragjudge

import (
	"fmt"
	"strings"
)

// Placeholder names recognized in prompt templates.
const (
	PlaceholderQuestion    = "user_query"
	PlaceholderGroundTruth = "ground_truth"
	PlaceholderPrediction  = "prediction"
	PlaceholderContext     = "context"
)

var requiredPlaceholders = []string{
	PlaceholderQuestion,
	PlaceholderGroundTruth,
	PlaceholderPrediction,
}

// TemplateError reports a prompt template that cannot be formatted.
type TemplateError struct {
	Placeholder string // Offending placeholder, if any
	Offset      int    // Byte offset of a malformed brace, or -1
	Reason      string
}

func (e *TemplateError) Error() string {
	switch {
	case e.Placeholder != "":
		return fmt.Sprintf("template: placeholder {%s}: %s", e.Placeholder, e.Reason)
	case e.Offset >= 0:
		return fmt.Sprintf("template: offset %d: %s", e.Offset, e.Reason)
	default:
		return "template: " + e.Reason
	}
}

// Template is a parsed judge prompt. Placeholders are written {name};
// literal braces are written {{ and }}.
type Template struct {
	text     string
	segments []segment
}

// segment is either literal text or a placeholder name.
type segment struct {
	literal string
	field   string
}

// ParseTemplate parses text and checks that it contains {user_query},
// {ground_truth} and {prediction}. {context} is optional.
func ParseTemplate(text string) (*Template, error) {
	var segments []segment
	var lit strings.Builder
	seen := make(map[string]bool)

	flush := func() {
		if lit.Len() > 0 {
			segments = append(segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return nil, &TemplateError{Offset: i, Reason: "unclosed '{'"}
			}
			name := text[i+1 : i+1+end]
			if err := checkPlaceholder(name, i); err != nil {
				return nil, err
			}
			flush()
			segments = append(segments, segment{field: name})
			seen[name] = true
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, &TemplateError{Offset: i, Reason: "single '}' encountered"}
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	for _, name := range requiredPlaceholders {
		if !seen[name] {
			return nil, &TemplateError{Placeholder: name, Offset: -1, Reason: "missing"}
		}
	}

	return &Template{text: text, segments: segments}, nil
}

func checkPlaceholder(name string, offset int) error {
	switch name {
	case PlaceholderQuestion, PlaceholderGroundTruth, PlaceholderPrediction, PlaceholderContext:
		return nil
	case "":
		return &TemplateError{Offset: offset, Reason: "empty placeholder"}
	}
	if strings.ContainsRune(name, '{') {
		return &TemplateError{Offset: offset, Reason: "unexpected '{' in placeholder"}
	}
	return &TemplateError{Placeholder: name, Offset: offset, Reason: "unknown"}
}

// MustParseTemplate is like ParseTemplate but panics on error.
func MustParseTemplate(text string) *Template {
	t, err := ParseTemplate(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Format substitutes the item's fields into the template. Values are
// inserted verbatim; braces inside them are not interpreted.
func (t *Template) Format(item EvaluationItem) string {
	var b strings.Builder
	b.Grow(len(t.text) + len(item.Question) + len(item.ExpectedAnswer) + len(item.GeneratedAnswer))
	for _, s := range t.segments {
		switch s.field {
		case "":
			b.WriteString(s.literal)
		case PlaceholderQuestion:
			b.WriteString(item.Question)
		case PlaceholderGroundTruth:
			b.WriteString(item.ExpectedAnswer)
		case PlaceholderPrediction:
			b.WriteString(item.GeneratedAnswer)
		case PlaceholderContext:
			b.WriteString(strings.Join(item.Context, "\n\n"))
		}
	}
	return b.String()
}

// String returns the unparsed template text.
func (t *Template) String() string {
	return t.text
}

// FormatPrompt parses text and formats item with it.
func FormatPrompt(text string, item EvaluationItem) (string, error) {
	t, err := ParseTemplate(text)
	if err != nil {
		return "", err
	}
	return t.Format(item), nil
}
