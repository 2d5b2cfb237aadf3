package provider

import (
	"strings"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
)

// Doc is a parsed JSDoc block.
type Doc struct {
	// Description is the free text before the first block tag, one source
	// line per line.
	Description string

	// Tags are the block tags in source order.
	Tags ir.Tags
}

// ParseDoc parses a /** ... */ comment. It returns nil for anything that
// is not a JSDoc block.
//
// Block tags start a line with '@'. Tag text continues over the following
// lines until the next tag.
func ParseDoc(comment string) *Doc {
	if !IsJSDoc(comment) || !strings.HasSuffix(comment, "*/") || len(comment) < 5 {
		return nil
	}
	body := comment[3 : len(comment)-2]

	var (
		desc []string
		doc  = &Doc{}
		cur  *ir.Tag
		text []string
	)
	flush := func() {
		if cur != nil {
			cur.Text = strings.TrimSpace(strings.Join(text, "\n"))
			doc.Tags = append(doc.Tags, *cur)
			cur, text = nil, nil
		}
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimPrefix(line, " ")

		if strings.HasPrefix(line, "@") {
			flush()
			name, rest, _ := strings.Cut(line[1:], " ")
			cur = &ir.Tag{Name: strings.TrimSpace(name)}
			text = []string{rest}
			continue
		}
		if cur != nil {
			text = append(text, line)
			continue
		}
		desc = append(desc, line)
	}
	flush()

	doc.Description = strings.Trim(strings.Join(desc, "\n"), " \t\n")
	return doc
}

// IsJSDoc reports whether comment opens a /** block.
func IsJSDoc(comment string) bool {
	return strings.HasPrefix(comment, "/**") && !strings.HasPrefix(comment, "/**/")
}
