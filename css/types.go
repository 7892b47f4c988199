package css

import (
	"io"
	"strings"
)

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property  string // Property name, lower case except for custom properties
	Value     string // Value text without "!important"
	Important bool   // true if declaration was marked !important
}

// Rule is a style rule: selector list and its body.
type Rule struct {
	Selector string // Selector text as written (e.g. ".card, .button:hover")
	Body     []Item // Declarations and comments in source order
}

// Declarations returns pointers to all declarations of the rule in source
// order, so callers may modify them in place.
func (r *Rule) Declarations() []*Declaration {
	var decls []*Declaration
	for i := range r.Body {
		if r.Body[i].Declaration != nil {
			decls = append(decls, r.Body[i].Declaration)
		}
	}
	return decls
}

// AtRule is an @-rule. Statement at-rules (@import, @charset) have no block,
// block at-rules (@media, @supports, @font-face, @page) keep nested items.
type AtRule struct {
	Name    string // Name including "@" (e.g. "@media")
	Prelude string // Everything between the name and the block or semicolon
	Block   bool   // true if at-rule has a {} block
	Body    []Item // Nested rules, at-rules, declarations and comments
}

// Item is a single node of a stylesheet. Exactly one field is non-nil.
type Item struct {
	Rule        *Rule
	AtRule      *AtRule
	Declaration *Declaration
	Comment     *string
	Raw         *string // unparsed content of unknown @-rule blocks, kept verbatim
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Items    []Item   // All top-level items in source order
	Warnings []string // Problems parser recovered from
	Errors   []string // Syntax errors, content around them may be lost
}

// WalkRules calls fn for every style rule in document order, descending into
// block at-rules.
func (s *Stylesheet) WalkRules(fn func(rule *Rule)) {
	walkRules(s.Items, fn)
}

func walkRules(items []Item, fn func(rule *Rule)) {
	for i := range items {
		switch item := &items[i]; {
		case item.Rule != nil:
			fn(item.Rule)
		case item.AtRule != nil:
			walkRules(item.AtRule.Body, fn)
		}
	}
}

// Rules returns all style rules in document order including nested ones.
func (s *Stylesheet) Rules() []*Rule {
	var rules []*Rule
	s.WalkRules(func(r *Rule) { rules = append(rules, r) })
	return rules
}

// WriteTo writes the stylesheet to w in source order, implementing
// io.WriterTo. Every declaration is on its own line, nested blocks are
// indented with two spaces.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	p := &printer{w: w, pretty: true}
	p.items(s.Items, 0, true)
	return p.total, p.err
}

// WriteCompact writes the stylesheet to w putting every rule on a single
// line.
func (s *Stylesheet) WriteCompact(w io.Writer) (int64, error) {
	p := &printer{w: w}
	p.items(s.Items, 0, true)
	return p.total, p.err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// printer serializes items keeping track of written bytes and first error.
type printer struct {
	w      io.Writer
	pretty bool
	total  int64
	err    error
}

func (p *printer) write(parts ...string) {
	if p.err != nil {
		return
	}
	for _, s := range parts {
		n, err := io.WriteString(p.w, s)
		p.total += int64(n)
		if err != nil {
			p.err = err
			return
		}
	}
}

func (p *printer) indent(depth int) string {
	if !p.pretty {
		return ""
	}
	return strings.Repeat("  ", depth)
}

// items writes list of items, top level items are separated by blank lines.
func (p *printer) items(items []Item, depth int, top bool) {
	for i, item := range items {
		if p.pretty && top && i > 0 {
			p.write("\n")
		}
		p.item(item, depth)
	}
}

func (p *printer) item(item Item, depth int) {
	ind := p.indent(depth)
	switch {
	case item.Comment != nil:
		p.write(ind, *item.Comment, "\n")
	case item.Raw != nil:
		if raw := strings.TrimSpace(*item.Raw); len(raw) > 0 {
			p.write(ind, raw, "\n")
		}
	case item.Declaration != nil:
		p.write(ind, declarationText(item.Declaration), ";\n")
	case item.Rule != nil:
		p.block(item.Rule.Selector, item.Rule.Body, depth)
	case item.AtRule != nil:
		head := item.AtRule.Name
		if len(item.AtRule.Prelude) > 0 {
			head += " " + item.AtRule.Prelude
		}
		if !item.AtRule.Block {
			p.write(ind, head, ";\n")
			return
		}
		p.block(head, item.AtRule.Body, depth)
	}
}

// block writes "head { body }". In compact mode blocks holding only
// declarations go on a single line.
func (p *printer) block(head string, body []Item, depth int) {
	ind := p.indent(depth)
	if !p.pretty && flat(body) {
		p.write(ind, head, " {")
		for _, item := range body {
			if item.Comment != nil {
				p.write(" ", *item.Comment)
				continue
			}
			p.write(" ", declarationText(item.Declaration), ";")
		}
		p.write(" }\n")
		return
	}
	p.write(ind, head, " {\n")
	p.items(body, depth+1, false)
	p.write(ind, "}\n")
}

// flat reports that body has no nested blocks.
func flat(body []Item) bool {
	for _, item := range body {
		if item.Rule != nil || item.AtRule != nil || item.Raw != nil {
			return false
		}
	}
	return true
}

func declarationText(d *Declaration) string {
	text := d.Property + ": " + d.Value
	if d.Important {
		text += " !important"
	}
	return text
}
