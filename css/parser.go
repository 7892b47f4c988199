package css

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into an ordered tree of items.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// importantPattern matches trailing "!important" of a declaration value.
var importantPattern = regexp.MustCompile(`(?i)\s*!\s*important\s*$`)

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]Item, 0),
		Warnings: make([]string, 0),
		Errors:   make([]string, 0),
	}

	// Log parsing start with source identifier if provided
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	s := &scanner{
		log:    p.log,
		parser: css.NewParser(parse.NewInput(bytes.NewReader(data)), false),
		sheet:  sheet,
		errAt:  -1,
	}
	sheet.Items = s.items(css.ErrorGrammar)
	return sheet
}

// scanner keeps state of a single Parse call.
type scanner struct {
	log    *zap.Logger
	parser *css.Parser
	sheet  *Stylesheet
	errAt  int // offset of last syntax error
}

// items collects items until grammar type end is reached. For top level end
// is ErrorGrammar which signals end of input.
func (s *scanner) items(end css.GrammarType) []Item {
	var items []Item

	for {
		gt, _, data := s.parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if s.stop() {
				return items
			}

		case end:
			return items

		case css.CommentGrammar:
			comment := string(data)
			items = append(items, Item{Comment: &comment})

		case css.TokenGrammar:
			// content of unknown @-rule blocks and CDO/CDC tokens
			if n := len(items); n > 0 && items[n-1].Raw != nil {
				*items[n-1].Raw += string(data)
				continue
			}
			raw := string(data)
			items = append(items, Item{Raw: &raw})

		case css.AtRuleGrammar:
			// Simple @-rule without block (e.g., @import)
			items = append(items, Item{AtRule: &AtRule{
				Name:    string(data),
				Prelude: joinTokens(s.parser.Values()),
			}})

		case css.BeginAtRuleGrammar:
			at := &AtRule{
				Name:    string(data),
				Prelude: joinTokens(s.parser.Values()),
				Block:   true,
			}
			at.Body = s.items(css.EndAtRuleGrammar)
			s.log.Debug("Parsed @-rule block", zap.String("rule", at.Name), zap.String("prelude", at.Prelude), zap.Int("items", len(at.Body)))
			items = append(items, Item{AtRule: at})

		case css.BeginRulesetGrammar:
			rule := &Rule{Selector: joinTokens(s.parser.Values())}
			rule.Body = s.ruleBody(rule.Selector)
			items = append(items, Item{Rule: rule})

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			// declarations directly inside @-rule blocks (@font-face, @page)
			items = append(items, Item{Declaration: parseDeclaration(gt, data, s.parser.Values())})

		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			s.sheet.Warnings = append(s.sheet.Warnings, "unbalanced block end")
			s.log.Debug("Unbalanced block end ignored")
		}
	}
}

// ruleBody collects declarations until EndRulesetGrammar. Nested blocks are
// not supported and skipped.
func (s *scanner) ruleBody(selector string) []Item {
	var body []Item

	for {
		gt, _, data := s.parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if s.stop() {
				return body
			}

		case css.EndRulesetGrammar:
			return body

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			body = append(body, Item{Declaration: parseDeclaration(gt, data, s.parser.Values())})

		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			s.sheet.Warnings = append(s.sheet.Warnings, "nested block is not supported in rule: "+selector)
			s.log.Debug("Skipping nested block", zap.String("selector", selector))
			s.skipBlock()
		}
	}
}

// stop handles ErrorGrammar. It returns true when input is exhausted or
// cannot be read anymore. Syntax errors are recorded and parsing continues
// as long as parser makes progress.
func (s *scanner) stop() bool {
	err := s.parser.Err()
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	if !isSyntaxError(err) {
		s.sheet.Errors = append(s.sheet.Errors, err.Error())
		s.log.Debug("CSS read error", zap.Error(err))
		return true
	}
	offset := s.parser.Offset()
	if offset == s.errAt {
		// same error again, input is over
		return true
	}
	s.errAt = offset
	s.sheet.Errors = append(s.sheet.Errors, err.Error())
	s.log.Debug("CSS parse error", zap.Error(err))
	return false
}

// isSyntaxError distinguishes recoverable syntax errors from read errors.
func isSyntaxError(err error) bool {
	var perr *parse.Error
	return errors.As(err, &perr)
}

// skipBlock skips tokens until the matching end of a block.
func (s *scanner) skipBlock() {
	depth := 1
	for depth > 0 {
		gt, _, _ := s.parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if s.stop() {
				return
			}
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseDeclaration converts declaration tokens into a Declaration.
func parseDeclaration(gt css.GrammarType, data []byte, values []css.Token) *Declaration {
	decl := &Declaration{Property: string(data)}
	if gt == css.CustomPropertyGrammar {
		// custom property value is kept verbatim
		var sb strings.Builder
		for _, v := range values {
			sb.Write(v.Data)
		}
		decl.Value = strings.TrimSpace(sb.String())
	} else {
		decl.Property = strings.ToLower(decl.Property)
		decl.Value = joinTokens(values)
	}
	if loc := importantPattern.FindStringIndex(decl.Value); loc != nil {
		decl.Value = decl.Value[:loc[0]]
		decl.Important = true
	}
	return decl
}

// joinTokens builds text from tokens collapsing whitespace, commas are
// always followed by a single space.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	for i, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken:
			if sb.Len() > 0 && (i == 0 || tokens[i-1].TokenType != css.CommaToken) {
				sb.WriteByte(' ')
			}
		case css.CommaToken:
			sb.WriteString(", ")
		default:
			sb.Write(t.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}
