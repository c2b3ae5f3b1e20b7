package widget

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dlclark/regexp2"
	"go.uber.org/zap"
)

// Rules is the validation configuration of a widget.
type Rules struct {
	Pattern *regexp2.Regexp
	// PatternText is the pattern as shown to the user.
	PatternText string
	PatternHint string
	Required    bool
	Blank       bool
	// Unique is parsed for callers comparing values across widgets; a widget
	// does not check it on its own.
	Unique      bool
	Disabled    bool
}

// Match reports whether text matches the pattern.
func (r Rules) Match(text string) bool {
	if r.Pattern == nil {
		return true
	}
	ok, err := r.Pattern.MatchString(text)
	return err == nil && ok
}

// InitRules reads the rules of el from the options "pattern", "patternHint"
// and "rules", overridden by the data-pattern, data-pattern-hint and
// data-rules attributes.  An invalid pattern is logged and left out.
func InitRules(el *goquery.Selection, opts Options, log *zap.Logger) Rules {
	var rules Rules
	pattern := el.AttrOr("data-pattern", opts.String("pattern"))
	if pattern != "" {
		re, err := ParsePattern(pattern)
		if err != nil {
			log.Warn("ignoring invalid pattern", zap.String("pattern", pattern), zap.Error(err))
		} else {
			rules.Pattern = re
			rules.PatternText = patternText(pattern)
		}
	}
	rules.PatternHint = el.AttrOr("data-pattern-hint", opts.String("patternHint"))

	tokens := strings.ToLower(el.AttrOr("data-rules", opts.String("rules")))
	rules.Required = strings.Contains(tokens, "required") || strings.Contains(tokens, "mandatory")
	rules.Blank = strings.Contains(tokens, "blank")
	rules.Unique = strings.Contains(tokens, "unique")
	rules.Disabled = strings.Contains(tokens, "disabled")
	return rules
}

// ParsePattern compiles a pattern given either as a "/source/flags" literal
// or as a bare, case sensitive expression.  Patterns use ECMAScript syntax.
func ParsePattern(pattern string) (*regexp2.Regexp, error) {
	if !strings.HasPrefix(pattern, "/") {
		return regexp2.Compile(pattern, regexp2.ECMAScript)
	}
	end := strings.LastIndex(pattern, "/")
	if end == 0 {
		return nil, fmt.Errorf("unterminated pattern literal %q", pattern)
	}
	source, flags := pattern[1:end], pattern[end+1:]
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, flag := range flags {
		switch flag {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts = opts&^regexp2.ECMAScript | regexp2.Singleline
		case 'g', 'y', 'u', 'd', 'v':
			// no effect on a single test
		default:
			return nil, fmt.Errorf("invalid flag %q in pattern %q", flag, pattern)
		}
	}
	return regexp2.Compile(source, opts)
}

// patternText strips the literal delimiters for display.
func patternText(pattern string) string {
	if end := strings.LastIndex(pattern, "/"); strings.HasPrefix(pattern, "/") && end > 0 {
		return pattern[1:end]
	}
	return pattern
}
