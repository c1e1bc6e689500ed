package lang

import (
	"strconv"
	"strings"
)

// ruleKind discriminates parsed plural selectors.
type ruleKind int

const (
	// ruleExact matches when the count's decimal form is listed in a
	// brace-delimited set, e.g. "{0,1}".
	ruleExact ruleKind = iota
	// ruleInterval matches a bounded or half-open interval, e.g. "[2,Inf]"
	// or "(0,10]". Square brackets include the endpoint, parentheses
	// exclude it.
	ruleInterval
)

// rule is a parsed explicit plural selector.
type rule struct {
	kind ruleKind

	exact map[string]struct{}

	lower         int
	upper         int
	includeLower  bool
	includeUpper  bool
	unboundedLow  bool
	unboundedHigh bool
}

// selectForm picks the plural form of message matching count. Messages
// without a pipe are returned unchanged. Explicit selectors are tried in
// candidate order; when none matches, the standard two-way rule applies:
// count > 1 picks the second form, anything else the first.
func selectForm(message string, count int) string {
	if !strings.Contains(message, "|") {
		return message
	}

	forms := strings.Split(message, "|")
	texts := make([]string, len(forms))
	for i, form := range forms {
		form = strings.TrimSpace(form)
		texts[i] = form

		selector, text, ok := splitSelector(form)
		if !ok {
			continue
		}
		texts[i] = text
		if testInterval(count, selector) {
			return text
		}
	}

	if count > 1 && len(texts) > 1 {
		return texts[1]
	}
	return texts[0]
}

// testInterval reports whether count satisfies the selector string, which
// is either an exact set or an interval. Malformed selectors never match.
func testInterval(count int, selector string) bool {
	parsed, ok := parseRule(selector)
	if !ok {
		return false
	}
	return parsed.matches(count)
}

// splitSelector splits a candidate form into its leading selector token and
// the display text. Forms without a well-delimited "{...}", "[...]" or
// "(...)" prefix carry no selector.
func splitSelector(form string) (selector, text string, ok bool) {
	if form == "" {
		return "", "", false
	}

	var closer byte
	switch form[0] {
	case '{':
		closer = '}'
	case '[', '(':
		// Interval selectors may close with either bracket regardless of
		// how they open ("[0,1)" is valid).
		idx := strings.IndexAny(form, "])")
		if idx < 0 {
			return "", "", false
		}
		return form[:idx+1], strings.TrimSpace(form[idx+1:]), true
	default:
		return "", "", false
	}

	idx := strings.IndexByte(form, closer)
	if idx < 0 {
		return "", "", false
	}
	return form[:idx+1], strings.TrimSpace(form[idx+1:]), true
}

// parseRule parses an explicit selector token into its tagged form.
// Anything that matches neither grammar yields ok=false, and numeric parse
// failures on non-Inf endpoints fail closed the same way.
func parseRule(selector string) (rule, bool) {
	if len(selector) < 2 {
		return rule{}, false
	}

	if selector[0] == '{' {
		if selector[len(selector)-1] != '}' {
			return rule{}, false
		}
		members := strings.Split(selector[1:len(selector)-1], ",")
		exact := make(map[string]struct{}, len(members))
		for _, member := range members {
			exact[strings.TrimSpace(member)] = struct{}{}
		}
		return rule{kind: ruleExact, exact: exact}, true
	}

	includeLower := selector[0] == '['
	if !includeLower && selector[0] != '(' {
		return rule{}, false
	}
	last := selector[len(selector)-1]
	includeUpper := last == ']'
	if !includeUpper && last != ')' {
		return rule{}, false
	}

	endpoints := strings.Split(selector[1:len(selector)-1], ",")
	if len(endpoints) != 2 {
		return rule{}, false
	}

	parsed := rule{kind: ruleInterval, includeLower: includeLower, includeUpper: includeUpper}

	switch low := strings.TrimSpace(endpoints[0]); low {
	case "Inf", "-Inf", "+Inf":
		parsed.unboundedLow = true
	default:
		value, err := strconv.Atoi(low)
		if err != nil {
			return rule{}, false
		}
		parsed.lower = value
	}

	switch high := strings.TrimSpace(endpoints[1]); high {
	case "Inf", "+Inf":
		parsed.unboundedHigh = true
	default:
		value, err := strconv.Atoi(high)
		if err != nil {
			return rule{}, false
		}
		parsed.upper = value
	}

	return parsed, true
}

func (r rule) matches(count int) bool {
	switch r.kind {
	case ruleExact:
		_, ok := r.exact[strconv.Itoa(count)]
		return ok
	case ruleInterval:
		if !r.unboundedLow {
			if r.includeLower {
				if count < r.lower {
					return false
				}
			} else if count <= r.lower {
				return false
			}
		}
		if !r.unboundedHigh {
			if r.includeUpper {
				if count > r.upper {
					return false
				}
			} else if count >= r.upper {
				return false
			}
		}
		return true
	default:
		return false
	}
}
