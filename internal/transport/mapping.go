package transport

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

var (
	numericID = regexp.MustCompile(`^\d+$`)
	uuidID    = regexp.MustCompile(`(?i)^[a-f0-9-]{36}$`)
)

// Args are the flat key/value arguments passed to a native command.
type Args map[string]any

// Mapper translates REST-shaped endpoints into native command invocations.
// It is immutable after construction and safe for concurrent use.
type Mapper struct {
	exact    map[string]string
	patterns []pattern
}

type pattern struct {
	method   string
	segments []string
	literals int
	command  string
}

// NewMapper builds a mapper from a route table. Routes without parameters are
// exact entries; routes with ':param' segments are positional patterns.
func NewMapper(routes []Route) *Mapper {
	m := &Mapper{exact: make(map[string]string, len(routes))}
	for _, r := range routes {
		method := strings.ToUpper(r.Method)
		segs := splitPath(r.Path)

		literals := 0
		for _, s := range segs {
			if !isParam(s) {
				literals++
			}
		}

		if literals == len(segs) {
			m.exact[method+":"+strings.Join(segs, "/")] = r.Command
			continue
		}
		m.patterns = append(m.patterns, pattern{
			method:   method,
			segments: segs,
			literals: literals,
			command:  r.Command,
		})
	}
	return m
}

var defaultMapper = NewMapper(Routes)

// EndpointToCommand maps an endpoint and HTTP method to a native command name
// using the built-in route table.
func EndpointToCommand(endpoint, method string) string {
	return defaultMapper.Command(endpoint, method)
}

// BuildCommandArgs builds native command arguments from an endpoint and body.
func BuildCommandArgs(endpoint string, body any) Args {
	return defaultMapper.Args(endpoint, body)
}

// Command resolves endpoint+method to a command: exact entry first, then the
// most specific positional pattern, then the generated fallback name.
func (m *Mapper) Command(endpoint, method string) string {
	command, _ := m.Resolve(endpoint, method)
	return command
}

// Resolve is Command that also reports whether the route table matched.
func (m *Mapper) Resolve(endpoint, method string) (string, bool) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "GET"
	}

	path := NormalizePath(endpoint)
	if command, ok := m.exact[method+":"+path]; ok {
		return command, true
	}

	segs := splitPath(path)
	best := -1
	for i, p := range m.patterns {
		if p.method != method || !p.matches(segs) {
			continue
		}
		if best < 0 || p.literals > m.patterns[best].literals {
			best = i
		}
	}
	if best >= 0 {
		return m.patterns[best].command, true
	}

	return FallbackCommand(path), false
}

func (p pattern) matches(segs []string) bool {
	if len(p.segments) != len(segs) {
		return false
	}
	for i, s := range p.segments {
		if isParam(s) {
			continue
		}
		if s != segs[i] {
			return false
		}
	}
	return true
}

// Args builds the argument map for a command:
//   - a trailing numeric or UUID segment becomes id, student_id, user_id or session_id
//   - query parameters are merged as flat strings (last value wins)
//   - an object body is spread into the arguments; any other non-null body
//     is placed under "request"
//
// Later sources overwrite earlier keys.
func (m *Mapper) Args(endpoint string, body any) Args {
	args := Args{}

	rawPath, rawQuery := splitQuery(stripAPIPrefix(endpoint))
	parts := splitPath(rawPath)

	if len(parts) >= 2 {
		last := parts[len(parts)-1]
		if IsIdentifier(last) {
			args[identifierKey(parts)] = last
		}
	}

	for _, kv := range parseQuery(rawQuery) {
		args[kv[0]] = kv[1]
	}

	switch v := normalizeBody(body).(type) {
	case nil:
	case map[string]any:
		for key, val := range v {
			args[key] = val
		}
	default:
		args["request"] = v
	}

	return args
}

// IsIdentifier reports whether a path segment looks like a record ID.
func IsIdentifier(segment string) bool {
	return numericID.MatchString(segment) || uuidID.MatchString(segment)
}

func identifierKey(parts []string) string {
	secondToLast := parts[len(parts)-2]
	joined := "/" + strings.Join(parts, "/") + "/"

	switch {
	case secondToLast == "student" || strings.Contains(joined, "/student/"):
		return "student_id"
	case secondToLast == "user" || strings.Contains(joined, "/user/"):
		return "user_id"
	case secondToLast == "session" || strings.Contains(joined, "/session/"):
		return "session_id"
	default:
		return "id"
	}
}

// FallbackCommand derives a command name for endpoints missing from the
// route table: slashes and hyphens become underscores, then lower-case.
// Applying it to its own output returns the same string.
func FallbackCommand(path string) string {
	s := strings.ReplaceAll(path, "/", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToLower(s)
}

// NormalizePath strips the /api/ prefix, the query string, and one leading and
// one trailing slash.
func NormalizePath(endpoint string) string {
	p, _ := splitQuery(stripAPIPrefix(endpoint))
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	return p
}

func stripAPIPrefix(endpoint string) string {
	return strings.TrimPrefix(endpoint, "/api/")
}

func splitQuery(s string) (path, query string) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// parseQuery splits a query string into key/value pairs in order. A pair
// that fails to unescape keeps its raw text instead of being dropped.
func parseQuery(query string) [][2]string {
	var pairs [][2]string
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		pairs = append(pairs, [2]string{unescapeQuery(key), unescapeQuery(value)})
	}
	return pairs
}

func unescapeQuery(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return strings.ReplaceAll(s, "+", " ")
}

func splitPath(p string) []string {
	raw := strings.Split(p, "/")
	segs := raw[:0]
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func isParam(segment string) bool {
	return strings.HasPrefix(segment, ":") && len(segment) > 1
}

// decodeRaw decodes a raw JSON body; text that is not JSON stays a string.
func decodeRaw(data []byte) any {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return string(data)
	}
	return decoded
}

// normalizeBody converts typed Go values into their JSON shape so structs
// count as objects the same way decoded maps do.
func normalizeBody(body any) any {
	switch v := body.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case Args:
		return map[string]any(v)
	case string, bool, float64, int, int64:
		return v
	case []byte:
		return decodeRaw(v)
	case json.RawMessage:
		return decodeRaw(v)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return body
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return body
	}
	return decoded
}
