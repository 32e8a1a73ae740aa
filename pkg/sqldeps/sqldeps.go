// Package sqldeps implements DependencyAnalyzer (spec §4.11 C13): a
// lexical (non-parsing) scan over SQL text that extracts the
// identifiers following FROM and JOIN. Subquery analysis is out of
// scope, a documented limitation: a derived table's inner FROM/JOIN
// targets are reported exactly the same as a top-level one, and the
// caller intersecting against known models is expected to tolerate
// names that turn out not to be tables (e.g. CTE aliases).
package sqldeps

import "regexp"

var fromJoinPattern = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([A-Za-z_][A-Za-z0-9_\.]*)`)

// ExtractDependencies returns the set of distinct identifiers
// following FROM/JOIN tokens in sql, in first-seen order.
func ExtractDependencies(sql string) []string {
	matches := fromJoinPattern.FindAllStringSubmatch(sql, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
