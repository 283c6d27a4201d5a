// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package repair rewrites known textual defects in generated files. Every
// rule is idempotent and scoped to one file or file family, so the engine can
// be invoked any number of times across re-runs without cross-contamination.
package repair

import "regexp"

// Rule is one pattern substitution. Applying a rule twice must yield the same
// result as applying it once.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

// Apply runs the substitution and reports whether the content changed.
func (r Rule) Apply(content string) (string, bool) {
	out := r.Pattern.ReplaceAllString(content, r.Replace)
	return out, out != content
}

// relativeImportRules convert relative imports to absolute ones in the
// generated backend sources, which run as flat top-level modules.
var relativeImportRules = []Rule{
	{
		Name:    "relative-import",
		Pattern: regexp.MustCompile(`from \.(\w+) import`),
		Replace: `from $1 import`,
	},
	{
		Name:    "nested-relative-import",
		Pattern: regexp.MustCompile(`from \.(\w+)\.(\w+) import`),
		Replace: `from $1.$2 import`,
	},
}

// pydanticRules upgrade Pydantic v1 syntax that models still get generated
// with to the v2 equivalents.
var pydanticRules = []Rule{
	{
		Name:    "field-regex-to-pattern",
		Pattern: regexp.MustCompile(`regex=`),
		Replace: `pattern=`,
	},
	{
		Name:    "orm-mode-to-from-attributes",
		Pattern: regexp.MustCompile(`class Config:\s*\n(\s*)orm_mode = True`),
		Replace: "class Config:\n${1}from_attributes = True",
	},
}
