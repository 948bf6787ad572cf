// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package detect

import "sort"

// stubCompanions maps a Python package name to the typeshed stub packages
// MyPy needs to type-check code that imports it. Packages not in the table
// need no action.
var stubCompanions = map[string][]string{
	"requests":        {"types-requests"},
	"pyyaml":          {"types-PyYAML"},
	"redis":           {"types-redis"},
	"python-dateutil": {"types-python-dateutil"},
	"pytz":            {"types-pytz"},
	"protobuf":        {"types-protobuf"},
	"six":             {"types-six"},
	"simplejson":      {"types-simplejson"},
	"toml":            {"types-toml"},
	"setuptools":      {"types-setuptools"},
	"psycopg2":        {"types-psycopg2"},
	"psycopg2-binary": {"types-psycopg2"},
}

// StubPackages returns the sorted, de-duplicated stub packages required
// for the given dependency names. Unknown packages contribute nothing.
func StubPackages(deps []string) []string {
	set := map[string]bool{}
	for _, dep := range deps {
		for _, stub := range stubCompanions[dep] {
			set[stub] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	stubs := make([]string, 0, len(set))
	for s := range set {
		stubs = append(stubs, s)
	}
	sort.Strings(stubs)
	return stubs
}
