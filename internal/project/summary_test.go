package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernlang/flin/internal/parser"
)

func TestNewSeedsCoreTypes(t *testing.T) {
	s := New()

	typeName, local, ok := s.TypeOfVariant("Basics", "True")
	require.True(t, ok)
	assert.Equal(t, "Bool", typeName)
	assert.False(t, local, "core types are external")

	typeName, _, ok = s.TypeOfVariant("Maybe", "Nothing")
	require.True(t, ok)
	assert.Equal(t, "Maybe", typeName)

	typeName, _, ok = s.TypeOfVariant("Result", "Err")
	require.True(t, ok)
	assert.Equal(t, "Result", typeName)

	assert.True(t, s.HasType("Basics", "Order"))
	assert.False(t, s.HasType("Basics", "Missing"))
	assert.False(t, s.HasType("Missing", "Bool"))
}

func TestSummarize(t *testing.T) {
	mod, err := parser.ParseModule(`module Shop exposing (..)

type Status = Open | Closed | Renovating

type alias Item = { name : String, price : Float }

total items = 0
`)
	require.NoError(t, err)

	ms := Summarize(mod, true)
	assert.Equal(t, "Shop", ms.Name)
	assert.True(t, ms.Local)
	assert.Equal(t, []string{"Open", "Closed", "Renovating"}, ms.UnionVariants["Status"])
	assert.Equal(t, []string{"name", "price"}, ms.RecordAliases["Item"])

	s := New()
	s.Add(ms)

	typeName, local, ok := s.TypeOfVariant("Shop", "Closed")
	require.True(t, ok)
	assert.Equal(t, "Status", typeName)
	assert.True(t, local)

	fields, ok := s.AliasFields("Shop", "Item")
	require.True(t, ok)
	assert.Equal(t, []string{"name", "price"}, fields)

	_, _, ok = s.TypeOfVariant("Shop", "Unknown")
	assert.False(t, ok)
}

func TestAddReplacesModule(t *testing.T) {
	s := New()
	s.Add(&ModuleSummary{
		Name:          "Shop",
		UnionVariants: map[string][]string{"A": {"X"}},
	})
	s.Add(&ModuleSummary{
		Name:          "Shop",
		UnionVariants: map[string][]string{"B": {"Y"}},
	})
	assert.False(t, s.HasType("Shop", "A"))
	assert.True(t, s.HasType("Shop", "B"))
}

func TestParseDeps(t *testing.T) {
	s := New()
	err := ParseDeps(s, `
[[module]]
name = "Http"

[module.types]
Error = ["BadUrl", "Timeout", "NetworkError", "BadStatus", "BadBody"]

[[module]]
name = "Api"

[module.aliases]
User = ["id", "email"]
`)
	require.NoError(t, err)

	typeName, local, ok := s.TypeOfVariant("Http", "Timeout")
	require.True(t, ok)
	assert.Equal(t, "Error", typeName)
	assert.False(t, local, "manifest modules are external")

	fields, ok := s.AliasFields("Api", "User")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "email"}, fields)
}

func TestParseDepsMergesIntoExisting(t *testing.T) {
	s := New()
	err := ParseDeps(s, `
[[module]]
name = "Basics"

[module.types]
Never = []
`)
	require.NoError(t, err)
	assert.True(t, s.HasType("Basics", "Never"))
	assert.True(t, s.HasType("Basics", "Bool"), "seeded types survive the merge")
}

func TestParseDepsRejectsBadManifest(t *testing.T) {
	s := New()
	err := ParseDeps(s, "not valid toml [")
	assert.Error(t, err)
}
