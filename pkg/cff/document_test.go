package cff

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cffauthor/pkg/identity"
)

const sampleCFF = `cff-version: 1.2.0
message: If you use this software, please cite it as below.
title: example
authors:
  - given-names: Ada
    family-names: Lovelace
    email: ada@example.org
  - name: Example Lab
    alias: https://github.com/example-lab
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "CITATION.cff")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "CITATION.cff"))
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeSample(t, "cff-version: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
}

func TestAuthors(t *testing.T) {
	doc, err := Load(writeSample(t, sampleCFF))
	require.NoError(t, err)

	authors, errs := doc.Authors()
	require.Empty(t, errs)
	require.Len(t, authors, 2)

	assert.Equal(t, identity.TypePerson, authors[0].Type)
	assert.Equal(t, "Ada", authors[0].GivenNames)
	assert.Equal(t, "Lovelace", authors[0].FamilyNames)
	assert.Equal(t, "ada@example.org", authors[0].Email)

	assert.Equal(t, identity.TypeEntity, authors[1].Type)
	assert.Equal(t, "Example Lab", authors[1].Name)
	assert.Equal(t, "https://github.com/example-lab", authors[1].Alias)
}

func TestAuthorsSkipsMalformedRecords(t *testing.T) {
	doc, err := Load(writeSample(t, `cff-version: 1.2.0
authors:
  - given-names: Ada
  - given-names: Grace
    family-names: Hopper
`))
	require.NoError(t, err)

	authors, errs := doc.Authors()
	require.Len(t, errs, 1, "record with only given-names cannot be parsed")
	require.Len(t, authors, 1)
	assert.Equal(t, "Grace Hopper", authors[0].FullName())
}

func TestAppendAuthorPreservesKeyOrder(t *testing.T) {
	doc, err := Load(writeSample(t, sampleCFF))
	require.NoError(t, err)

	author, err := identity.NewPersonAuthor("Grace", "Hopper",
		identity.WithEmail("grace@example.org"),
		identity.WithAuthorORCID("https://orcid.org/0000-0002-1825-0097"),
		identity.WithAlias("https://github.com/ghopper"))
	require.NoError(t, err)
	doc.AppendAuthor(author)

	data, err := doc.Bytes()
	require.NoError(t, err)
	text := string(data)

	// Top-level keys stay where the maintainers put them.
	assert.Less(t, strings.Index(text, "cff-version"), strings.Index(text, "message"))
	assert.Less(t, strings.Index(text, "message"), strings.Index(text, "title"))
	assert.Less(t, strings.Index(text, "title"), strings.Index(text, "authors"))

	// The new record keeps the name/email/orcid/alias field order.
	assert.Less(t, strings.Index(text, "given-names: Grace"), strings.Index(text, "family-names: Hopper"))
	assert.Less(t, strings.Index(text, "family-names: Hopper"), strings.Index(text, "grace@example.org"))
	assert.Less(t, strings.Index(text, "grace@example.org"), strings.Index(text, "0000-0002-1825-0097"))
	assert.Less(t, strings.Index(text, "0000-0002-1825-0097"), strings.Index(text, "github.com/ghopper"))

	authors, errs := doc.Authors()
	require.Empty(t, errs)
	assert.Len(t, authors, 3)
}

func TestAppendAuthorCreatesSection(t *testing.T) {
	doc, err := Load(writeSample(t, "cff-version: 1.2.0\ntitle: bare\n"))
	require.NoError(t, err)

	entity, err := identity.NewEntityAuthor("Example Lab")
	require.NoError(t, err)
	doc.AppendAuthor(entity)

	authors, errs := doc.Authors()
	require.Empty(t, errs)
	require.Len(t, authors, 1)
	assert.Equal(t, "Example Lab", authors[0].Name)
}

func TestCloneIsIndependent(t *testing.T) {
	doc, err := Load(writeSample(t, sampleCFF))
	require.NoError(t, err)

	clone := doc.Clone()
	entity, err := identity.NewEntityAuthor("New Org")
	require.NoError(t, err)
	clone.AppendAuthor(entity)

	original, _ := doc.Authors()
	cloned, _ := clone.Authors()
	assert.Len(t, original, 2)
	assert.Len(t, cloned, 3)
}

func TestSaveRoundTrip(t *testing.T) {
	path := writeSample(t, sampleCFF)
	doc, err := Load(path)
	require.NoError(t, err)

	author, err := identity.NewEntityAuthor("Round Trip Org")
	require.NoError(t, err)
	doc.AppendAuthor(author)
	require.NoError(t, doc.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	authors, errs := reloaded.Authors()
	require.Empty(t, errs)
	assert.Len(t, authors, 3)
	assert.Equal(t, "Round Trip Org", authors[2].Name)
}

func TestConvertValidatorMissingTool(t *testing.T) {
	v := NewConvertValidator("cffconvert-not-installed-anywhere")
	err := v.Validate(context.Background(), writeSample(t, sampleCFF))
	require.Error(t, err)
}
