package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/cffauthor/pkg/logging"
)

func TestLogCollectsByLevel(t *testing.T) {
	l := New(&logging.Nop)
	l.Infof("found ORCID for @%s", "janesmith")
	l.Warnf("ORCID `%s` is invalid or unreachable", "0000-0002-1825-0097")
	l.Errorf("missing author: %s", "a@x.com")

	assert.Equal(t, []string{"found ORCID for @janesmith"}, l.Infos())
	assert.Equal(t, []string{"ORCID `0000-0002-1825-0097` is invalid or unreachable"}, l.Warnings())
	assert.Equal(t, []string{"missing author: a@x.com"}, l.Errors())
	assert.True(t, l.HasErrors())
	assert.True(t, l.HasWarnings())
}

func TestLogDeduplicatesMessages(t *testing.T) {
	l := New(&logging.Nop)
	l.Warnf("duplicate authors: %s and %s", "a", "b")
	l.Warnf("duplicate authors: %s and %s", "a", "b")
	l.Warnf("duplicate authors: %s and %s", "b", "c")

	assert.Len(t, l.Warnings(), 2)
	assert.Len(t, l.Entries(), 3)
}

func TestLogMerge(t *testing.T) {
	a := New(&logging.Nop)
	a.Infof("one")
	b := New(&logging.Nop)
	b.Warnf("two")
	a.Merge(b)

	assert.Len(t, a.Entries(), 2)
	assert.True(t, a.HasWarnings())
	assert.False(t, a.HasErrors())
}
