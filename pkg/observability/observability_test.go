package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, "warn")

	log.Info("hidden")
	log.Warn("shown", Int("page", 3), Err(errors.New("boom")))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "page=3")
	assert.Contains(t, out, "error=boom")
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, "debug").With(String("doc", "a.pdf"))

	log.Debug("render", Float("zoom", 1.5))

	out := buf.String()
	assert.True(t, strings.Contains(out, "doc=a.pdf"), out)
	assert.Contains(t, out, "zoom=1.5")
}

func TestOrNop(t *testing.T) {
	assert.Equal(t, NopLogger{}, OrNop(nil))

	var buf bytes.Buffer
	l := NewTextLogger(&buf, "info")
	assert.Equal(t, l, OrNop(l))
}
