package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/wasmc/internal/est"
)

func TestDiagnosticsHasErrors(t *testing.T) {
	d := New(nil)
	assert.False(t, d.HasErrors())

	d.Warningf(nil, "just a warning")
	assert.False(t, d.HasErrors())

	d.Errorf(nil, "boom: %d", 42)
	assert.True(t, d.HasErrors())
	assert.Equal(t, 2, d.Count())
}

func TestDiagnosticsForwardsToLogger(t *testing.T) {
	sink := &CapturingSink{}
	d := New(sink)

	d.Errorf(nil, "bad thing")
	require.Len(t, sink.Records, 1)
	assert.Equal(t, Error, sink.Records[0].Severity)
	assert.Equal(t, "bad thing", sink.Records[0].Message)
}

func TestDiagnosticsFormat(t *testing.T) {
	d := New(nil)
	assert.Equal(t, "", d.Format("test.est"))

	loc := &est.Location{Start: &est.Position{Line: 3, Column: 5}}
	d.Errorf(loc, "unbound identifier %q", "x")
	d.Notef(nil, "see also")

	out := d.Format("test.est")
	assert.Contains(t, out, "error[test.est:3:5]: unbound identifier \"x\"")
	assert.Contains(t, out, "note[test.est:0:0]: see also")
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "note", Note.String())
}
