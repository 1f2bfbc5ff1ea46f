package sink

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   int
	Name string
}

func widgetRow(w widget) []string {
	return []string{strconv.Itoa(w.ID), w.Name}
}

func TestCSVSink_WriteBatch_WritesHeaderOnceThenRows(t *testing.T) {
	var buf bytes.Buffer
	s := NewCSVSink[widget](&buf, nil, []string{"id", "name"}, widgetRow)

	require.NoError(t, s.WriteBatch([]widget{{1, "a"}, {2, "b"}}))
	require.NoError(t, s.Write(widget{3, "c"}))
	require.NoError(t, s.Flush())

	assert.Equal(t, "id,name\n1,a\n2,b\n3,c\n", buf.String())
	assert.Equal(t, int64(3), s.ItemsWritten())
}

func TestCSVSink_NoHeaderWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	s := NewCSVSink[widget](&buf, nil, nil, widgetRow)
	require.NoError(t, s.Write(widget{1, "a"}))
	require.NoError(t, s.Flush())
	assert.Equal(t, "1,a\n", buf.String())
}

type closeTracker struct {
	bytes.Buffer
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestCSVSink_Close_FlushesAndClosesUnderlying(t *testing.T) {
	ct := &closeTracker{}
	s := NewCSVSink[widget](ct, ct, []string{"id", "name"}, widgetRow)
	require.NoError(t, s.Write(widget{1, "a"}))
	require.NoError(t, s.Close())
	assert.True(t, ct.closed)
	assert.Contains(t, ct.String(), "1,a")
}

func TestCSVSink_Close_WithoutCloserSucceeds(t *testing.T) {
	var buf bytes.Buffer
	s := NewCSVSink[widget](&buf, nil, nil, widgetRow)
	require.NoError(t, s.Write(widget{1, "a"}))
	assert.NoError(t, s.Close())
}
