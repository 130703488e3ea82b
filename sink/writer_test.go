package sink

import (
	"bytes"
	"testing"

	"github.com/poiesic/titlelens/core"
	"github.com/stretchr/testify/assert"
)

type names map[core.GroupID]string

func (n names) Name(id core.GroupID) string { return n[id] }

func TestWriter_FlushGroupsRows(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, names{0: "Action", 1: "Adventure"})

	w.Clear()
	w.FlushBatch()
	assert.Empty(t, buf.String(), "empty flush prints nothing")

	w.Append(core.ResultRow{URI: "u/1", Title: "Batman", Group: 1})
	w.Append(core.ResultRow{URI: "u/1", Title: "Batman", Group: 0})
	w.Append(core.ResultRow{URI: "u/2", Title: "Batman Returns", Group: 0})
	assert.Empty(t, buf.String(), "rows stay pending until flushed")

	w.FlushBatch()
	w.Commit()

	want := "[Action]\n" +
		"  Batman  <u/1>\n" +
		"  Batman Returns  <u/2>\n" +
		"[Adventure]\n" +
		"  Batman  <u/1>\n" +
		"-- 3 rows --\n"
	assert.Equal(t, want, buf.String())
}

func TestWriter_EmptyRowAndUnknownGroup(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)

	w.Append(core.ResultRow{Title: "Your search did not match anything.", Comment: "No results found", Group: 26})
	w.FlushBatch()

	assert.Equal(t, "[group 26]\n  Your search did not match anything.  (No results found)\n", buf.String())
}

func TestWriter_ClearDropsPending(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)

	w.Append(core.ResultRow{URI: "u", Title: "stale"})
	w.Clear()
	w.FlushBatch()
	w.Commit()

	assert.Equal(t, "-- 0 rows --\n", buf.String())
}
