package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	data, err := exporter.Render(Table{
		Columns: []string{"Name", "Email"},
		Rows: [][]string{
			{"Sam Student", "sam@campus.edu"},
			{"Pat Peer"},
		},
	})
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Email", string(lines[0]))
	assert.Equal(t, "Sam Student,sam@campus.edu", string(lines[1]))
	assert.Equal(t, "Pat Peer,", string(lines[2]))
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Table{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	data, err := exporter.Render(Table{
		Title:   "Attendees - Hackathon",
		Columns: []string{"Name", "Email", "Registered At"},
		Rows:    [][]string{{"Sam Student", "sam@campus.edu", "2026-09-01 10:00"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
