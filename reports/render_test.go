package reports_test

import (
	"bytes"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/reports"
)

func Test_Render_PDF(t *testing.T) {
	// arrange
	report := givenReport(t, 120)
	var buf bytes.Buffer

	// act
	err := reports.Render(&buf, report, reports.FormatPDF)

	// assert
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "%%EOF")
}

func Test_Render_JSON(t *testing.T) {
	// arrange
	report := givenReport(t, 2)
	var buf bytes.Buffer

	// act
	err := reports.Render(&buf, report, reports.FormatJSON)

	// assert
	require.NoError(t, err)

	var decoded struct {
		Kind    string     `json:"kind"`
		Title   string     `json:"title"`
		Date    string     `json:"date"`
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	require.NoError(t, jsoniter.ConfigFastest.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "inventory", decoded.Kind)
	assert.Equal(t, "Library Inventory Report", decoded.Title)
	assert.Equal(t, "2024-06-01", decoded.Date)
	assert.Len(t, decoded.Rows, 2)
	assert.NotContains(t, buf.String(), "HeaderColor")
}

func Test_Render_UnsupportedFormat(t *testing.T) {
	// act
	err := reports.Render(&bytes.Buffer{}, givenReport(t, 1), reports.Format("docx"))

	// assert
	assert.ErrorIs(t, err, reports.ErrUnsupportedFormat)
}

func Test_ParseFormat_And_FormatOf(t *testing.T) {
	testCases := []struct {
		input    string
		expected reports.Format
	}{
		{input: "", expected: reports.FormatPDF},
		{input: "pdf", expected: reports.FormatPDF},
		{input: "JSON", expected: reports.FormatJSON},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			format, err := reports.ParseFormat(tc.input)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, format)
		})
	}

	format, err := reports.FormatOf("/tmp/out/overdue.json")
	require.NoError(t, err)
	assert.Equal(t, reports.FormatJSON, format)

	_, err = reports.FormatOf("overdue.txt")
	assert.ErrorIs(t, err, reports.ErrUnsupportedFormat)
}

func Test_ParseKind(t *testing.T) {
	for _, kind := range reports.Kinds() {
		parsed, err := reports.ParseKind(string(kind))

		assert.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := reports.ParseKind("fines")
	assert.ErrorIs(t, err, reports.ErrUnknownKind)
}
