package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriterWrite(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    string
	}{
		{
			name:    "headers and records",
			options: WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"1", "2"}, {"3", "4"}}},
			want:    "a,b\n1,2\n3,4\n",
		},
		{
			name:    "bom prefix",
			options: WriteOptions{Headers: []string{"a"}, BOMPrefix: true},
			want:    "\xEF\xBB\xBFa\n",
		},
		{
			name:    "quotes commas",
			options: WriteOptions{Records: [][]string{{"House 1, G-9", "x"}}},
			want:    "\"House 1, G-9\",x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVWriter(nil).Write(&buf, tt.options))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCSVWriterWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "summary.csv")

	err := NewCSVWriter(nil).WriteFile(path, WriteOptions{
		Headers:   []string{"Category", "Count"},
		Records:   [][]string{{"Blind", "3"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Category", "Count"}, {"Blind", "3"}}, rows)
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	stream, err := NewStreamWriter(&buf, []string{"h"}, false)
	require.NoError(t, err)

	for _, v := range []string{"1", "2", "3"} {
		require.NoError(t, stream.WriteRecord([]string{v}))
	}
	require.NoError(t, stream.Flush())
	assert.Equal(t, "h\n1\n2\n3\n", buf.String())
}
