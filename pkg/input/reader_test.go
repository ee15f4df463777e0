package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shouni/go-company-classifier/pkg/types"
)

const sampleCSV = `No,Region,Name,Website
1,x,skip1,skip1.com
2,x,skip2,skip2.com
3,x,skip3,skip3.com
4,x,skip4,skip4.com
5,JP,Acme Foods, acme.com
6,US,Blank,
7,US,Beta,beta.co.jp
`

func TestReadCSV(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(sampleCSV), DefaultOptions())
	require.NoError(t, err)

	expected := []types.CompanyInput{
		{Row: 6, Label: "Acme Foods", Domain: "acme.com"},
		{Row: 7, Label: "Blank", Domain: ""},
		{Row: 8, Label: "Beta", Domain: "beta.co.jp"},
	}
	assert.Equal(t, expected, got)
}

func TestReadCSV_SkipRows(t *testing.T) {
	tests := []struct {
		name     string
		skip     int
		expected int
	}{
		{"no skip", 0, 7},
		{"default", DefaultSkipRows, 3},
		{"negative is zero", -1, 7},
		{"skip everything", 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(sampleCSV), Options{SkipRows: tt.skip})
			require.NoError(t, err)
			assert.Len(t, got, tt.expected)
		})
	}
}

func TestReadCSV_MalformedRow(t *testing.T) {
	t.Run("short data row", func(t *testing.T) {
		data := "a,b,c,d\n1,2,3,x.com\n1,2,3\n"
		_, err := ReadCSV(strings.NewReader(data), Options{})
		assert.ErrorIs(t, err, ErrMalformedRow)
		assert.Contains(t, err.Error(), "行: 3")
	})

	t.Run("short header", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("a,b,c\n1,2,3\n"), Options{})
		assert.ErrorIs(t, err, ErrMalformedRow)
	})

	t.Run("short row inside skipped rows is ignored", func(t *testing.T) {
		got, err := ReadCSV(strings.NewReader("a,b,c,d\nshort\n1,2,L,x.com\n"), Options{SkipRows: 1})
		require.NoError(t, err)
		assert.Equal(t, []types.CompanyInput{{Row: 3, Label: "L", Domain: "x.com"}}, got)
	})
}

func TestReadCSV_Empty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRead_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Rename.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	got, err := Read(path, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRead_XLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	rows := [][]interface{}{
		{"No", "Region", "Name", "Website"},
		{1, "x", "skip", "skip.com"},
		{2, "JP", "Acme", "acme.com"},
		// 末尾の空セルは省略される
		{3, "US", "NoDomain"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := Read(path, Options{SkipRows: 1})
	require.NoError(t, err)
	expected := []types.CompanyInput{
		{Row: 3, Label: "Acme", Domain: "acme.com"},
		{Row: 4, Label: "NoDomain", Domain: ""},
	}
	assert.Equal(t, expected, got)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions())
	assert.Error(t, err)

	_, err = Read("companies.json", DefaultOptions())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
