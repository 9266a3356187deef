package data

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		IDName: ColCustID,
		IDs:    []string{"C10001", "C10002"},
		Names:  []string{"A", "B"},
		Cols:   [][]float64{{1, 2}, {math.NaN(), 4.5}},
	}
}

func TestTableColumns(t *testing.T) {
	tbl := sampleTable()

	r, c := tbl.Shape()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)

	_, err := tbl.Column("Z")
	assert.ErrorIs(t, err, ErrMissingColumn)

	tbl.SetColumn("C", []float64{7, 8})
	tbl.SetColumn("A", []float64{9, 9})
	assert.Equal(t, []string{"A", "B", "C"}, tbl.Names)
	a, _ := tbl.Column("A")
	assert.Equal(t, []float64{9, 9}, a)

	assert.True(t, tbl.DropColumn(ColCustID))
	assert.False(t, tbl.DropColumn(ColCustID))
	assert.True(t, tbl.DropColumn("B"))
	assert.Equal(t, []string{"A", "C"}, tbl.Names)
	assert.Equal(t, []float64{7, 8}, tbl.Cols[1])
	assert.Equal(t, 2, tbl.Len())
}

func TestTableClone(t *testing.T) {
	tbl := sampleTable()
	c := tbl.Clone()
	c.Cols[0][0] = 100
	c.IDs[0] = "X"
	assert.Equal(t, 1.0, tbl.Cols[0][0])
	assert.Equal(t, "C10001", tbl.IDs[0])
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, sampleTable()))
	assert.Equal(t, "CUST_ID,A,B\nC10001,1,\nC10002,2,4.5\n", buf.String())

	back, err := DecodeCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"C10001", "C10002"}, back.IDs)
	assert.Equal(t, 1, back.NullCount("B"))
	b, _ := back.Column("B")
	assert.Equal(t, 4.5, b[1])
}

func TestDecodeCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"non numeric", "A,B\n1,x\n"},
		{"ragged", "A,B\n1,2\n3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCSV(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestDecodeCSVWithoutIdentifier(t *testing.T) {
	tbl, err := DecodeCSV(strings.NewReader("A,B\n1,2\n3,4\n"))
	require.NoError(t, err)
	assert.Nil(t, tbl.IDs)
	assert.Equal(t, 2, tbl.Len())
	r, c := tbl.Shape()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
}
