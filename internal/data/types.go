package data

import (
	"errors"
	"fmt"
	"math"
)

// ErrMissingColumn is returned when a named column is not in a Table.
var ErrMissingColumn = errors.New("missing column")

// Customer dataset columns, in file order.
const (
	ColCustID                         = "CUST_ID"
	ColBalance                        = "BALANCE"
	ColBalanceFrequency               = "BALANCE_FREQUENCY"
	ColPurchases                      = "PURCHASES"
	ColOneoffPurchases                = "ONEOFF_PURCHASES"
	ColInstallmentsPurchases          = "INSTALLMENTS_PURCHASES"
	ColCashAdvance                    = "CASH_ADVANCE"
	ColPurchasesFrequency             = "PURCHASES_FREQUENCY"
	ColOneoffPurchasesFrequency       = "ONEOFF_PURCHASES_FREQUENCY"
	ColPurchasesInstallmentsFrequency = "PURCHASES_INSTALLMENTS_FREQUENCY"
	ColCashAdvanceFrequency           = "CASH_ADVANCE_FREQUENCY"
	ColCashAdvanceTrx                 = "CASH_ADVANCE_TRX"
	ColPurchasesTrx                   = "PURCHASES_TRX"
	ColCreditLimit                    = "CREDIT_LIMIT"
	ColPayments                       = "PAYMENTS"
	ColMinimumPayments                = "MINIMUM_PAYMENTS"
	ColPrcFullPayment                 = "PRC_FULL_PAYMENT"
	ColTenure                         = "TENURE"
)

// Table is a column-major numeric table with an optional string identifier
// column. Missing cells are NaN.
type Table struct {
	IDName string
	IDs    []string
	Names  []string
	Cols   [][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t.IDs != nil {
		return len(t.IDs)
	}
	if len(t.Cols) == 0 {
		return 0
	}
	return len(t.Cols[0])
}

// Shape returns (rows, columns) counting the identifier column when present.
func (t *Table) Shape() (int, int) {
	w := len(t.Names)
	if t.IDs != nil {
		w++
	}
	return t.Len(), w
}

// Index returns the position of the named numeric column, or -1.
func (t *Table) Index(name string) int {
	for i, n := range t.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Column returns the backing slice of the named numeric column.
func (t *Table) Column(name string) ([]float64, error) {
	i := t.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return t.Cols[i], nil
}

// SetColumn appends the column, or replaces it when the name exists.
func (t *Table) SetColumn(name string, vals []float64) {
	if i := t.Index(name); i >= 0 {
		t.Cols[i] = vals
		return
	}
	t.Names = append(t.Names, name)
	t.Cols = append(t.Cols, vals)
}

// DropColumn removes the named column, numeric or identifier. It reports
// whether anything was removed.
func (t *Table) DropColumn(name string) bool {
	if t.IDs != nil && t.IDName == name {
		t.IDs = nil
		t.IDName = ""
		return true
	}
	i := t.Index(name)
	if i < 0 {
		return false
	}
	t.Names = append(t.Names[:i:i], t.Names[i+1:]...)
	t.Cols = append(t.Cols[:i:i], t.Cols[i+1:]...)
	return true
}

// NullCount returns the number of NaN cells in the named column.
func (t *Table) NullCount(name string) int {
	col, err := t.Column(name)
	if err != nil {
		return 0
	}
	n := 0
	for _, v := range col {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	c := &Table{IDName: t.IDName}
	if t.IDs != nil {
		c.IDs = append([]string(nil), t.IDs...)
	}
	c.Names = append([]string(nil), t.Names...)
	c.Cols = make([][]float64, len(t.Cols))
	for i, col := range t.Cols {
		c.Cols[i] = append([]float64(nil), col...)
	}
	return c
}
