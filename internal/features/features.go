// Package features turns the raw customer table into the model-ready table:
// identifier removal, median imputation, ratio features and upper clipping.
package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"ccanomaly/internal/data"
	"ccanomaly/pkg/utils"
)

// ErrNoObservations is returned when a column to impute has no observed value.
var ErrNoObservations = errors.New("no observed values")

// Derived columns appended by AddDerived.
const (
	ColMonthlyAvgPurchase    = "MONTHLY_AVG_PURCHASE"
	ColMonthlyAvgCashAdvance = "MONTHLY_AVG_CASH_ADVANCE"
	ColPurchaseToLimitRatio  = "PURCHASE_TO_LIMIT_RATIO"
	ColBalanceToLimitRatio   = "BALANCE_TO_LIMIT_RATIO"
)

var (
	ImputeColumns = []string{data.ColCreditLimit, data.ColMinimumPayments}
	ClipColumns   = []string{data.ColBalance, data.ColPurchases, data.ColCashAdvance, data.ColPayments, data.ColMinimumPayments}
)

// Threshold is a named per-column statistic, kept ordered for logging.
type Threshold struct {
	Column string
	Value  float64
}

// Report describes what Preprocess did to a table.
type Report struct {
	RawRows, RawCols             int
	ProcessedRows, ProcessedCols int
	Medians                      []Threshold
	ClipThresholds               []Threshold
	// Columns lists the processed columns in table order; Nulls is keyed by them.
	Columns []string
	Nulls   map[string]int
}

// ImputeMedian replaces NaN cells of each named column with the median of
// that column's observed values.
func ImputeMedian(t *data.Table, cols ...string) ([]Threshold, error) {
	out := make([]Threshold, 0, len(cols))
	for _, name := range cols {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		observed := make([]float64, 0, len(col))
		for _, v := range col {
			if !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			return nil, fmt.Errorf("impute %s: %w", name, ErrNoObservations)
		}
		median, err := stats.Median(observed)
		if err != nil {
			return nil, fmt.Errorf("impute %s: %w", name, err)
		}
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = median
			}
		}
		out = append(out, Threshold{Column: name, Value: median})
	}
	return out, nil
}

// AddDerived appends the monthly averages and limit ratios. The limit is
// shifted by one so a zero limit cannot divide by zero.
func AddDerived(t *data.Table) error {
	purchases, err := t.Column(data.ColPurchases)
	if err != nil {
		return err
	}
	cash, err := t.Column(data.ColCashAdvance)
	if err != nil {
		return err
	}
	tenure, err := t.Column(data.ColTenure)
	if err != nil {
		return err
	}
	limit, err := t.Column(data.ColCreditLimit)
	if err != nil {
		return err
	}
	balance, err := t.Column(data.ColBalance)
	if err != nil {
		return err
	}

	n := t.Len()
	monthlyPurchase := make([]float64, n)
	monthlyCash := make([]float64, n)
	purchaseRatio := make([]float64, n)
	balanceRatio := make([]float64, n)
	for i := 0; i < n; i++ {
		monthlyPurchase[i] = purchases[i] / tenure[i]
		monthlyCash[i] = cash[i] / tenure[i]
		purchaseRatio[i] = purchases[i] / (limit[i] + 1)
		balanceRatio[i] = balance[i] / (limit[i] + 1)
	}
	t.SetColumn(ColMonthlyAvgPurchase, monthlyPurchase)
	t.SetColumn(ColMonthlyAvgCashAdvance, monthlyCash)
	t.SetColumn(ColPurchaseToLimitRatio, purchaseRatio)
	t.SetColumn(ColBalanceToLimitRatio, balanceRatio)
	return nil
}

// ClipUpper caps each named column at its q-quantile. Values at or below the
// threshold are left untouched.
func ClipUpper(t *data.Table, q float64, cols ...string) ([]Threshold, error) {
	out := make([]Threshold, 0, len(cols))
	for _, name := range cols {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		upper := utils.Quantile(col, q)
		for i, v := range col {
			if v > upper {
				col[i] = upper
			}
		}
		out = append(out, Threshold{Column: name, Value: upper})
	}
	return out, nil
}

// Preprocess runs the full transformation on a copy of raw: drop the
// identifier (if any), impute, derive, clip.
func Preprocess(raw *data.Table, clipQuantile float64) (*data.Table, *Report, error) {
	rep := &Report{}
	rep.RawRows, rep.RawCols = raw.Shape()

	t := raw.Clone()
	t.DropColumn(data.ColCustID)

	medians, err := ImputeMedian(t, ImputeColumns...)
	if err != nil {
		return nil, nil, err
	}
	rep.Medians = medians

	if err := AddDerived(t); err != nil {
		return nil, nil, fmt.Errorf("derive features: %w", err)
	}

	clips, err := ClipUpper(t, clipQuantile, ClipColumns...)
	if err != nil {
		return nil, nil, fmt.Errorf("clip outliers: %w", err)
	}
	rep.ClipThresholds = clips

	rep.ProcessedRows, rep.ProcessedCols = t.Shape()
	rep.Columns = append([]string(nil), t.Names...)
	rep.Nulls = make(map[string]int, len(t.Names))
	for _, name := range t.Names {
		rep.Nulls[name] = t.NullCount(name)
	}
	return t, rep, nil
}

// PreprocessFile reads the raw CSV at in, preprocesses it and overwrites out.
func PreprocessFile(in, out string, clipQuantile float64) (*Report, error) {
	raw, err := data.ReadCSV(in)
	if err != nil {
		return nil, fmt.Errorf("load raw data: %w", err)
	}
	t, rep, err := Preprocess(raw, clipQuantile)
	if err != nil {
		return nil, err
	}
	if err := data.WriteCSV(out, t); err != nil {
		return nil, fmt.Errorf("write processed data: %w", err)
	}
	return rep, nil
}
