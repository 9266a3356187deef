package data

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	// ErrUnknownVersion is returned for a dataset version outside Versions.
	ErrUnknownVersion = errors.New("unknown dataset version")
	// ErrTooFewRows is returned when a table is too small to hold the
	// injected missing cells.
	ErrTooFewRows = errors.New("too few rows")
)

// VersionSpec pins the row count and seed of a dataset version.
type VersionSpec struct {
	Version int
	Rows    int
	Seed    int64
}

// Versions are the datasets the generator can reproduce. Version 2 simulates a
// later data collection with more customers.
var Versions = map[int]VersionSpec{
	1: {Version: 1, Rows: 8950, Seed: 42},
	2: {Version: 2, Rows: 9500, Seed: 99},
}

// LookupVersion returns the pinned row count and seed of version v.
func LookupVersion(v int) (VersionSpec, error) {
	ver, ok := Versions[v]
	if !ok {
		return VersionSpec{}, fmt.Errorf("%w: %d (want 1 or 2)", ErrUnknownVersion, v)
	}
	return ver, nil
}

var creditLimitTiers = []float64{500, 1000, 1500, 2000, 3000, 5000, 7500, 10000, 15000, 20000}

type missingSpec struct {
	column string
	count  int
}

// Missing cells injected per column. Order matters: it fixes the draw sequence.
var missingCells = []missingSpec{
	{ColCreditLimit, 1},
	{ColMinimumPayments, 313},
}

type columnGen struct {
	name string
	draw func(r *rand.Rand) float64
}

func exponential(scale float64) func(*rand.Rand) float64 {
	return func(r *rand.Rand) float64 { return round6(r.ExpFloat64() * scale) }
}

func uniform(lo, hi float64) func(*rand.Rand) float64 {
	return func(r *rand.Rand) float64 { return round6(lo + r.Float64()*(hi-lo)) }
}

// intUniform draws from [lo, hi).
func intUniform(lo, hi int) func(*rand.Rand) float64 {
	return func(r *rand.Rand) float64 { return float64(lo + r.Intn(hi-lo)) }
}

func choice(vals []float64) func(*rand.Rand) float64 {
	return func(r *rand.Rand) float64 { return vals[r.Intn(len(vals))] }
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

var columns = []columnGen{
	{ColBalance, exponential(1500)},
	{ColBalanceFrequency, uniform(0, 1)},
	{ColPurchases, exponential(1000)},
	{ColOneoffPurchases, exponential(500)},
	{ColInstallmentsPurchases, exponential(400)},
	{ColCashAdvance, exponential(900)},
	{ColPurchasesFrequency, uniform(0, 1)},
	{ColOneoffPurchasesFrequency, uniform(0, 1)},
	{ColPurchasesInstallmentsFrequency, uniform(0, 1)},
	{ColCashAdvanceFrequency, uniform(0, 0.5)},
	{ColCashAdvanceTrx, intUniform(0, 20)},
	{ColPurchasesTrx, intUniform(0, 100)},
	{ColCreditLimit, choice(creditLimitTiers)},
	{ColPayments, exponential(1500)},
	{ColMinimumPayments, exponential(400)},
	{ColPrcFullPayment, uniform(0, 1)},
	{ColTenure, intUniform(6, 13)},
}

// RawColumns lists the numeric columns of a generated table, in order.
func RawColumns() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.name
	}
	return out
}

// MissingCounts reports how many cells Generate blanks per column.
func MissingCounts() map[string]int {
	out := make(map[string]int, len(missingCells))
	for _, m := range missingCells {
		out[m.column] = m.count
	}
	return out
}

// MinRows is the smallest table GenerateCustomers accepts: every column keeps
// at least one observed value after missing cells are injected.
func MinRows() int {
	n := 1
	for _, m := range missingCells {
		n = max(n, m.count+1)
	}
	return n
}

// GenerateCustomers builds n synthetic credit-card customers from seed. Each
// column is drawn in full before the next, then missing cells are injected per
// column by sampling distinct row indices independently, so the blanked rows of
// two columns may overlap. n must exceed every missing-cell count.
func GenerateCustomers(n int, seed int64) (*Table, error) {
	for _, m := range missingCells {
		if m.count >= n {
			return nil, fmt.Errorf("%w: %d rows cannot hold %d missing %s cells", ErrTooFewRows, n, m.count, m.column)
		}
	}
	rng := rand.New(rand.NewSource(seed))

	t := &Table{IDName: ColCustID, IDs: make([]string, n)}
	for i := 0; i < n; i++ {
		t.IDs[i] = fmt.Sprintf("C1%04d", i+1)
	}
	for _, c := range columns {
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = c.draw(rng)
		}
		t.SetColumn(c.name, vals)
	}

	for _, m := range missingCells {
		col, _ := t.Column(m.column)
		for _, idx := range rng.Perm(n)[:m.count] {
			col[idx] = math.NaN()
		}
	}
	return t, nil
}

// GenerateVersion generates the dataset pinned by version v.
func GenerateVersion(v int) (*Table, VersionSpec, error) {
	ver, err := LookupVersion(v)
	if err != nil {
		return nil, VersionSpec{}, err
	}
	t, err := GenerateCustomers(ver.Rows, ver.Seed)
	if err != nil {
		return nil, VersionSpec{}, err
	}
	return t, ver, nil
}
