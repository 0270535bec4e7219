package recon

import (
	"sort"

	"github.com/shopspring/decimal"

	"wealthos/governance/pkg/governance"
)

// Position is a holding as reported by one book of record.
type Position struct {
	InstrumentID string  `json:"instrument_id"`
	AssetClass   string  `json:"asset_class,omitempty"`
	Currency     string  `json:"currency"`
	Quantity     float64 `json:"quantity"`
	MarketValue  float64 `json:"market_value"`
}

// CashEntry is a cash movement or balance line.
type CashEntry struct {
	AccountID string  `json:"account_id"`
	Currency  string  `json:"currency"`
	Amount    float64 `json:"amount"`
}

// LedgerBalance is an account balance in the general ledger or a subledger.
type LedgerBalance struct {
	Account  string  `json:"account"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// Filter restricts which rows an extractor aggregates. Empty fields match
// everything.
type Filter struct {
	Currency   string
	AssetClass string
	AccountID  string
}

func (f Filter) matchPosition(p Position) bool {
	if f.Currency != "" && p.Currency != f.Currency {
		return false
	}
	if f.AssetClass != "" && p.AssetClass != f.AssetClass {
		return false
	}
	return true
}

func (f Filter) matchCash(c CashEntry) bool {
	if f.Currency != "" && c.Currency != f.Currency {
		return false
	}
	if f.AccountID != "" && c.AccountID != f.AccountID {
		return false
	}
	return true
}

// IborAborInput sums market values of the investment book (left) and the
// accounting book (right).
func IborAborInput(ibor, abor []Position, f Filter) Input {
	left, leftN := sumPositions(ibor, f, func(p Position) float64 { return p.MarketValue })
	right, rightN := sumPositions(abor, f, func(p Position) float64 { return p.MarketValue })
	return Input{
		Type:  governance.ReconIborAbor,
		Scope: governance.ReconScope{Currency: f.Currency},
		Left:  source("IBOR", "ibor", left, f.Currency, leftN),
		Right: source("ABOR", "abor", right, f.Currency, rightN),
	}
}

// CashBankInput sums the internal cash ledger (left) and the bank statement
// (right).
func CashBankInput(ledger, bank []CashEntry, f Filter) Input {
	left, leftN := sumCash(ledger, f)
	right, rightN := sumCash(bank, f)
	return Input{
		Type:  governance.ReconCashBank,
		Scope: governance.ReconScope{AccountID: f.AccountID, Currency: f.Currency},
		Left:  source("Cash ledger", "ledger", left, f.Currency, leftN),
		Right: source("Bank statement", "bank", right, f.Currency, rightN),
	}
}

// PositionsCustodianInput compares internal quantities (left) with the
// custodian's (right). The breakdown covers the sorted union of instrument
// ids; an instrument missing on one side counts as quantity 0 there.
func PositionsCustodianInput(internal, custodian []Position, f Filter) Input {
	leftQty := quantitiesByInstrument(internal, f)
	rightQty := quantitiesByInstrument(custodian, f)

	ids := make([]string, 0, len(leftQty)+len(rightQty))
	for id := range leftQty {
		ids = append(ids, id)
	}
	for id := range rightQty {
		if _, ok := leftQty[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	leftTotal, rightTotal := decimal.Zero, decimal.Zero
	breakdown := make([]BreakdownInput, len(ids))
	for i, id := range ids {
		l, r := leftQty[id], rightQty[id]
		leftTotal = leftTotal.Add(l)
		rightTotal = rightTotal.Add(r)
		breakdown[i] = BreakdownInput{
			Category: id,
			Left:     l.InexactFloat64(),
			Right:    r.InexactFloat64(),
		}
	}

	return Input{
		Type:      governance.ReconPositionsCustodian,
		Scope:     governance.ReconScope{Currency: f.Currency},
		Left:      source("Internal positions", "internal", leftTotal.InexactFloat64(), "", len(leftQty)),
		Right:     source("Custodian", "custodian", rightTotal.InexactFloat64(), "", len(rightQty)),
		Breakdown: breakdown,
	}
}

// GLSubledgerInput compares general-ledger balances (left) with subledger
// balances (right), broken down by account.
func GLSubledgerInput(gl, subledger []LedgerBalance, currency string) Input {
	leftBy := balancesByAccount(gl, currency)
	rightBy := balancesByAccount(subledger, currency)

	accounts := make([]string, 0, len(leftBy)+len(rightBy))
	for a := range leftBy {
		accounts = append(accounts, a)
	}
	for a := range rightBy {
		if _, ok := leftBy[a]; !ok {
			accounts = append(accounts, a)
		}
	}
	sort.Strings(accounts)

	leftTotal, rightTotal := decimal.Zero, decimal.Zero
	breakdown := make([]BreakdownInput, len(accounts))
	for i, a := range accounts {
		l, r := leftBy[a], rightBy[a]
		leftTotal = leftTotal.Add(l)
		rightTotal = rightTotal.Add(r)
		breakdown[i] = BreakdownInput{Category: a, Left: l.InexactFloat64(), Right: r.InexactFloat64()}
	}

	return Input{
		Type:      governance.ReconGLSubledger,
		Scope:     governance.ReconScope{Currency: currency},
		Left:      source("General ledger", "gl", leftTotal.InexactFloat64(), currency, len(leftBy)),
		Right:     source("Subledger", "subledger", rightTotal.InexactFloat64(), currency, len(rightBy)),
		Breakdown: breakdown,
	}
}

func source(name, system string, value float64, currency string, count int) governance.ReconSource {
	return governance.ReconSource{
		Name:        name,
		System:      system,
		Value:       value,
		Currency:    currency,
		RecordCount: &count,
	}
}

func sumPositions(rows []Position, f Filter, value func(Position) float64) (float64, int) {
	sum := decimal.Zero
	n := 0
	for _, p := range rows {
		if !f.matchPosition(p) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(value(p)))
		n++
	}
	return sum.InexactFloat64(), n
}

func sumCash(rows []CashEntry, f Filter) (float64, int) {
	sum := decimal.Zero
	n := 0
	for _, c := range rows {
		if !f.matchCash(c) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(c.Amount))
		n++
	}
	return sum.InexactFloat64(), n
}

func quantitiesByInstrument(rows []Position, f Filter) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, p := range rows {
		if !f.matchPosition(p) {
			continue
		}
		out[p.InstrumentID] = out[p.InstrumentID].Add(decimal.NewFromFloat(p.Quantity))
	}
	return out
}

func balancesByAccount(rows []LedgerBalance, currency string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, b := range rows {
		if currency != "" && b.Currency != currency {
			continue
		}
		out[b.Account] = out[b.Account].Add(decimal.NewFromFloat(b.Amount))
	}
	return out
}
