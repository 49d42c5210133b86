// Package reporting derives read-only figures from ledger transactions.
// Every value is recomputed from the list it is given.
package reporting

import (
	"strconv"
	"strings"
	"time"

	"bodega-pos/internal/ledger"
	"bodega-pos/internal/model"

	"github.com/shopspring/decimal"
)

type Summary struct {
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
	Average decimal.Decimal `json:"average"`
}

// Summarize totals the transactions. Average is zero for an empty list and
// rounded to two decimals otherwise.
func Summarize(txs []ledger.Transaction) Summary {
	s := Summary{Total: decimal.Zero, Average: decimal.Zero}
	for _, tx := range txs {
		s.Total = s.Total.Add(tx.Total)
		s.Count++
	}
	if s.Count > 0 {
		s.Average = s.Total.Div(decimal.NewFromInt(int64(s.Count))).Round(2)
	}
	return s
}

type PaymentSplit struct {
	Cash     decimal.Decimal                         `json:"cash"`
	Digital  decimal.Decimal                         `json:"digital"`
	ByMethod map[model.PaymentMethod]decimal.Decimal `json:"by_method"`
}

// SplitByPayment separates cash from digital money. Every known method is
// present in ByMethod, zero when unused.
func SplitByPayment(txs []ledger.Transaction) PaymentSplit {
	split := PaymentSplit{
		Cash:     decimal.Zero,
		Digital:  decimal.Zero,
		ByMethod: make(map[model.PaymentMethod]decimal.Decimal, len(model.PaymentMethods)),
	}
	for _, m := range model.PaymentMethods {
		split.ByMethod[m] = decimal.Zero
	}
	for _, tx := range txs {
		method := tx.PaymentMethod
		if method == "" {
			method = model.PaymentCash
		}
		split.ByMethod[method] = split.ByMethod[method].Add(tx.Total)
		if method.IsDigital() {
			split.Digital = split.Digital.Add(tx.Total)
		} else {
			split.Cash = split.Cash.Add(tx.Total)
		}
	}
	return split
}

// OnDay keeps the transactions dated on the calendar day of now, in loc.
func OnDay(txs []ledger.Transaction, now time.Time, loc *time.Location) []ledger.Transaction {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := now.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	out := make([]ledger.Transaction, 0)
	for _, tx := range txs {
		if !tx.Date.Before(start) && tx.Date.Before(end) {
			out = append(out, tx)
		}
	}
	return out
}

// Search matches term, case-insensitively, against the counterparty name
// and tax id, the operator names and the decimal id. A blank term matches
// everything.
func Search(txs []ledger.Transaction, term string) []ledger.Transaction {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]ledger.Transaction, 0, len(txs))
	for _, tx := range txs {
		if needle == "" || matches(tx, needle) {
			out = append(out, tx)
		}
	}
	return out
}

func matches(tx ledger.Transaction, needle string) bool {
	fields := []string{
		tx.CounterpartyName,
		tx.CounterpartyTaxID,
		tx.OperatorFirstName,
		tx.OperatorLastName,
		strconv.FormatUint(uint64(tx.ID), 10),
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
