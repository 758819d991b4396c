// Package ingest turns raw statement CSV text into classified
// transactions plus row-level warnings. It performs no I/O.
package ingest

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gspc/statement-insights/internal/domain"
)

// RequiredHeaders is the fixed column set a statement must carry.
// Order in the file does not matter; matching is by exact trimmed name.
var RequiredHeaders = []string{
	"Bank Details",
	"Account Number",
	"Post Date",
	"Check",
	"Description",
	"Debit",
	"Credit",
	"Status",
	"Balance",
	"Classification",
	"GSPC Event",
	"GSPC Event Details",
}

// epoch is the sentinel for unparseable dates. Rows carrying it are
// either blank separators (skipped) or invalid (warned and dropped).
var epoch = time.Unix(0, 0).UTC()

var shortDateRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)

// Parse ingests raw CSV text and returns the chronologically sorted
// transaction list plus the ordered warning list. A structural failure
// (empty input, missing headers) yields zero transactions and a single
// error describing it; row-level failures only drop the affected row.
func Parse(csvText string) ([]domain.ClassifiedTransaction, []string) {
	lines := splitLines(csvText)
	if len(lines) == 0 {
		return nil, []string{"CSV is empty"}
	}

	header := splitLine(lines[0])
	if missing := missingHeaders(header); len(missing) > 0 {
		return nil, []string{"Missing required columns: " + strings.Join(missing, ", ")}
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}

	var (
		warnings     []string
		transactions []domain.ClassifiedTransaction
	)

	for i := 1; i < len(lines); i++ {
		cols := splitLine(lines[i])
		get := func(name string) string {
			j, ok := idx[name]
			if !ok || j >= len(cols) {
				return ""
			}
			return cols[j]
		}

		accountNumber := get("Account Number")
		postDate := parseDate(get("Post Date"))
		description := get("Description")
		debit := parseMoney(get("Debit"))
		credit := parseMoney(get("Credit"))
		balanceRaw := get("Balance")

		var balance *float64
		if balanceRaw != "" {
			b := parseMoney(balanceRaw)
			balance = &b
		}

		amount := credit - debit

		// Blank separator row: nothing meaningful in any column.
		if accountNumber == "" && description == "" &&
			debit == 0 && credit == 0 && balance == nil && postDate.Equal(epoch) {
			continue
		}

		if postDate.Equal(epoch) {
			warnings = append(warnings, fmt.Sprintf("Row %d: invalid Post Date", i+1))
			continue
		}

		tx := domain.Transaction{
			BankDetails:    get("Bank Details"),
			AccountNumber:  accountNumber,
			PostDate:       postDate,
			Check:          get("Check"),
			Description:    description,
			Status:         get("Status"),
			Classification: get("Classification"),
			Category:       get("Classification"),
			Event:          get("GSPC Event"),
			EventDetails:   get("GSPC Event Details"),
			Debit:          abs(debit),
			Credit:         abs(credit),
			Amount:         amount,
			Balance:        balance,
		}

		transactions = append(transactions, domain.ClassifiedTransaction{
			Transaction: tx,
			Direction:   classifyDirection(debit, credit, amount),
		})
	}

	// Downstream monthly bucketing and latest-balance tracking assume
	// chronological order; ties keep input order.
	sort.SliceStable(transactions, func(a, b int) bool {
		return transactions[a].PostDate.Before(transactions[b].PostDate)
	})

	return transactions, warnings
}

// classifyDirection evaluates the signed debit/credit values first and
// falls back to the sign of the net amount for statements that report
// only a signed amount column.
func classifyDirection(debit, credit, amount float64) domain.Direction {
	switch {
	case credit > 0 && debit == 0:
		return domain.DirectionIncome
	case debit > 0 && credit == 0:
		return domain.DirectionExpense
	case amount > 0:
		return domain.DirectionIncome
	case amount < 0:
		return domain.DirectionExpense
	default:
		return domain.DirectionUnknown
	}
}

// splitLines normalizes line endings and drops blank lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// splitLine splits one CSV line on commas, honoring double-quoted
// fields and doubled-quote escaping. Descriptions and event details may
// contain embedded commas and quotes, so a naive split will not do.
func splitLine(line string) []string {
	var (
		out      []string
		cur      strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	out = append(out, strings.TrimSpace(cur.String()))
	return out
}

func missingHeaders(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, h := range RequiredHeaders {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	return missing
}

// parseMoney parses one money field. Empty yields 0; parentheses force
// a negative (accounting convention); currency symbols, thousands
// separators and embedded whitespace are stripped. Non-numeric residue
// yields 0 rather than an error: malformed money is deliberately
// tolerated, unlike malformed dates.
func parseMoney(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	negByParens := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Join(strings.Fields(s), "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v = 0
	}
	if negByParens {
		return -abs(v)
	}
	return v
}

// parseDate tries the common calendar layouts first and then the
// M/D/YY(YY) pattern with two-digit years mapped into the 2000s. Both
// failing yields the epoch sentinel.
func parseDate(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return epoch
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"January 2, 2006",
		"Jan 2, 2006",
	}
	for _, layout := range layouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC()
		}
	}

	if m := shortDateRe.FindStringSubmatch(s); m != nil {
		mm, _ := strconv.Atoi(m[1])
		dd, _ := strconv.Atoi(m[2])
		yy, _ := strconv.Atoi(m[3])
		if yy < 100 {
			yy += 2000
		}
		if mm >= 1 && mm <= 12 && dd >= 1 && dd <= 31 {
			return time.Date(yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
		}
	}

	return epoch
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
