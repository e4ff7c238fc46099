package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/iudanet/callboard/pkg/api"
)

// filterFlag накапливает повторяющиеся -filter col=value
type filterFlag struct {
	values map[string]string
}

func (f *filterFlag) String() string {
	pairs := make([]string, 0, len(f.values))
	for k, v := range f.values {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (f *filterFlag) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	if !ok || key == "" {
		return fmt.Errorf("filter must be col=value, got %q", raw)
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
	return nil
}

// preferredColumns задает порядок колонок для известных ресурсов;
// остальные колонки строки идут следом по алфавиту
var preferredColumns = map[string][]string{
	"calls":             {"id", "tenant_id", "caller_name", "agent_id", "direction", "status", "duration_sec", "started_at"},
	"leads":             {"id", "tenant_id", "name", "phone", "source", "stage", "owner_id", "created_at"},
	"clients":           {"id", "tenant_id", "name", "plan", "status", "created_at"},
	"users":             {"id", "tenant_id", "email", "name", "role", "created_at"},
	"billing_summaries": {"id", "tenant_id", "period_start", "call_minutes", "seat_count", "amount_cents", "currency"},
	"system_messages":   {"id", "tenant_id", "severity", "text", "created_at", "expires_at"},
}

// renderRows печатает строки таблицей через tabwriter
func (c *Cli) renderRows(resource string, rows []api.Row) {
	columns := columnsFor(resource, rows)

	w := tabwriter.NewWriter(c.io, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cellValue(row[col])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush() //nolint:errcheck // пишем в терминал
}

func columnsFor(resource string, rows []api.Row) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			seen[col] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for _, col := range preferredColumns[resource] {
		if seen[col] {
			columns = append(columns, col)
			delete(seen, col)
		}
	}

	rest := make([]string, 0, len(seen))
	for col := range seen {
		rest = append(rest, col)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON-числа приходят как float64; целые печатаем без дроби
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
