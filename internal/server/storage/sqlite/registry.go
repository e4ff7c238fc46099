package sqlite

// Реестр ресурсов дашборда: таблица, колонки и сортировка по умолчанию.
// Универсальный слой data.go строит SQL только из колонок реестра,
// поэтому имена из запросов никогда не попадают в SQL напрямую.

type columnType int

const (
	colText columnType = iota
	colInt
)

type column struct {
	name     string
	typ      columnType
	nullable bool
}

type resourceSpec struct {
	table        string
	defaultOrder string
	columns      []column
}

func (spec *resourceSpec) column(name string) (column, bool) {
	for _, col := range spec.columns {
		if col.name == name {
			return col, true
		}
	}
	return column{}, false
}

var resourceSpecs = map[string]*resourceSpec{
	"calls": {
		table:        "calls",
		defaultOrder: "started_at",
		columns: []column{
			{name: "id", typ: colText},
			{name: "tenant_id", typ: colText},
			{name: "agent_id", typ: colText},
			{name: "caller_name", typ: colText},
			{name: "phone", typ: colText},
			{name: "direction", typ: colText},
			{name: "status", typ: colText},
			{name: "duration_sec", typ: colInt},
			{name: "started_at", typ: colText},
		},
	},
	"leads": {
		table:        "leads",
		defaultOrder: "created_at",
		columns: []column{
			{name: "id", typ: colText},
			{name: "tenant_id", typ: colText},
			{name: "name", typ: colText},
			{name: "phone", typ: colText},
			{name: "source", typ: colText},
			{name: "stage", typ: colText},
			{name: "owner_id", typ: colText},
			{name: "created_at", typ: colText},
		},
	},
	"clients": {
		table:        "clients",
		defaultOrder: "created_at",
		columns: []column{
			{name: "id", typ: colText},
			{name: "tenant_id", typ: colText},
			{name: "name", typ: colText},
			{name: "plan", typ: colText},
			{name: "status", typ: colText},
			{name: "created_at", typ: colText},
		},
	},
	"users": {
		table:        "users",
		defaultOrder: "created_at",
		columns: []column{
			{name: "id", typ: colText},
			{name: "tenant_id", typ: colText},
			{name: "email", typ: colText},
			{name: "name", typ: colText},
			{name: "role", typ: colText},
			{name: "created_at", typ: colText},
		},
	},
	"billing_summaries": {
		table:        "billing_summaries",
		defaultOrder: "period_start",
		columns: []column{
			{name: "id", typ: colText},
			{name: "tenant_id", typ: colText},
			{name: "period_start", typ: colText},
			{name: "call_minutes", typ: colInt},
			{name: "seat_count", typ: colInt},
			{name: "amount_cents", typ: colInt},
			{name: "currency", typ: colText},
		},
	},
	"system_messages": {
		table:        "system_messages",
		defaultOrder: "created_at",
		columns: []column{
			{name: "id", typ: colText},
			{name: "tenant_id", typ: colText},
			{name: "severity", typ: colText},
			{name: "text", typ: colText},
			{name: "created_at", typ: colText},
			{name: "expires_at", typ: colText, nullable: true},
		},
	},
}
