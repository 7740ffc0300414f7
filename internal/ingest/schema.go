// Package ingest turns heterogeneous platform sales exports into ledger
// entries. Exports arrive as delimited files with vendor-specific header
// names; an alias table maps them onto the four canonical fields, each
// row is validated independently, and valid rows are committed one by
// one so a single malformed line never loses the rest of the file.
package ingest

// Field is one of the canonical sale input attributes. The platform
// label is deliberately not a field: it is supplied per batch by the
// caller, never read from file content.
type Field string

const (
	FieldDate    Field = "date"
	FieldUnits   Field = "units"
	FieldRevenue Field = "revenue"
	FieldRoyalty Field = "royalty"
)

// Fields lists the canonical fields in template column order.
var Fields = []Field{FieldDate, FieldUnits, FieldRevenue, FieldRoyalty}

// AliasTableVersion identifies the alias data set. Adding a vendor's
// header spelling is a data change here, not a code change elsewhere.
const AliasTableVersion = 1

// AliasTable maps each canonical field to its accepted header names in
// priority order. Matching is case-sensitive against these literal
// spellings; resolution picks the first alias whose value is present
// and non-empty.
var AliasTable = map[Field][]string{
	FieldDate:    {"date", "Date", "sale_date"},
	FieldUnits:   {"units", "Units", "quantity", "Quantity"},
	FieldRevenue: {"revenue", "Revenue", "price", "Price"},
	FieldRoyalty: {"royalty", "Royalty", "earnings", "Earnings"},
}
