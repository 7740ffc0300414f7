package ingest

// ResolvedRow maps canonical fields to their raw string values. A field
// with no matching alias is simply absent from the map; downstream
// validation decides between a default and a failure.
type ResolvedRow map[Field]string

// ResolveRow maps one raw header→value record onto the canonical
// fields. For each field the first alias in priority order whose value
// is present and non-empty wins. Pure and total: any input map yields a
// result, unknown columns are ignored, and nothing ever fails here.
func ResolveRow(raw map[string]string) ResolvedRow {
	resolved := make(ResolvedRow, len(Fields))
	for _, field := range Fields {
		for _, alias := range AliasTable[field] {
			if value, ok := raw[alias]; ok && value != "" {
				resolved[field] = value
				break
			}
		}
	}
	return resolved
}
