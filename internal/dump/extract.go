package dump

// Extracted holds schema and constraint text exactly as it appeared in the dump.
type Extracted struct {
	Schema      []string
	Constraints []string
}

// Extract copies each block's verbatim text followed by a blank-line separator.
func Extract(res *ScanResult) Extracted {
	return Extracted{
		Schema:      chunks(res.Schemas),
		Constraints: chunks(res.Constraints),
	}
}

func chunks(blocks []Block) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Text+"\n")
	}
	return out
}
