package dump

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
)

// Options configures a Converter.
type Options struct {
	Schema     string
	TableOrder []string
	// Strict turns every issue into an error returned before any output is written.
	Strict bool
	// OnScan is called once scanning is done, with the number of COPY blocks found.
	OnScan func(dataBlocks int)
	// OnBlock is called after each COPY block is decoded.
	OnBlock func(Block)
	Logger  *slog.Logger
}

// Converter runs scan, extract, decode and emit over one dump.
type Converter struct {
	opts Options
	log  *slog.Logger
}

func NewConverter(opts Options) *Converter {
	if opts.Schema == "" {
		opts.Schema = DefaultSchema
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{opts: opts, log: logger}
}

// Convert reads the whole dump from r and writes the generated script to w.
// Nothing is written to w unless the conversion succeeds.
func (c *Converter) Convert(r io.Reader, w io.Writer) (*Report, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return c.ConvertLines(lines, w)
}

// ConvertLines is Convert over an already split line sequence.
func (c *Converter) ConvertLines(lines []Line, w io.Writer) (*Report, error) {
	scanner := NewScanner(c.opts.Schema)
	res := scanner.Scan(lines)
	c.log.Debug("Scanned dump",
		"lines", res.Lines,
		"schema_blocks", len(res.Schemas),
		"constraint_blocks", len(res.Constraints),
		"data_blocks", len(res.Data),
	)
	if c.opts.OnScan != nil {
		c.opts.OnScan(len(res.Data))
	}

	report := &Report{
		SchemaBlocks:     len(res.Schemas),
		ConstraintBlocks: len(res.Constraints),
		DataBlocks:       len(res.Data),
	}
	for _, issue := range res.Issues {
		report.addIssue(issue)
	}

	ext := Extract(res)

	dec := &Decoder{Schema: c.opts.Schema, OnBlock: c.opts.OnBlock}
	inserts, issues := dec.Decode(res.Data)
	for _, issue := range issues {
		report.addIssue(issue)
	}
	report.RowsDecoded = inserts.Len()

	em := &Emitter{TableOrder: c.opts.TableOrder}
	for _, issue := range em.Unordered(inserts) {
		report.addIssue(issue)
	}

	for _, issue := range report.Issues {
		c.log.Warn("Dump issue", "kind", string(issue.Kind), "line", issue.Line, "table", issue.Table, "detail", issue.Detail)
	}
	if c.opts.Strict && len(report.Issues) > 0 {
		return report, &StrictError{Issues: report.Issues}
	}

	var buf bytes.Buffer
	counts, err := em.Emit(&buf, ext, inserts)
	if err != nil {
		return report, fmt.Errorf("failed to render script: %w", err)
	}
	report.Emitted = counts

	if _, err := w.Write(buf.Bytes()); err != nil {
		return report, fmt.Errorf("failed to write script: %w", err)
	}
	return report, nil
}
