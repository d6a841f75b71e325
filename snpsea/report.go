package snpsea

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/bio/geneset"
	"github.com/grailbio/bio/perm"
	"github.com/grailbio/bio/score"
)

// ConditionPValueWriter writes condition_pvalues.txt rows, flushing after
// each one (spec.md §5: "Output streams are opened once and flushed after
// each row"; §6: "condition\tpvalue\tnulls_observed\tnulls_tested").
// Grounded on grailbio/bio's tsv.Writer usage in pileup/snp/output.go and
// encoding/fasta/index.go.
type ConditionPValueWriter struct {
	w *tsv.Writer
}

// NewConditionPValueWriter wraps w.
func NewConditionPValueWriter(w io.Writer) *ConditionPValueWriter {
	return &ConditionPValueWriter{w: tsv.NewWriter(w)}
}

// WriteRow emits one ColumnResult row and flushes.
func (c *ConditionPValueWriter) WriteRow(r perm.ColumnResult) error {
	c.w.WriteString(r.ConditionName)
	c.w.WriteString(strconv.FormatFloat(r.PValue, 'g', -1, 64))
	c.w.WriteInt64(int64(r.NullsObserved))
	c.w.WriteInt64(int64(r.NullsTested))
	if err := c.w.EndLine(); err != nil {
		return err
	}
	return c.w.Flush()
}

// NullPValueWriter writes null_pvalues.txt rows: the same four columns plus
// a trailing replicate index, with no header, in append mode across
// replicates (spec.md §6).
type NullPValueWriter struct {
	w *tsv.Writer
}

// NewNullPValueWriter wraps w (the caller is responsible for opening w in
// append mode across replicate batches).
func NewNullPValueWriter(w io.Writer) *NullPValueWriter {
	return &NullPValueWriter{w: tsv.NewWriter(w)}
}

// WriteRow emits one replicate's ColumnResult row and flushes.
func (n *NullPValueWriter) WriteRow(r perm.ColumnResult) error {
	n.w.WriteString(r.ConditionName)
	n.w.WriteString(strconv.FormatFloat(r.PValue, 'g', -1, 64))
	n.w.WriteInt64(int64(r.NullsObserved))
	n.w.WriteInt64(int64(r.NullsTested))
	n.w.WriteInt64(int64(r.Replicate))
	if err := n.w.EndLine(); err != nil {
		return err
	}
	return n.w.Flush()
}

// SNPGenesWriter writes snp_genes.txt: chrom, start, end, snp, n_genes,
// comma-joined gene names, with NA rows for absent/zero-gene SNPs (spec.md
// §6).
type SNPGenesWriter struct {
	w *tsv.Writer
	m *geneset.Matrix
}

// NewSNPGenesWriter wraps w.
func NewSNPGenesWriter(w io.Writer, m *geneset.Matrix) *SNPGenesWriter {
	return &SNPGenesWriter{w: tsv.NewWriter(w), m: m}
}

// WriteLocus emits one locus row (or NA row, if locus.Missing) and flushes.
func (s *SNPGenesWriter) WriteLocus(locus geneset.Locus) error {
	if locus.Missing {
		s.w.WriteString("NA")
		s.w.WriteString("NA")
		s.w.WriteString("NA")
		s.w.WriteString(locus.Name)
		s.w.WriteString("0")
		s.w.WriteString("")
		if err := s.w.EndLine(); err != nil {
			return err
		}
		return s.w.Flush()
	}
	s.w.WriteString(locus.Interval.Chrom)
	s.w.WriteInt64(locus.Interval.Start)
	s.w.WriteInt64(locus.Interval.End)
	s.w.WriteString(locus.Name)
	s.w.WriteInt64(int64(len(locus.Genes)))
	s.w.WriteString(joinGeneNames(locus.Genes, s.m))
	if err := s.w.EndLine(); err != nil {
		return err
	}
	return s.w.Flush()
}

func joinGeneNames(g geneset.Geneset, m *geneset.Matrix) string {
	names := make([]string, len(g))
	for i, row := range g {
		names[i] = m.RowName[row]
	}
	return joinStrings(names, ",")
}

func joinStrings(ss []string, sep string) string {
	if len(ss) == 0 {
		return ""
	}
	out := ss[0]
	for _, s := range ss[1:] {
		out += sep + s
	}
	return out
}

// SNPConditionScoreWriter writes snp_condition_scores.txt: one row per
// (locus, condition) pair (spec.md §6:
// "snp\tcondition\tgene\tscore").
type SNPConditionScoreWriter struct {
	w      *tsv.Writer
	m      *geneset.Matrix
	scorer *score.Scorer
	binary bool
}

// NewSNPConditionScoreWriter wraps w.
func NewSNPConditionScoreWriter(w io.Writer, m *geneset.Matrix, scorer *score.Scorer, binary bool) *SNPConditionScoreWriter {
	return &SNPConditionScoreWriter{w: tsv.NewWriter(w), m: m, scorer: scorer, binary: binary}
}

// WriteLocus emits one row per column for locus, skipping Missing loci.
func (s *SNPConditionScoreWriter) WriteLocus(locus geneset.Locus) error {
	if locus.Missing {
		return nil
	}
	for c := 0; c < s.m.Cols; c++ {
		gene := ""
		if !s.binary {
			if row, ok := score.MostSpecificGene(c, locus.Genes, s.m); ok {
				gene = s.m.RowName[row]
			}
		}
		rowScore := s.scorer.Score(c, []geneset.Geneset{locus.Genes}, s.m)
		s.w.WriteString(locus.Name)
		s.w.WriteString(s.m.ColName[c])
		s.w.WriteString(gene)
		s.w.WriteString(strconv.FormatFloat(rowScore, 'g', -1, 64))
		if err := s.w.EndLine(); err != nil {
			return err
		}
		if err := s.w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
