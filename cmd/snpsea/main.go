package main

/*
snpsea identifies tissues and cell types likely to be affected by risk loci
from a GWAS, by testing the loci's proximal genes for enrichment in
condition-specific gene expression. See package github.com/grailbio/bio/snpsea.
*/

import (
	"flag"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bio/snplist"
	"github.com/grailbio/bio/snpsea"
)

var (
	snps            = flag.String("snps", "", "Input file of SNP identifiers, one per line. Use 'randomN' (e.g. random100) to instead draw N random null SNPs.")
	geneMatrix      = flag.String("gene-matrix", "", "Gene-by-condition GCT matrix file")
	geneIntervals   = flag.String("gene-intervals", "", "BED4+ file of gene genomic intervals, named to match --gene-matrix row names")
	snpIntervals    = flag.String("snp-intervals", "", "BED4+ file of SNP genomic intervals, named to match --snps/--null-snps identifiers")
	nullSnps        = flag.String("null-snps", "", "Input file of null-pool SNP identifiers, one per line")
	out             = flag.String("out", "", "Output directory")
	condition       = flag.String("condition", "", "File of condition (matrix column) names to project out of every other column before scoring; quantitative mode only")
	slop            = flag.Int64("slop", snpsea.DefaultSlop, "Base pairs to extend a SNP's interval by when the exact interval overlaps zero genes")
	threads         = flag.Int("threads", snpsea.DefaultThreads, "Number of parallel scoring workers")
	nullSnpsets     = flag.Int("null-snpsets", snpsea.DefaultNullSnpsets, "Number of size-matched null replicate sets to score, for null_pvalues.txt; 0 is replaced by the default")
	minObservations = flag.Int("min-observations", snpsea.DefaultMinObservations, "Stop permuting a column once this many null draws meet or exceed the user score")
	maxIterations   = flag.Int("max-iterations", snpsea.DefaultMaxIterations, "Upper bound on null draws permuted per column")
	score           = flag.String("score", snpsea.DefaultScoreMethod, "Scoring method: 'single' or 'total'")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a[len(a)-flag.NArg():], " "))
	}

	args := snpsea.Args{
		Snps:            *snps,
		GeneMatrix:      *geneMatrix,
		GeneIntervals:   *geneIntervals,
		SnpIntervals:    *snpIntervals,
		NullSnps:        *nullSnps,
		Out:             *out,
		Slop:            *slop,
		Threads:         *threads,
		NullSnpsets:     *nullSnpsets,
		MinObservations: *minObservations,
		MaxIterations:   *maxIterations,
		Score:           *score,
	}
	if *condition != "" {
		names, err := snplist.ReadConditionsFromPath(*condition)
		if err != nil {
			log.Fatalf("reading --condition: %v", err)
		}
		args.Conditions = names
	}

	if err := snpsea.Run(args); err != nil {
		log.Fatalf("snpsea: %v", err)
	}
}
