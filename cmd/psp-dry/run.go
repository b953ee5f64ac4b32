package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/broadinstitute/psp-dry/internal/gct"
	"github.com/broadinstitute/psp-dry/internal/history"
	"github.com/broadinstitute/psp-dry/internal/psp"
	"github.com/broadinstitute/psp-dry/internal/pspconfig"
	"github.com/broadinstitute/psp-dry/internal/pspio"
)

func newRunCmd() *cobra.Command {
	var (
		configPath       string
		forceAssay       string
		outPath          string
		outPwPath        string
		noOptimize       bool
		sampleFracFlag   float64
		probeFracFlag    float64
		probeSDFlag      float64
		historyPath      string
	)

	cmd := &cobra.Command{
		Use:   "run <input.gct>",
		Short: "Run the dry processing pipeline on a GCT-like matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDry(cmd, args[0], runOptions{
				configPath:     configPath,
				forceAssay:     forceAssay,
				outPath:        outPath,
				outPwPath:      outPwPath,
				noOptimize:     noOptimize,
				sampleFracFlag: sampleFracFlag,
				probeFracFlag:  probeFracFlag,
				probeSDFlag:    probeSDFlag,
				historyPath:    historyPath,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML configuration file (required)")
	cmd.Flags().StringVar(&forceAssay, "force-assay", "", "override assay resolution: p100 or gcp")
	cmd.Flags().StringVar(&outPath, "out", "", "output GCT path (default: derived from input)")
	cmd.Flags().StringVar(&outPwPath, "out-pw", "", "output audit table path (default: derived from input)")
	cmd.Flags().BoolVar(&noOptimize, "no-optimize", false, "skip offset optimization, compute distances only")
	cmd.Flags().Float64Var(&sampleFracFlag, "sample-frac-cutoff", psp.Missing, "override sample coverage cutoff")
	cmd.Flags().Float64Var(&probeFracFlag, "probe-frac-cutoff", psp.Missing, "override probe coverage cutoff")
	cmd.Flags().Float64Var(&probeSDFlag, "probe-sd-cutoff", psp.Missing, "override probe SD cutoff")
	cmd.Flags().StringVar(&historyPath, "history-db", "", "record this run to a DuckDB history database at this path")
	cmd.MarkFlagRequired("config")

	return cmd
}

type runOptions struct {
	configPath     string
	forceAssay     string
	outPath        string
	outPwPath      string
	noOptimize     bool
	sampleFracFlag float64
	probeFracFlag  float64
	probeSDFlag    float64
	historyPath    string
}

// runDry is the CLI's entry point for a run: load config, parse the
// GCT input, run the pipeline, write both outputs.
func runDry(cmd *cobra.Command, inputPath string, opts runOptions) error {
	log := loggerFromContext(cmd.Context())

	cfg, err := pspconfig.Load(opts.configPath)
	if err != nil {
		return err
	}

	triple, err := gct.Read(inputPath, gct.ReadOptions{NanValues: cfg.NanValues()})
	if err != nil {
		return fmt.Errorf("reading input gct: %w", err)
	}

	assayRaw := firstColValue(triple, cfg.AssayTypeField())
	tags := cfg.Tags()

	assayForBounds, err := psp.ResolveAssayType(assayRaw, opts.forceAssay, cfg.P100Assays(), cfg.GCPAssays())
	if err != nil {
		return fmt.Errorf("resolving assay for bounds lookup: %w", err)
	}
	bounds, err := cfg.OffsetBounds(assayForBounds)
	if err != nil {
		return err
	}
	outlierK, ok := cfg.DistSDCutoff(assayForBounds)
	if !ok {
		return fmt.Errorf("missing %s_dist_sd_cutoff in config", assayForBounds.String())
	}

	params := psp.PipelineParams{
		AssayRaw:                assayRaw,
		AssayOverride:           opts.forceAssay,
		P100Assays:              cfg.P100Assays(),
		GCPAssays:               cfg.GCPAssays(),
		ProvCodeField:           cfg.ProvCodeField(),
		ProvCodeDelimiter:       cfg.ProvCodeDelimiter(),
		LogTransformTag:         tags.Log,
		GCPNormalizationPeptide: cfg.GCPNormalizationPeptideID(),
		HistoneNormalizeTag:     tags.Histone,
		OverrideSampleFrac:      opts.sampleFracFlag,
		OverrideProbeFrac:       opts.probeFracFlag,
		OverrideProbeSD:         opts.probeSDFlag,
		Thresholds:              cfg,
		ManualRejectionField:    cfg.ManualRejectionField(),
		SampleFilterTag:         tags.SampleFilter,
		ManualRejectTag:         tags.ManualReject,
		ProbeFilterTag:          tags.ProbeFilter,
		NoOptimize:              opts.noOptimize,
		OffsetBounds:            bounds,
		OffsetTag:               tags.Offset,
		OutlierK:                outlierK,
		OutlierTag:              tags.Outlier,
		MedianParams: psp.MedianNormalizeParams{
			RowSubsetField:  cfg.RowSubsetField(),
			ColSubsetField:  cfg.ColSubsetField(),
			GlobalMedianTag: tags.GlobalMedian,
			RowMedianTag:    tags.RowMedian,
		},
		PlateField: cfg.DetPlateField(),
		WellField:  cfg.DetWellField(),
	}

	result, err := psp.RunPipeline(triple, params, log)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	applyOutputMetadata(result, cfg)

	outName, outPwName := gct.DeriveOutputNames(inputPath, opts.outPath, opts.outPwPath)
	if err := gct.Write(outName, result.Triple); err != nil {
		return fmt.Errorf("writing processed gct: %w", err)
	}
	if err := pspio.WriteAuditFile(outPwName, result.Audit); err != nil {
		return fmt.Errorf("writing audit table: %w", err)
	}

	log.Info("run complete", zap.String("out", outName), zap.String("out_pw", outPwName))

	if opts.historyPath != "" {
		if err := recordHistory(opts.historyPath, inputPath, result, params); err != nil {
			return fmt.Errorf("recording run history: %w", err)
		}
	}

	return nil
}

func firstColValue(t *psp.MatrixTriple, field string) string {
	col, ok := t.C.Fields[field]
	if !ok || len(col) == 0 {
		return ""
	}
	return col[0]
}

// applyOutputMetadata augments the output triple's column metadata: the
// provenance code field is rewritten with the final joined code, and
// optimization_offset is attached when offsets were produced.
func applyOutputMetadata(result psp.PipelineOutput, cfg *pspconfig.Config) {
	field := cfg.ProvCodeField()
	n := result.Triple.C.Len()
	code := result.Code.Join(cfg.ProvCodeDelimiter())
	codes := make([]string, n)
	for i := range codes {
		codes[i] = code
	}
	result.Triple.C.Fields[field] = codes

	if result.Offsets != nil {
		offsets := make([]string, n)
		for i, v := range result.Offsets {
			offsets[i] = fmt.Sprintf("%g", v)
		}
		result.Triple.C.Fields["optimization_offset"] = offsets
	}
}

func recordHistory(path, inputPath string, result psp.PipelineOutput, p psp.PipelineParams) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	thresholds, err := psp.ResolveThresholds(result.Assay, p.OverrideSampleFrac, p.OverrideProbeFrac, p.OverrideProbeSD, p.Thresholds)
	if err != nil {
		return err
	}

	_, err = store.RecordRun(history.RunRecord{
		InputPath:        inputPath,
		Assay:            result.Assay,
		ProvenanceCode:   result.Code.Join("+"),
		SampleFracCutoff: thresholds.SampleFracCutoff,
		ProbeFracCutoff:  thresholds.ProbeFracCutoff,
		ProbeSDCutoff:    thresholds.ProbeSDCutoff,
		RanAt:            time.Now().UTC().Format(time.RFC3339),
	}, result.Audit)
	return err
}
