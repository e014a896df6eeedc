// Package commands implements the gitbridge CLI subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitbridge/internal/config"
	"github.com/Sumatoshi-tech/gitbridge/internal/observability"
	"github.com/Sumatoshi-tech/gitbridge/pkg/assign"
	"github.com/Sumatoshi-tech/gitbridge/pkg/branch"
	"github.com/Sumatoshi-tech/gitbridge/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitbridge/pkg/index"
)

// Sentinel errors for the assign command.
var (
	ErrNoRefs         = errors.New("no reference updates given; use --ref name=old:new at least once")
	ErrBadRefSpec     = errors.New("invalid ref spec, want name=old:new (old and new may be empty)")
	ErrRepositoryOpen = errors.New("failed to open repository")
)

// AssignCommand holds the configuration for the assign command.
type AssignCommand struct {
	refs        []string
	configPath  string
	indexDir    string
	save        bool
	noColor     bool
	quiet       bool
	showMetrics bool
}

// NewAssignCommand creates and configures the assign command.
func NewAssignCommand() *cobra.Command {
	ac := &AssignCommand{}

	cobraCmd := &cobra.Command{
		Use:   "assign [repository]",
		Short: "Compute the commit-to-branch assignment map for a push",
		Long: `Compute, for a batch of reference updates, which destination branch
every commit belongs to, and print the diagnostic map.

Each --ref takes the form name=old:new where old and new are commit
hashes; an empty old marks a brand-new reference and an empty new a
deletion. Example:

  gitbridge assign --ref main=1a2b3c:4d5e6f --ref topic=:789abc .`,
		RunE: ac.run,
	}

	cobraCmd.Flags().StringArrayVar(&ac.refs, "ref", nil, "Reference update, name=old:new (repeatable)")
	cobraCmd.Flags().StringVarP(&ac.configPath, "config", "c", "", "Config file path")
	cobraCmd.Flags().StringVar(&ac.indexDir, "index", "", "Persisted index directory (overrides config)")
	cobraCmd.Flags().BoolVar(&ac.save, "save", false, "Persist the resulting assignments into the index")
	cobraCmd.Flags().BoolVar(&ac.noColor, "no-color", false, "Disable colored output")
	cobraCmd.Flags().BoolVarP(&ac.quiet, "quiet", "q", false, "Suppress the per-branch summary")
	cobraCmd.Flags().BoolVar(&ac.showMetrics, "metrics", false, "Print engine metrics to stderr after the run")

	return cobraCmd
}

func (c *AssignCommand) run(cobraCmd *cobra.Command, args []string) error {
	ctx := cobraCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(c.refs) == 0 {
		return ErrNoRefs
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging.Level)

	repoPath := "."
	if len(args) > 0 {
		repoPath = args[0]
	}

	repo, err := gitlib.OpenRepository(repoPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRepositoryOpen, repoPath, err)
	}
	defer repo.Free()

	push, tableRecords, err := parsePush(c.refs)
	if err != nil {
		return err
	}

	branches := branch.NewTable(branch.RandomIDs{})
	for _, rec := range tableRecords {
		if err := branches.Add(rec); err != nil {
			return fmt.Errorf("register pushed branch: %w", err)
		}
	}

	store, err := c.openIndex(cfg, logger)
	if err != nil {
		return err
	}

	if store != nil {
		defer store.Close()
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewAssignMetrics(registry)

	params := assign.Params{
		DAG:      repo,
		Refs:     repo,
		Branches: branches,
		Logger:   logger,
		Metrics:  metrics,
		Options: assign.Options{
			AssignPrevious:        cfg.Assign.Previous,
			ConnectToPreviousHead: cfg.Assign.ConnectToPreviousHead,
			CompactOnFinish:       cfg.Assign.CompactOnFinish,
			TunnelMaxLen:          cfg.Assign.Tunnel.MaxLen,
			TunnelAssign:          cfg.Assign.Tunnel.Assign,
		},
	}
	if store != nil {
		params.Previous = store
	}

	engine, err := assign.New(params)
	if err != nil {
		return err
	}

	started := time.Now()

	result, err := engine.Assign(ctx, push)
	if err != nil {
		return fmt.Errorf("assign push: %w", err)
	}

	if err := c.printDump(ctx, result, repo); err != nil {
		return err
	}

	if !c.quiet {
		c.printSummary(result, branches, time.Since(started))
	}

	if c.save && store != nil {
		if err := store.PutAll(ctx, result.Branches); err != nil {
			return fmt.Errorf("save assignments: %w", err)
		}

		logger.InfoContext(ctx, "assign: persisted assignments", "commits", len(result.Branches))
	}

	if c.showMetrics {
		if err := printMetrics(os.Stderr, registry); err != nil {
			return err
		}
	}

	return nil
}

// printMetrics writes the gathered engine metrics in the prometheus text
// exposition format.
func printMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}

	return nil
}

func (c *AssignCommand) openIndex(cfg *config.Config, logger *slog.Logger) (index.Store, error) {
	dir := cfg.Index.Directory
	if c.indexDir != "" {
		dir = c.indexDir
	}

	if dir == "" {
		return nil, nil
	}

	store, err := index.OpenBadger(index.BadgerConfig{Dir: dir, Logger: logger})
	if err != nil {
		return nil, err
	}

	return store, nil
}

func (c *AssignCommand) printDump(ctx context.Context, result *assign.Result, repo *gitlib.Repository) error {
	subject := func(id gitlib.Hash) string { return repo.Subject(ctx, id) }

	if c.noColor {
		return result.Dump(os.Stdout, subject)
	}

	hashColor := color.New(color.FgYellow)
	branchColor := color.New(color.FgCyan)

	for _, id := range result.Order {
		labels := make([]string, 0, len(result.Branches[id]))
		for _, branchID := range result.Branches[id] {
			labels = append(labels, string(branchID))
		}

		hashColor.Fprint(os.Stdout, id.Prefix(12))
		fmt.Fprint(os.Stdout, " ")
		branchColor.Fprint(os.Stdout, strings.Join(labels, ","))

		if s := subject(id); s != "" {
			fmt.Fprint(os.Stdout, " "+s)
		}

		fmt.Fprintln(os.Stdout)
	}

	return nil
}

func (c *AssignCommand) printSummary(result *assign.Result, branches *branch.Table, elapsed time.Duration) {
	counts := make(map[branch.ID]int)

	for _, ids := range result.Branches {
		for _, id := range ids {
			counts[id]++
		}
	}

	w := table.NewWriter()
	w.SetOutputMirror(os.Stderr)
	w.AppendHeader(table.Row{"Branch", "Ref", "Commits"})

	appendRow := func(rec *branch.Record) {
		if counts[rec.ID] == 0 {
			return
		}

		w.AppendRow(table.Row{rec.ID, rec.Name, humanize.Comma(int64(counts[rec.ID]))})
	}

	for _, rec := range branches.Named() {
		appendRow(rec)
	}

	for _, rec := range branches.Anonymous() {
		appendRow(rec)
	}

	w.Render()
	fmt.Fprintf(os.Stderr, "%s commits assigned in %s\n",
		humanize.Comma(int64(len(result.Order))), elapsed.Round(time.Millisecond))
}

// parsePush turns --ref specs into push entries plus pre-registered branch
// records. The first ref is treated as the primary branch.
func parsePush(specs []string) ([]assign.PushRef, []*branch.Record, error) {
	push := make([]assign.PushRef, 0, len(specs))
	records := make([]*branch.Record, 0, len(specs))

	for i, spec := range specs {
		ref, err := parseRefSpec(spec)
		if err != nil {
			return nil, nil, err
		}

		push = append(push, ref)
		records = append(records, &branch.Record{
			ID:      branch.ID(ref.Name),
			Name:    ref.Name,
			Primary: i == 0,
		})
	}

	return push, records, nil
}

// parseRefSpec parses "name=old:new"; old and new may each be empty, and
// "name=new" is shorthand for a brand-new reference.
func parseRefSpec(spec string) (assign.PushRef, error) {
	name, heads, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return assign.PushRef{}, fmt.Errorf("%q: %w", spec, ErrBadRefSpec)
	}

	oldPart, newPart, hasColon := strings.Cut(heads, ":")
	if !hasColon {
		oldPart, newPart = "", oldPart
	}

	ref := assign.PushRef{Name: name}

	if oldPart != "" {
		ref.Old = gitlib.NewHash(oldPart)
		if ref.Old.IsZero() {
			return assign.PushRef{}, fmt.Errorf("%q: old head: %w", spec, ErrBadRefSpec)
		}
	}

	if newPart != "" {
		ref.New = gitlib.NewHash(newPart)
		if ref.New.IsZero() {
			return assign.PushRef{}, fmt.Errorf("%q: new head: %w", spec, ErrBadRefSpec)
		}
	}

	return ref, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level

	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
