// Package deploy runs the ordered pipeline that turns a topology description
// into a running GNS3 lab: project, appliances, nodes, links, boot, then the
// optional day-0, verify, inventory, snapshot, publish and metrics stages.
//
// Stages share one *topology.Spec and write the identifiers they resolve
// back into it; every later stage depends on what earlier stages resolved.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newtron-network/gns3lab/pkg/gns3"
	"github.com/newtron-network/gns3lab/pkg/inventory"
	"github.com/newtron-network/gns3lab/pkg/settings"
	"github.com/newtron-network/gns3lab/pkg/topology"
	"github.com/newtron-network/gns3lab/pkg/util"
)

// Mode selects how recoverable failures are handled.
type Mode string

const (
	// ModeStrict aborts on the first stage failure. Day-0 script failures
	// are recorded in the Day0Report rather than failing the stage unless
	// Options.FailOnDay0 is set.
	ModeStrict Mode = "strict"
	// ModeLenient logs verify, publish and other optional-stage failures
	// and continues. Controller status errors and unresolved identifiers
	// are fatal in every mode.
	ModeLenient Mode = "lenient"
)

// Stage names.
const (
	StageProject    = "project"
	StageAppliances = "appliances"
	StageNodes      = "nodes"
	StageLinks      = "links"
	StageBoot       = "boot"
	StageDay0       = "day0"
	StageVerify     = "verify"
	StageInventory  = "inventory"
	StageSnapshot   = "snapshot"
	StagePublish    = "publish"
	StageMetrics    = "metrics"
)

// CoreStages always run, in this order.
var CoreStages = []string{StageProject, StageAppliances, StageNodes, StageLinks, StageBoot}

// OptionalStages run after the core stages, in this order, when enabled.
var OptionalStages = []string{StageDay0, StageVerify, StageInventory, StageSnapshot, StagePublish, StageMetrics}

// DefaultStages are the optional stages enabled when Options.Stages is nil.
var DefaultStages = []string{StageInventory}

// Controller is the subset of the GNS3 API the pipeline drives.
// *gns3.Client implements it.
type Controller interface {
	ListProjects(ctx context.Context) ([]gns3.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	CreateProject(ctx context.Context, name string) (*gns3.Project, error)
	ListAppliances(ctx context.Context) ([]gns3.Appliance, error)
	CreateNodeFromAppliance(ctx context.Context, projectID, applianceID string, placement gns3.NodePlacement) error
	ListNodes(ctx context.Context, projectID string) ([]gns3.Node, error)
	GetNode(ctx context.Context, projectID, nodeID string) (*gns3.Node, error)
	CreateLink(ctx context.Context, projectID string, sides [2]gns3.LinkNode) (*gns3.Link, error)
	StartNodes(ctx context.Context, projectID string) error
}

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, d *Deployer) error
}

// Options configures a Deployer. Zero values select defaults.
type Options struct {
	Mode     Mode
	Stages   []string // optional stages to enable; nil means DefaultStages
	Settings *settings.Settings
	Runner   CommandRunner
	Progress ProgressReporter
	Metrics  *Metrics

	// OutputDir receives the inventory and snapshot files.
	OutputDir string
	// MetricsFile is the Prometheus textfile written by the metrics stage.
	MetricsFile string
	// Publisher overrides the Redis publisher built from settings.
	Publisher Publisher
	// SSHPort is the port the verify stage dials; default 22.
	SSHPort int
	// FailOnDay0 makes any failed day-0 script fail the day0 stage, in
	// every mode.
	FailOnDay0 bool
}

// Publisher receives the finished inventory.
type Publisher interface {
	Publish(ctx context.Context, inv *inventory.Inventory) error
}

// StageResult records the outcome of one stage.
type StageResult struct {
	Name     string
	Err      error
	Duration time.Duration
	Skipped  bool // failed but tolerated in lenient mode
}

// Deployer runs the pipeline for one topology.
type Deployer struct {
	client   Controller
	spec     *topology.Spec
	opts     Options
	settings *settings.Settings
	runner   CommandRunner
	progress ProgressReporter
	metrics  *Metrics

	ports     map[string][]gns3.Port // node ID -> ports, fetched once per run
	day0      *Day0Report
	inventory *inventory.Inventory
	artifacts []string
	results   []StageResult
}

// New creates a Deployer. The spec is enriched in place by Run.
func New(client Controller, spec *topology.Spec, opts Options) *Deployer {
	if opts.Mode == "" {
		opts.Mode = ModeStrict
	}
	if opts.Stages == nil {
		opts.Stages = DefaultStages
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.SSHPort == 0 {
		opts.SSHPort = 22
	}
	d := &Deployer{
		client:   client,
		spec:     spec,
		opts:     opts,
		settings: opts.Settings,
		runner:   opts.Runner,
		progress: opts.Progress,
		metrics:  opts.Metrics,
		ports:    make(map[string][]gns3.Port),
	}
	if d.settings == nil {
		d.settings = settings.Default()
	}
	if d.runner == nil {
		d.runner = ExecRunner{}
	}
	if d.progress == nil {
		d.progress = nopProgress{}
	}
	return d
}

// Spec returns the topology being deployed.
func (d *Deployer) Spec() *topology.Spec { return d.spec }

// Mode returns the error-handling mode.
func (d *Deployer) Mode() Mode { return d.opts.Mode }

// Day0Report returns the day-0 outcome, or nil if the stage did not run.
func (d *Deployer) Day0Report() *Day0Report { return d.day0 }

// Inventory returns the inventory built by the inventory stage, if any.
func (d *Deployer) Inventory() *inventory.Inventory { return d.inventory }

// Artifacts returns the paths of files written during the run.
func (d *Deployer) Artifacts() []string { return d.artifacts }

// Results returns the outcome of every stage that ran.
func (d *Deployer) Results() []StageResult { return d.results }

// Stages returns the stage list Run will execute.
func (d *Deployer) Stages() []Stage {
	enabled := make(map[string]bool, len(d.opts.Stages))
	for _, s := range d.opts.Stages {
		enabled[s] = true
	}

	all := map[string]Stage{
		StageProject:    projectStage{},
		StageAppliances: applianceStage{},
		StageNodes:      nodeStage{},
		StageLinks:      linkStage{},
		StageBoot:       bootStage{},
		StageDay0:       day0Stage{},
		StageVerify:     verifyStage{},
		StageInventory:  inventoryStage{},
		StageSnapshot:   snapshotStage{},
		StagePublish:    publishStage{},
		StageMetrics:    metricsStage{},
	}

	var out []Stage
	for _, name := range CoreStages {
		out = append(out, all[name])
	}
	for _, name := range OptionalStages {
		if enabled[name] {
			out = append(out, all[name])
		}
	}
	return out
}

// ValidateStages rejects unknown optional stage names.
func ValidateStages(names []string) error {
	known := make(map[string]bool, len(OptionalStages))
	for _, s := range OptionalStages {
		known[s] = true
	}
	vb := &util.ValidationBuilder{}
	for _, n := range names {
		vb.Add(known[n], fmt.Sprintf("unknown stage %q", n))
	}
	return vb.Build()
}

// Run executes every stage in order and stops at the first fatal error,
// which is returned as "<stage> stage failed: <cause>". Resources already
// created on the controller are left in place.
func (d *Deployer) Run(ctx context.Context) error {
	stages := d.Stages()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name()
	}

	log := util.WithFields(map[string]interface{}{"project": d.spec.ProjectName, "mode": string(d.opts.Mode)})
	log.Infof("Deploying %d instances, %d links (%d stages)", d.spec.InstanceCount(), len(d.spec.Links), len(stages))
	d.progress.PipelineStart(d.spec.ProjectName, names)

	start := time.Now()
	var runErr error
	for i, stage := range stages {
		d.progress.StageStart(stage.Name(), i, len(stages))
		stageStart := time.Now()
		err := stage.Run(ctx, d)
		elapsed := time.Since(stageStart)

		d.metrics.observeStage(stage.Name(), err, elapsed)
		result := StageResult{Name: stage.Name(), Err: err, Duration: elapsed}

		if err != nil && d.tolerated(stage.Name(), err) {
			util.WithStage(stage.Name()).Warnf("Continuing after failure: %v", err)
			result.Skipped = true
			d.results = append(d.results, result)
			d.progress.StageEnd(stage.Name(), err, elapsed)
			continue
		}
		d.results = append(d.results, result)
		d.progress.StageEnd(stage.Name(), err, elapsed)

		if err != nil {
			runErr = fmt.Errorf("%s stage failed: %w", stage.Name(), err)
			break
		}
	}

	if runErr != nil && d.opts.MetricsFile != "" && d.enabled(StageMetrics) {
		// failed runs still leave their metrics behind
		if err := d.metrics.WriteTextfile(d.opts.MetricsFile); err != nil {
			util.Warnf("Writing metrics: %v", err)
		}
	}

	d.progress.PipelineEnd(d.results, time.Since(start), runErr)
	if runErr != nil {
		log.Errorf("Deploy aborted: %v", runErr)
	} else {
		log.Infof("Deploy complete in %s", time.Since(start).Round(time.Millisecond))
	}
	return runErr
}

// tolerated reports whether a stage failure may be skipped in the current
// mode. Core stage failures, controller status errors, resolution errors
// and cancellation are never tolerated.
func (d *Deployer) tolerated(stage string, err error) bool {
	if d.opts.Mode != ModeLenient {
		return false
	}
	for _, core := range CoreStages {
		if stage == core {
			return false
		}
	}
	if stage == StageDay0 && d.opts.FailOnDay0 {
		return false
	}
	switch {
	case errors.Is(err, util.ErrUnexpectedStatus), errors.Is(err, util.ErrUnresolved):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

func (d *Deployer) enabled(stage string) bool {
	for _, s := range d.opts.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// sleep waits for dur or until ctx is done.
func sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return nil
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
