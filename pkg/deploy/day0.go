package deploy

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/newtron-network/gns3lab/pkg/settings"
	"github.com/newtron-network/gns3lab/pkg/topology"
	"github.com/newtron-network/gns3lab/pkg/util"
)

// CommandRunner executes an external program and returns its combined
// output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Day0Failure is one instance whose day-0 script did not succeed.
type Day0Failure struct {
	Instance string
	Err      error
	Output   string
}

// Day0Report summarizes the day-0 stage.
type Day0Report struct {
	Configured []string
	Skipped    []string // not configured: sentinel OS or no console port
	Failed     []Day0Failure
}

// OK reports whether no script failed.
func (r *Day0Report) OK() bool { return len(r.Failed) == 0 }

// Day0Command returns the interpreter and arguments that configure one
// instance:
//
//	expect <dir>/day0-<os>.exp <server> <console> <os><seq> <ip> <gw>
func Day0Command(s *settings.Settings, server string, m topology.Member) (string, []string) {
	script := filepath.Join(s.Day0ScriptDir, "day0-"+m.OS()+".exp")
	return s.Day0Interpreter, []string{
		script,
		server,
		strconv.Itoa(m.Instance.Console),
		m.LoginID(),
		m.Instance.IP,
		m.Instance.Gateway,
	}
}

// day0Stage runs the per-OS console script for every configurable
// instance, one at a time. A failed script is recorded in the Day0Report
// and the remaining instances are still configured; the stage itself only
// fails when Options.FailOnDay0 is set.
type day0Stage struct{}

func (day0Stage) Name() string { return StageDay0 }

func (day0Stage) Run(ctx context.Context, d *Deployer) error {
	report := &Day0Report{}
	d.day0 = report
	sentinel := d.settings.NoConfigOS

	for _, m := range d.spec.Members() {
		name := m.Instance.Name
		log := util.WithNode(name)

		if m.OS() == "" || m.OS() == sentinel {
			report.Skipped = append(report.Skipped, name)
			continue
		}
		if m.Instance.Console == 0 {
			log.Warnf("No console port resolved, skipping day-0 configuration")
			report.Skipped = append(report.Skipped, name)
			continue
		}

		cmd, args := Day0Command(d.settings, d.spec.Server, m)
		log.Debugf("Running %s %s", cmd, strings.Join(args, " "))

		start := time.Now()
		out, err := d.runner.Run(ctx, cmd, args...)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			perr := &util.ProcessError{Command: filepath.Base(args[0]), Instance: name, Err: err}
			report.Failed = append(report.Failed, Day0Failure{Instance: name, Err: perr, Output: lastLine(out)})
			log.Warnf("Day-0 configuration failed: %v", err)
			continue
		}
		report.Configured = append(report.Configured, name)
		log.Infof("Day-0 configuration applied (%s)", time.Since(start).Round(time.Millisecond))
	}

	if report.OK() {
		return nil
	}
	attempted := len(report.Failed) + len(report.Configured)
	util.WithStage(StageDay0).Warnf("%d of %d day-0 scripts failed", len(report.Failed), attempted)
	if d.opts.FailOnDay0 {
		return fmt.Errorf("deploy: %d of %d day-0 scripts failed, first: %w",
			len(report.Failed), attempted, report.Failed[0].Err)
	}
	return nil
}

func (r *Day0Report) String() string {
	return fmt.Sprintf("%d configured, %d skipped, %d failed", len(r.Configured), len(r.Skipped), len(r.Failed))
}

func lastLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return s
}
