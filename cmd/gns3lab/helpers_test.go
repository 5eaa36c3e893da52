package main

import (
	"errors"
	"reflect"
	"testing"

	"github.com/newtron-network/gns3lab/pkg/deploy"
	"github.com/newtron-network/gns3lab/pkg/topology"
	"github.com/newtron-network/gns3lab/pkg/util"
)

func TestDeployFlags_Stages(t *testing.T) {
	tests := []struct {
		name  string
		flags deployFlags
		want  []string
	}{
		{"defaults", deployFlags{}, []string{deploy.StageInventory}},
		{"no inventory", deployFlags{noInventory: true}, []string{}},
		{"debug adds snapshot", deployFlags{debug: true}, []string{deploy.StageInventory, deploy.StageSnapshot}},
		{"fail-on-day0 implies day0", deployFlags{failOnDay0: true}, []string{deploy.StageDay0, deploy.StageInventory}},
		{
			"everything",
			deployFlags{day0: true, verify: true, debug: true, publish: true, metricsFile: "m.prom"},
			[]string{
				deploy.StageDay0, deploy.StageVerify, deploy.StageInventory,
				deploy.StageSnapshot, deploy.StagePublish, deploy.StageMetrics,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.flags.stages()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("stages() = %v, want %v", got, tt.want)
			}
			if err := deploy.ValidateStages(got); err != nil {
				t.Errorf("stages() produced invalid stages: %v", err)
			}
		})
	}
}

func TestDeployFlags_Mode(t *testing.T) {
	if m := (deployFlags{}).mode(); m != deploy.ModeStrict {
		t.Errorf("mode() = %q, want strict", m)
	}
	if m := (deployFlags{lenient: true}).mode(); m != deploy.ModeLenient {
		t.Errorf("mode() = %q, want lenient", m)
	}
}

func TestApplyServerOverride(t *testing.T) {
	spec := &topology.Spec{Server: "192.0.2.10", Port: 3080}

	if err := applyServerOverride(spec, "", ""); err != nil {
		t.Fatalf("no override: %v", err)
	}
	if spec.Server != "192.0.2.10" || spec.Port != 3080 {
		t.Errorf("spec changed without override: %+v", spec)
	}

	if err := applyServerOverride(spec, "gns3.lab", "3081"); err != nil {
		t.Fatalf("override: %v", err)
	}
	if spec.Server != "gns3.lab" || spec.Port != 3081 {
		t.Errorf("override not applied: %+v", spec)
	}

	err := applyServerOverride(spec, "", "http")
	if !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("invalid port error = %v, want ErrInvalidConfig", err)
	}
}
