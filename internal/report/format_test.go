package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/dimbot/lexctl/internal/engine"
	"github.com/dimbot/lexctl/internal/reconcile"
)

func sampleResult() *engine.Result {
	return &engine.Result{
		RunID: "run_20261016T120000Z_6f2c9a1b",
		Steps: []engine.Step{
			{Key: reconcile.Key{Type: "permission", Name: "update_service_data_table", Qualifier: "ID-1"}, Outcome: reconcile.Created},
			{Key: reconcile.Key{Type: "intent", Name: "OrderTaxi", Qualifier: "$LATEST"}, Outcome: reconcile.Exists},
			{Key: reconcile.Key{Type: "intent", Name: "OrderFood", Qualifier: "$LATEST"}, Outcome: reconcile.Created},
			{Key: reconcile.Key{Type: "alias", Name: "dim", Qualifier: "dimbot"}, Outcome: reconcile.Conceded},
		},
	}
}

func TestFormat(t *testing.T) {
	out := Format(sampleResult(), "sha256:abcdef0123456789abcdef", nil)

	for _, want := range []string{
		"  # lexctl run run_20261016T120000Z_6f2c9a1b\n",
		"  # catalog_hash: sha256:abcdef01\n",
		"    + permission/update_service_data_table@ID-1\n",
		"    = intent/OrderTaxi@$LATEST\n",
		"    + intent/OrderFood@$LATEST\n",
		"    ~ alias/dim@dimbot\n",
		"  2 created, 2 already existed.\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Error:") {
		t.Error("successful run printed an error line")
	}
}

func TestFormat_StepOrderPreserved(t *testing.T) {
	out := Format(sampleResult(), "", nil)
	taxi := strings.Index(out, "OrderTaxi")
	food := strings.Index(out, "OrderFood")
	if taxi < 0 || food < taxi {
		t.Errorf("steps out of order:\n%s", out)
	}
	if strings.Contains(out, "catalog_hash") {
		t.Error("empty hash printed")
	}
}

func TestFormat_Failure(t *testing.T) {
	res := &engine.Result{RunID: "run_20261016T120000Z_00000000"}
	out := Format(res, "", errors.New("engine: ensure permission: denied"))

	if !strings.Contains(out, "  Error: engine: ensure permission: denied\n") {
		t.Errorf("missing error line:\n%s", out)
	}
	if !strings.Contains(out, "0 created, 0 already existed.") {
		t.Errorf("missing summary:\n%s", out)
	}
}

func TestSummary_RerunCreatesNothing(t *testing.T) {
	res := sampleResult()
	for i := range res.Steps {
		res.Steps[i].Outcome = reconcile.Exists
	}
	if got := Summary(res); got != "0 created, 4 already existed." {
		t.Errorf("Summary = %q", got)
	}
}

func TestTruncateHash(t *testing.T) {
	tests := map[string]string{
		"sha256:0123456789abcdef": "sha256:01234567",
		"sha256:abc":              "sha256:abc",
		"md5:whatever":            "md5:whatever",
	}
	for in, want := range tests {
		if got := truncateHash(in); got != want {
			t.Errorf("truncateHash(%q) = %q, want %q", in, got, want)
		}
	}
}
