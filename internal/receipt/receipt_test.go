package receipt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dimbot/lexctl/internal/reconcile"
	"github.com/dimbot/lexctl/internal/runid"
	"github.com/dimbot/lexctl/internal/target"
)

var (
	started  = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	finished = started.Add(3 * time.Second)
)

func sampleReceipt(id string) *Receipt {
	r := New(id, "us-east-1", "sha256:abc", started)
	r.Add(reconcile.Key{Type: "permission", Name: "update_service_data_table", Qualifier: "ID-1"}, reconcile.Created)
	r.Add(reconcile.Key{Type: "intent", Name: "OrderTaxi", Qualifier: "$LATEST"}, reconcile.Exists)
	r.Finish(finished, nil)
	return r
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

func TestMarshal_Deterministic(t *testing.T) {
	id := runid.At(started)
	a, err := Marshal(sampleReceipt(id))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, _ := Marshal(sampleReceipt(id))
	if !bytes.Equal(a, b) {
		t.Error("equal receipts encoded differently")
	}
	if !bytes.HasSuffix(a, []byte("}\n")) {
		t.Error("missing trailing newline")
	}
	if i, j := bytes.Index(a, []byte(`"schema_version"`)), bytes.Index(a, []byte(`"resources"`)); i < 0 || j < i {
		t.Error("fields not in declaration order")
	}
}

func TestUnmarshal(t *testing.T) {
	r := sampleReceipt(runid.At(started))
	data, _ := Marshal(r)

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Result.Status != StatusSuccess || len(got.Resources) != 2 {
		t.Errorf("got %+v", got)
	}
	if got.Resources[1].Outcome != "exists" {
		t.Errorf("Resources[1].Outcome = %q", got.Resources[1].Outcome)
	}

	if _, err := Unmarshal([]byte(`{"schema_version":99}`)); err == nil {
		t.Error("expected error for unknown schema version")
	}
	if _, err := Unmarshal([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestFinish_Failure(t *testing.T) {
	r := New("run_x", "us-east-1", "", started)
	r.Finish(finished, errors.New("engine: ensure bot \"dimbot\": denied"))

	if r.Result.Status != StatusFail || !strings.Contains(r.Result.Error, "denied") {
		t.Errorf("Result = %+v", r.Result)
	}
	if r.FinishedAt != "2026-10-16T12:00:03Z" {
		t.Errorf("FinishedAt = %q", r.FinishedAt)
	}
}

// ---------------------------------------------------------------------------
// Publish / List
// ---------------------------------------------------------------------------

type failingTarget struct{ *target.MemoryTarget }

func (failingTarget) Put(context.Context, string, []byte, string) error {
	return errors.New("bucket unreachable")
}

func TestPublish_AllStores(t *testing.T) {
	ctx := context.Background()
	stores := []target.Target{target.NewMemoryTarget("a"), target.NewMemoryTarget("b"), target.NewMemoryTarget("c")}
	r := sampleReceipt(runid.At(started))

	if err := Publish(ctx, stores, r, 2); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	for _, s := range stores {
		got, err := Load(ctx, s, r.RunID)
		if err != nil {
			t.Fatalf("Load from %s: %v", s.Name(), err)
		}
		if got.RunID != r.RunID {
			t.Errorf("%s: RunID = %q", s.Name(), got.RunID)
		}
	}
}

func TestPublish_OneStoreFails(t *testing.T) {
	ctx := context.Background()
	good := target.NewMemoryTarget("good")
	bad := failingTarget{target.NewMemoryTarget("bad")}
	r := sampleReceipt(runid.At(started))

	err := Publish(ctx, []target.Target{bad, good}, r, 1)
	if err == nil || !strings.Contains(err.Error(), "bucket unreachable") {
		t.Fatalf("err = %v, want store failure", err)
	}
	if _, err := Load(ctx, good, r.RunID); err != nil {
		t.Errorf("good store missing receipt: %v", err)
	}
}

func TestPublish_ReportsEveryFailedStore(t *testing.T) {
	ctx := context.Background()
	good := target.NewMemoryTarget("good")
	stores := []target.Target{
		failingTarget{target.NewMemoryTarget("east")},
		good,
		failingTarget{target.NewMemoryTarget("west")},
	}
	r := sampleReceipt(runid.At(started))

	err := Publish(ctx, stores, r, 3)
	if err == nil {
		t.Fatal("Publish succeeded with two failing stores")
	}
	for _, name := range []string{"east", "west"} {
		if !strings.Contains(err.Error(), "to "+name+":") {
			t.Errorf("err = %v, missing store %s", err, name)
		}
	}
	if strings.Contains(err.Error(), "to good:") {
		t.Errorf("err = %v, names the healthy store", err)
	}
	if _, err := Load(ctx, good, r.RunID); err != nil {
		t.Errorf("good store missing receipt: %v", err)
	}
}

func TestPublish_NoStores(t *testing.T) {
	if err := Publish(context.Background(), nil, sampleReceipt("run_x"), 4); err != nil {
		t.Errorf("Publish with no stores: %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := target.NewMemoryTarget("history")

	var ids []string
	for i := 0; i < 3; i++ {
		id := runid.At(started.Add(time.Duration(i) * time.Hour))
		ids = append(ids, id)
		if err := Publish(ctx, []target.Target{store}, sampleReceipt(id), 1); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	_ = store.Put(ctx, Prefix+"README.txt", []byte("x"), "text/plain")

	entries, err := List(ctx, store)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i, e := range entries {
		if want := ids[len(ids)-1-i]; e.RunID != want {
			t.Errorf("entries[%d] = %s, want %s", i, e.RunID, want)
		}
	}
}
