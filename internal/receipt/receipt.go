// Package receipt records the outcome of a provisioning run and publishes
// it to the configured receipt stores.
package receipt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dimbot/lexctl/internal/reconcile"
)

// SchemaVersion is written into every receipt.
const SchemaVersion = 1

// Result statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Prefix is the key prefix receipts are stored under.
const Prefix = "receipts/"

// Receipt is the JSON document written for every run.
type Receipt struct {
	SchemaVersion int        `json:"schema_version"`
	RunID         string     `json:"run_id"`
	StartedAt     string     `json:"started_at"`
	FinishedAt    string     `json:"finished_at"`
	Region        string     `json:"region"`
	CatalogHash   string     `json:"catalog_hash"`
	Result        Result     `json:"result"`
	Resources     []Resource `json:"resources"`
}

// Result is the overall run status.
type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Resource is one reconciled resource, in the order it was handled.
type Resource struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Qualifier string `json:"qualifier,omitempty"`
	Outcome   string `json:"outcome"`
}

// New starts a receipt for runID.
func New(runID, region, catalogHash string, started time.Time) *Receipt {
	return &Receipt{
		SchemaVersion: SchemaVersion,
		RunID:         runID,
		StartedAt:     started.UTC().Format(time.RFC3339),
		Region:        region,
		CatalogHash:   catalogHash,
		Resources:     []Resource{},
	}
}

// Add appends a reconciled resource.
func (r *Receipt) Add(key reconcile.Key, outcome reconcile.Outcome) {
	r.Resources = append(r.Resources, Resource{
		Type:      key.Type,
		Name:      key.Name,
		Qualifier: key.Qualifier,
		Outcome:   string(outcome),
	})
}

// Finish stamps the end time and status. A nil runErr is a success.
func (r *Receipt) Finish(finished time.Time, runErr error) {
	r.FinishedAt = finished.UTC().Format(time.RFC3339)
	if runErr != nil {
		r.Result = Result{Status: StatusFail, Error: runErr.Error()}
		return
	}
	r.Result = Result{Status: StatusSuccess}
}

// Key is the object key for the receipt.
func (r *Receipt) Key() string {
	return Prefix + r.RunID + ".json"
}

// Marshal encodes r as indented JSON with a trailing newline. Field order
// is fixed by the struct, so equal receipts encode to equal bytes.
func Marshal(r *Receipt) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("receipt: marshal: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a receipt and checks its schema version.
func Unmarshal(data []byte) (*Receipt, error) {
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("receipt: unmarshal: %w", err)
	}
	if r.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("receipt: unsupported schema_version %d", r.SchemaVersion)
	}
	return &r, nil
}
