package controllers

import "github.com/DJ45X/snowgen/internal/ledger"

// Common response types for HTTP controllers. IDs travel as decimal strings
// so JavaScript clients do not lose precision.

// mintResp lists freshly minted ids.
type mintResp struct {
	IDs []string `json:"ids"`
}

// partsResp is the field breakdown of one id.
type partsResp struct {
	Timestamp    int64 `json:"timestamp"`
	NodeGroup    int64 `json:"node_group"`
	NodeInstance int64 `json:"node_instance"`
	Sequence     int64 `json:"sequence"`
}

// entryResp is a ledger entry with its run.
type entryResp struct {
	RunID string            `json:"run_id"`
	Line  int               `json:"line"`
	Row   int               `json:"row"`
	Run   *ledger.RunRecord `json:"run,omitempty"`
}

// decodeResp describes one id, with its ledger entry when one exists.
type decodeResp struct {
	ID        string            `json:"id"`
	Parts     partsResp         `json:"parts"`
	Time      string            `json:"time"`
	Encodings map[string]string `json:"encodings"`
	Ledger    *entryResp        `json:"ledger,omitempty"`
}

// runsResp lists ledger runs.
type runsResp struct {
	Runs []ledger.RunRecord `json:"runs"`
}
