// Package batch analyzes many entities in one run, reporting progress per
// entity and keeping partial results when the run is cancelled.
package batch

import (
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/registry"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/risk"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/domain"
)

// Status is the outcome of one entity in a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Item is the result for one entity.
type Item struct {
	ID       domain.EntityID   `json:"cnpj"`
	Status   Status            `json:"status"`
	Company  *registry.Company `json:"company,omitempty"`
	Result   *risk.Result      `json:"risk,omitempty"`
	Degraded bool              `json:"degraded,omitempty"`
	Error    string            `json:"errorMsg,omitempty"`
}

// Report is a finished (or cancelled) run. Items keep input order.
type Report struct {
	ID        string `json:"id"`
	Items     []Item `json:"items"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Cancelled bool   `json:"cancelled"`
}

// Successes returns the items that were analyzed.
func (r *Report) Successes() []Item {
	var out []Item
	for _, it := range r.Items {
		if it.Status == StatusSuccess {
			out = append(out, it)
		}
	}
	return out
}

// ProgressFunc is called after each entity finishes. done counts finished
// entities, including the one passed.
type ProgressFunc func(done, total int, item Item)
