package lookup

import (
	"context"
	"errors"
	"fmt"

	"zonecheck/internal/metrics"

	"github.com/sourcegraph/conc/iter"
)

// ErrBatchTooLarge is returned when a batch exceeds the configured limit.
var ErrBatchTooLarge = errors.New("batch too large")

// BatchItem is one batch entry: exactly one of Result and Error is set.
type BatchItem struct {
	Index  int       `json:"index"`
	Result *Response `json:"result,omitempty"`
	Error  string    `json:"error,omitempty"`
}

type indexedRequest struct {
	index int
	req   Request
}

// LookupBatch resolves every request against one snapshot of the
// jurisdiction, in parallel, and returns the items in input order. A bad
// request produces an error item and does not affect the others. Requests
// naming a different jurisdiction are rejected per item.
func (s *Service) LookupBatch(ctx context.Context, jurisdictionID string, reqs []Request) ([]BatchItem, error) {
	if len(reqs) > s.opts.BatchMaxPoints {
		return nil, fmt.Errorf("%w: %d requests, limit is %d", ErrBatchTooLarge, len(reqs), s.opts.BatchMaxPoints)
	}
	snap, err := s.snapshots.Get(jurisdictionID)
	if err != nil {
		return nil, err
	}

	in := make([]indexedRequest, len(reqs))
	for i, r := range reqs {
		in[i] = indexedRequest{index: i, req: r}
	}

	mapper := iter.Mapper[indexedRequest, BatchItem]{MaxGoroutines: s.opts.BatchWorkers}
	items := mapper.Map(in, func(ir *indexedRequest) BatchItem {
		item := BatchItem{Index: ir.index}
		if err := ctx.Err(); err != nil {
			item.Error = err.Error()
			return item
		}
		if ir.req.JurisdictionID != "" && ir.req.JurisdictionID != jurisdictionID {
			metrics.LookupsTotal.WithLabelValues("error").Inc()
			item.Error = fmt.Sprintf("%v: jurisdiction %q does not match batch jurisdiction %q",
				ErrInvalidRequest, ir.req.JurisdictionID, jurisdictionID)
			return item
		}
		pt, err := ir.req.Point()
		if err != nil {
			metrics.LookupsTotal.WithLabelValues("error").Inc()
			item.Error = err.Error()
			return item
		}
		item.Result = s.lookupOnSnapshot(ctx, snap, ir.req, pt)
		return item
	})

	return items, nil
}
