package agents

import (
	"context"
	"errors"
	"fmt"

	"ipo-radar/envelope"
	"ipo-radar/extract"
	"ipo-radar/observability"
)

// fetchRecords runs one prompt through the upstream and extracts the reply's
// JSON array into T. Errors keep their type so callers can map them with
// envelope.Failure.
func fetchRecords[T any](ctx context.Context, llm LLMService, domain, prompt string, maxTokens int) ([]T, error) {
	metrics := observability.GetMetrics()
	metrics.RecordFetchRequest(domain)
	timer := metrics.NewTimer()
	log := observability.WithContext(ctx).With("domain", domain)

	records, err := func() ([]T, error) {
		resp, err := llm.Complete(ctx, prompt, maxTokens)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", domain, err)
		}

		records, err := extract.Records[T](resp.Segments)
		if err != nil {
			metrics.RecordExtractionFailure(domain, extract.Reason(err))
			return nil, fmt.Errorf("extracting %s: %w", domain, err)
		}
		return records, nil
	}()

	if err != nil {
		kind := envelope.Kind(err)
		timer.ObserveFetch(domain, "error")
		metrics.RecordFetchError(domain, kind)
		if errors.Is(err, extract.ErrNoValidData) {
			log.Warn("no usable data in model reply", "error", err)
		} else {
			log.Error("fetch failed", "kind", kind, "error", err)
		}
		return nil, err
	}

	timer.ObserveFetch(domain, "success")
	metrics.RecordRecords(domain, len(records))
	log.Info("fetch completed",
		"records", len(records),
		"duration_ms", timer.Duration().Milliseconds())
	return records, nil
}
