package enrichment

import (
	"context"
	"time"

	"reclamations/internal/common/errors"
	"reclamations/internal/common/logger"
	"reclamations/internal/common/metrics"
	"reclamations/internal/models"
)

// Enricher never fails the caller: lookup problems are logged and degrade
// to an empty detail.
type Enricher struct {
	client  Lookuper
	cache   *Cache
	timeout time.Duration
	logger  logger.Logger
}

// NewEnricher builds an Enricher. cache may be nil.
func NewEnricher(client Lookuper, cache *Cache, timeout time.Duration, log logger.Logger) *Enricher {
	return &Enricher{
		client:  client,
		cache:   cache,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "enrichment"}),
	}
}

// Enrich looks up the customer by client id or phone number.
func (e *Enricher) Enrich(ctx context.Context, clientID, phone string) models.CustomerDetail {
	q, ok := SelectQuery(clientID, phone)
	if !ok {
		metrics.LookupOutcomes.WithLabelValues("skipped").Inc()
		e.logger.Debug("No usable client id or phone, lookup skipped", nil)
		return models.CustomerDetail{}
	}

	if e.cache != nil {
		if d, hit, err := e.cache.Get(ctx, q); err != nil {
			e.logger.Warn("Customer cache read failed", map[string]interface{}{"query": q.Key(), "error": err.Error()})
		} else if hit {
			metrics.LookupOutcomes.WithLabelValues("cached").Inc()
			return d
		}
	}

	detail, err := e.lookup(ctx, q)
	if err != nil {
		metrics.LookupOutcomes.WithLabelValues("failed").Inc()
		stdErr := errors.NewLookupError(err)
		e.logger.Warn("Customer lookup failed, continuing without enrichment", map[string]interface{}{
			"query":     q.Key(),
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
		return models.CustomerDetail{}
	}

	if detail.IsEmpty() {
		metrics.LookupOutcomes.WithLabelValues("miss").Inc()
	} else {
		metrics.LookupOutcomes.WithLabelValues("hit").Inc()
	}

	if e.cache != nil && !detail.IsEmpty() {
		if err := e.cache.Set(ctx, q, detail); err != nil {
			e.logger.Warn("Customer cache write failed", map[string]interface{}{"query": q.Key(), "error": err.Error()})
		}
	}
	return detail
}

// Accounts returns the customer's accounts in agency-account-suffix form.
// Unlike Enrich it reports failures.
func (e *Enricher) Accounts(ctx context.Context, clientID string) ([]string, error) {
	q, ok := SelectQuery(clientID, "")
	if !ok || q.ClientID == "" {
		return nil, errors.NewValidationError("clientId must contain exactly 8 digits", nil)
	}
	detail, err := e.lookup(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(detail.Accounts))
	for _, a := range detail.Accounts {
		out = append(out, a.Key())
	}
	return out, nil
}

func (e *Enricher) lookup(ctx context.Context, q Query) (models.CustomerDetail, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	raw, err := e.client.Lookup(ctx, q)
	if err != nil {
		return models.CustomerDetail{}, err
	}
	return Normalize(raw)
}
