// Package submission drives one complaint from client input to a created
// case-management record and a published event.
package submission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reclamations/internal/common/errors"
	"reclamations/internal/common/logger"
	"reclamations/internal/common/metrics"
	"reclamations/internal/common/observability"
	"reclamations/internal/complaints/enrichment"
	"reclamations/internal/complaints/payload"
	"reclamations/internal/complaints/reference"
	"reclamations/internal/models"

	"github.com/google/uuid"
)

type Enricher interface {
	Enrich(ctx context.Context, clientID, phone string) models.CustomerDetail
}

type RecordCreator interface {
	CreateItem(ctx context.Context, payload models.Payload) (map[string]interface{}, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload models.Payload) error
}

type Tracker interface {
	MarkPending(trackingID string)
	Complete(trackingID, caseNumber string) bool
}

// Config holds the server-side values stamped on every submission.
type Config struct {
	Topic         string
	RecordTimeout time.Duration
	Departement   string
	MotifBCC      string
	AvisMotive    string
}

const (
	defaultMotifBCC   = "Renforcement de la sécurité des identités"
	defaultAvisMotive = "Ils ne sont pas utilisés dans des chaînes de connexion de production et sont gérés conformément aux politiques de sécurité."
)

// Result is the outcome of a successful submission. PublishErr is set when
// the record was created but the event could not be published.
type Result struct {
	TrackingID string
	CaseNumber string
	State      State
	Payload    models.Payload
	PublishErr error
}

type Orchestrator struct {
	cfg       Config
	defaults  models.Payload
	enricher  Enricher
	records   RecordCreator
	publisher EventPublisher
	tracker   Tracker
	obs       *observability.Observability
	newID     func() string
	logger    logger.Logger
}

func NewOrchestrator(
	cfg Config,
	defaults models.Payload,
	enricher Enricher,
	records RecordCreator,
	publisher EventPublisher,
	tracker Tracker,
	obs *observability.Observability,
	log logger.Logger,
) *Orchestrator {
	if cfg.MotifBCC == "" {
		cfg.MotifBCC = defaultMotifBCC
	}
	if cfg.AvisMotive == "" {
		cfg.AvisMotive = defaultAvisMotive
	}
	return &Orchestrator{
		cfg:       cfg,
		defaults:  defaults,
		enricher:  enricher,
		records:   records,
		publisher: publisher,
		tracker:   tracker,
		obs:       obs,
		newID:     uuid.NewString,
		logger:    log.WithFields(map[string]interface{}{"component": "submission"}),
	}
}

// run tracks the state of one submission.
type run struct {
	o          *Orchestrator
	ctx        context.Context
	state      State
	trackingID string
	stageStart time.Time
}

func (r *run) to(next State) {
	if !canTransition(r.state, next) {
		panic(fmt.Sprintf("submission: illegal transition %s -> %s", r.state, next))
	}
	now := time.Now()
	r.o.obs.RecordStage(r.ctx, r.state.String(), now.Sub(r.stageStart), next != Failed)
	r.o.logger.Debug("Submission state changed", map[string]interface{}{
		"trackingId": r.trackingID,
		"from":       r.state.String(),
		"to":         next.String(),
	})
	r.state = next
	r.stageStart = now
}

// Submit enriches, builds, records and publishes one complaint. It returns
// an error only when no usable case-management record was created.
func (o *Orchestrator) Submit(ctx context.Context, in models.ComplaintInput) (*Result, error) {
	r := &run{o: o, ctx: ctx, state: Created, stageStart: time.Now()}

	r.to(LookupAttempted)
	detail := o.enricher.Enrich(ctx, in.ClientID, in.Phone)

	res := enrichment.Resolve(detail, in.SourceAccount, in.Currency)
	if res.Conflict {
		o.logger.Warn("Submitted currency differs from source account, using account currency", map[string]interface{}{
			"submitted":     in.Currency,
			"account":       res.Currency,
			"sourceAccount": in.SourceAccount,
		})
	}

	input, err := in.ToPayload()
	if err != nil {
		r.to(Failed)
		metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		return nil, errors.NewValidationError(err.Error(), nil)
	}

	r.trackingID = o.newID()
	overrides := o.overrides(in, res)
	overrides[models.KeyTrackingID] = r.trackingID
	final := payload.Build(o.defaults, input, overrides)
	r.to(Enriched)

	o.tracker.MarkPending(r.trackingID)

	caseNumber, err := o.createRecord(ctx, final)
	if err != nil {
		r.to(Failed)
		metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		o.logger.Error("Complaint record creation failed", map[string]interface{}{
			"trackingId": r.trackingID,
			"errorCode":  string(errors.CodeOf(err)),
			"error":      err.Error(),
		})
		return nil, err
	}
	r.to(RecordCreated)

	o.tracker.Complete(r.trackingID, caseNumber)
	final[models.KeyCaseNumber] = caseNumber
	final[models.KeyCaseNumberUpper] = caseNumber

	result := &Result{
		TrackingID: r.trackingID,
		CaseNumber: caseNumber,
		Payload:    final,
	}

	if err := o.publisher.Publish(ctx, o.cfg.Topic, final); err != nil {
		metrics.PublishFailures.Inc()
		o.logger.Error("Complaint event not published, record already created", map[string]interface{}{
			"trackingId": r.trackingID,
			"caseNumber": caseNumber,
			"error":      err.Error(),
		})
		result.PublishErr = err
	} else {
		r.to(Published)
	}

	r.to(Completed)
	result.State = r.state
	metrics.SubmissionsTotal.WithLabelValues("completed").Inc()
	o.logger.Info("Complaint submitted", map[string]interface{}{
		"trackingId": r.trackingID,
		"caseNumber": caseNumber,
		"published":  result.PublishErr == nil,
	})
	return result, nil
}

func (o *Orchestrator) createRecord(ctx context.Context, final models.Payload) (string, error) {
	if o.cfg.RecordTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RecordTimeout)
		defer cancel()
	}

	resp, err := o.records.CreateItem(ctx, final)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeConfigurationMissing {
			return "", err
		}
		return "", errors.NewRecordCreationError(err)
	}

	caseNumber, ok := reference.Extract(resp)
	if !ok {
		return "", errors.NewCaseNumberMissingError(reference.Keys)
	}
	return caseNumber, nil
}

// overrides are the server-computed values that always beat client input.
func (o *Orchestrator) overrides(in models.ComplaintInput, res enrichment.Resolution) models.Payload {
	ov := models.Payload{
		"SITE":         "WEB",
		"ZONE":         "ONLINE",
		"DEPARTEMENT":  o.cfg.Departement,
		"CANALUTILISE": "WEB",
	}
	if strings.TrimSpace(in.Currency) != "" {
		ov[models.KeyCurrency] = in.Currency
	}
	if in.AWSTemplateFormatVersion == nil {
		ov["AWSTemplateFormatVersion"] = ""
	}
	if in.MotifBCC == nil {
		ov["MOTIFBCC"] = o.cfg.MotifBCC
	}
	if in.AvisMotive == nil {
		ov["AVISMOTIVE"] = o.cfg.AvisMotive
	}
	if strings.TrimSpace(in.BranchManager) != "" {
		ov["GERANTAGENCE"] = in.BranchManager
	}
	if converted, ok := convertedAmount(in); ok {
		ov[models.KeyConvertedAmount] = converted
	}

	conditions := map[string]interface{}{}
	if res.DisplayName != "" {
		conditions[models.KeyCustomerName] = res.DisplayName
	}
	ov[models.KeyConditions] = conditions

	if res.AgencyCode != "" {
		ov[models.KeyClientAgency] = res.AgencyCode
	}
	if res.Currency != "" {
		ov[models.KeyCurrency] = res.Currency
	}
	return ov
}

// convertedAmount prefers an explicit MONTANTCONVERTI, else derives it from
// MONTANT.
func convertedAmount(in models.ComplaintInput) (interface{}, bool) {
	if strings.TrimSpace(in.ConvertedAmount) != "" {
		return in.ConvertedAmount, true
	}
	switch v := in.Amount.(type) {
	case nil:
		return nil, false
	case string:
		if f, ok := payload.ParseAmount(v); ok {
			return f, true
		}
		return v, true
	case float64:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}
