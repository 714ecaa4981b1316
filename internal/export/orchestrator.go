package export

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fishmad/grokstatev3-sub001/internal/config"
	"github.com/fishmad/grokstatev3-sub001/internal/email"
	"github.com/fishmad/grokstatev3-sub001/internal/models"
	"github.com/fishmad/grokstatev3-sub001/internal/reaxml"
	"github.com/fishmad/grokstatev3-sub001/internal/services"
	"github.com/fishmad/grokstatev3-sub001/internal/storage"
	"github.com/fishmad/grokstatev3-sub001/internal/syndication"
)

// IRetryScheduler re-enqueues an export attempt after a delay. Scheduling
// is fire-and-forget from the orchestrator's perspective.
type IRetryScheduler interface {
	ScheduleRetry(ctx context.Context, propertyID int64, attemptNumber int, delay time.Duration) error
}

// IOrchestrator runs one export attempt for a property.
type IOrchestrator interface {
	ExportProperty(ctx context.Context, propertyID int64, attemptNumber int) *Attempt
}

// orchestrator implements IOrchestrator.
type orchestrator struct {
	cfg        *config.Config
	properties services.IPropertyService
	builder    reaxml.IDocumentBuilder
	client     syndication.ISyndicationClient
	scheduler  IRetryScheduler
	notifier   email.IAdminNotifier
	archive    storage.IDocumentArchive // optional, may be nil
}

// NewOrchestrator creates a new export orchestrator. archive may be nil
// when document archiving is disabled.
func NewOrchestrator(
	cfg *config.Config,
	properties services.IPropertyService,
	builder reaxml.IDocumentBuilder,
	client syndication.ISyndicationClient,
	scheduler IRetryScheduler,
	notifier email.IAdminNotifier,
	archive storage.IDocumentArchive,
) IOrchestrator {
	return &orchestrator{
		cfg:        cfg,
		properties: properties,
		builder:    builder,
		client:     client,
		scheduler:  scheduler,
		notifier:   notifier,
		archive:    archive,
	}
}

// exportResponse is the best-effort shape of a successful export response.
// The remote network assigns a listing id on first export.
type exportResponse struct {
	ListingID string `json:"listing_id"`
}

// ExportProperty runs one attempt: load, build, send. Every failure is
// converted into a terminal or retrying state; nothing propagates out.
func (o *orchestrator) ExportProperty(ctx context.Context, propertyID int64, attemptNumber int) *Attempt {
	attempt := &Attempt{
		ID:            uuid.NewString(),
		PropertyID:    propertyID,
		AttemptNumber: attemptNumber,
		State:         StatePending,
		StartedAt:     time.Now().UTC(),
	}

	// Loading
	property, err := o.properties.FindPropertyWithRelations(ctx, propertyID)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			// Operator/data-integrity issue: no retry, no notification.
			o.finish(attempt, StateNotFound, 0, err.Error())
			return attempt
		}
		// Transient repository failure counts toward the retry budget.
		o.failedSend(ctx, attempt, property, 0, err.Error())
		return attempt
	}

	// Building
	doc, err := o.builder.Build(property)
	if err != nil {
		// Missing required fields will not resolve themselves on retry.
		o.finish(attempt, StateInvalid, 0, err.Error())
		return attempt
	}

	o.archiveDocument(ctx, attempt, doc)

	// Sending
	result, err := o.client.Send(ctx, doc)
	if err != nil {
		// AuthError and TransportError are both failed sends.
		o.failedSend(ctx, attempt, property, 0, err.Error())
		return attempt
	}
	if !result.Success {
		o.failedSend(ctx, attempt, property, result.StatusCode, result.Body)
		return attempt
	}

	o.finish(attempt, StateSucceeded, result.StatusCode, result.Body)
	o.recordExternalListingID(ctx, property, result.Body)
	return attempt
}

// failedSend decides retry-vs-exhausted for a failed send and records the
// outcome on the attempt.
func (o *orchestrator) failedSend(ctx context.Context, attempt *Attempt, property *models.Property, status int, detail string) {
	if attempt.AttemptNumber < o.cfg.ExportMaxAttempts {
		o.finish(attempt, StateRetrying, status, detail)
		if err := o.scheduler.ScheduleRetry(ctx, attempt.PropertyID, attempt.AttemptNumber+1, o.cfg.ExportRetryDelay); err != nil {
			log.Printf("ERROR failed to schedule export retry for property %d (attempt %d): %v",
				attempt.PropertyID, attempt.AttemptNumber+1, err)
		}
		return
	}

	o.finish(attempt, StateExhausted, status, detail)

	headline := ""
	if property != nil {
		headline = property.Headline
	}
	// Fire-and-forget: a notification failure must not fail the pipeline,
	// and the notifier only logs internally.
	o.notifier.NotifyAdmins(ctx, "Listing export failed", attempt.PropertyID, headline, detail)
}

// finish stamps the attempt and emits the per-attempt operational log line.
func (o *orchestrator) finish(attempt *Attempt, state State, status int, body string) {
	attempt.State = state
	attempt.ResponseStatus = status
	attempt.ResponseBody = body
	attempt.FinishedAt = time.Now().UTC()

	log.Printf("Export attempt: id=%s property=%d attempt=%d state=%s http_status=%d success=%t",
		attempt.ID, attempt.PropertyID, attempt.AttemptNumber, state, status, state == StateSucceeded)
}

// archiveDocument stores the serialized document for audit. Failures are
// logged and never fail the export.
func (o *orchestrator) archiveDocument(ctx context.Context, attempt *Attempt, doc *reaxml.Document) {
	if o.archive == nil {
		return
	}
	data, err := doc.Serialize()
	if err != nil {
		log.Printf("WARN could not serialize document for archive (property %d): %v", attempt.PropertyID, err)
		return
	}
	if err := o.archive.ArchiveDocument(ctx, attempt.PropertyID, attempt.ID, data); err != nil {
		log.Printf("WARN could not archive export document for property %d: %v", attempt.PropertyID, err)
	}
}

// recordExternalListingID persists the remote-assigned listing id after a
// first successful export so later exports update the same remote listing.
func (o *orchestrator) recordExternalListingID(ctx context.Context, property *models.Property, responseBody string) {
	if property.ExternalListingID != nil && *property.ExternalListingID != "" {
		return
	}
	var resp exportResponse
	if err := json.Unmarshal([]byte(responseBody), &resp); err != nil || resp.ListingID == "" {
		return
	}
	if err := o.properties.SetExternalListingID(ctx, property.ID, resp.ListingID); err != nil {
		log.Printf("WARN could not record external listing id %q for property %d: %v", resp.ListingID, property.ID, err)
	}
}
