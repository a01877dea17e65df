package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rgoncalves/fieldsync/internal/client/models"
	"github.com/rgoncalves/fieldsync/internal/client/repositories/outbox"
	"github.com/rgoncalves/fieldsync/internal/common"
	"github.com/rgoncalves/fieldsync/internal/logging"
)

// Flusher triggers an outbox push. Implemented by the sync engine.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Reading is one raw user-entered value paired with the measurement type
// it must validate against.
type Reading struct {
	Type models.MeasurementType
	Raw  string
}

// PhotoInput is one captured photo before it is folded into a pending
// submission.
type PhotoInput struct {
	MeasurementTypeID string
	Data              string // base64
	FileName          string
	MimeType          string
}

// SubmissionInput is everything the technician provides for one visit to
// a collection point.
type SubmissionInput struct {
	Point    models.CollectionPoint
	Readings []Reading
	Photos   []PhotoInput
}

// SubmissionService validates user input, persists it to the outbox and
// nudges the sync engine when the device is online. Persisting always
// succeeds or fails locally; the network never blocks a save.
type SubmissionService interface {
	Submit(ctx context.Context, in SubmissionInput) (string, error)
}

type submissionService struct {
	outbox outbox.Repository
	flush  Flusher
	online OnlineChecker
	log    logging.Logger

	now func() time.Time
}

func NewSubmissionService(out outbox.Repository, f Flusher, online OnlineChecker, log logging.Logger) SubmissionService {
	return &submissionService{outbox: out, flush: f, online: online, log: log, now: time.Now}
}

// Submit returns the local submission id as soon as the outbox write
// lands. When online, a flush runs in the background; its outcome does
// not affect the result.
func (s *submissionService) Submit(ctx context.Context, in SubmissionInput) (string, error) {
	sub, err := s.build(in)
	if err != nil {
		return "", err
	}

	id, err := s.outbox.Enqueue(ctx, *sub)
	if err != nil {
		return "", fmt.Errorf("error saving submission: %w", err)
	}

	if s.online.Online() {
		go func() {
			if err := s.flush.Flush(context.WithoutCancel(ctx)); err != nil {
				s.log.Error(ctx, "post-submit flush failed", "error", err)
			}
		}()
	}

	return id, nil
}

func (s *submissionService) build(in SubmissionInput) (*models.PendingSubmission, error) {
	if in.Point.ID == "" {
		return nil, fmt.Errorf("%w: no collection point selected", common.ErrValidation)
	}
	if len(in.Readings) == 0 && len(in.Photos) == 0 {
		return nil, fmt.Errorf("%w: nothing to submit", common.ErrValidation)
	}

	sub := &models.PendingSubmission{
		CollectionPointID: in.Point.ID,
		ClientID:          in.Point.ClientID,
		WorkAreaID:        in.Point.WorkAreaID,
		MeasuredAt:        s.now().UTC(),
	}

	for _, r := range in.Readings {
		value, err := r.Type.Validate(r.Raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
		if r.Raw == "" && !r.Type.Required {
			continue
		}
		sub.Items = append(sub.Items, models.MeasurementItem{
			Label:               r.Type.Name,
			Value:               value,
			MeasurementTypeID:   r.Type.ID,
			MeasurementTypeName: r.Type.Name,
		})
	}

	for _, p := range in.Photos {
		if p.Data == "" {
			return nil, fmt.Errorf("%w: photo for type %s has no data", common.ErrValidation, p.MeasurementTypeID)
		}
		// A placeholder item marks where the photo's URL lands after the
		// upload pipeline runs during sync.
		sub.Items = append(sub.Items, models.MeasurementItem{
			MeasurementTypeID: p.MeasurementTypeID,
			Image:             models.PhotoPlaceholderPrefix + p.MeasurementTypeID,
		})
		sub.Photos = append(sub.Photos, models.PendingPhoto{
			MeasurementTypeID: p.MeasurementTypeID,
			Data:              p.Data,
			FileName:          p.FileName,
			MimeType:          p.MimeType,
		})
	}

	return sub, nil
}
