package outboxrepo

import (
	"context"
	"time"

	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/services"
	"handoff/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutbox writes outbox rows inside the caller's transaction.
type GormOutbox struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormOutbox(db *gorm.DB, now func() time.Time) *GormOutbox {
	return &GormOutbox{db: db, now: now}
}

func (o *GormOutbox) EnqueueNotification(ctx context.Context, missionID kernel.UUID, n services.Notification) error {
	payload, err := encodeNotification(n)
	if err != nil {
		return err
	}

	id := uuid.New()
	dto := MessageDTO{
		ID:          id,
		Kind:        string(ports.OutboxNotification),
		AggregateID: missionID.Bytes(),
		DedupKey:    "notification:" + id.String(),
		Payload:     payload,
		CreatedAt:   o.now().UTC(),
	}
	return o.db.WithContext(ctx).Create(&dto).Error
}

// EnqueueSettlement inserts the mission's settlement once; later calls hit the
// dedup key and do nothing.
func (o *GormOutbox) EnqueueSettlement(ctx context.Context, missionID kernel.UUID) error {
	payload, err := encodeSettlement(missionID)
	if err != nil {
		return err
	}

	dto := MessageDTO{
		ID:          uuid.New(),
		Kind:        string(ports.OutboxSettlement),
		AggregateID: missionID.Bytes(),
		DedupKey:    SettlementDedupKey(missionID),
		Payload:     payload,
		CreatedAt:   o.now().UTC(),
	}
	return o.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedup_key"}}, DoNothing: true}).
		Create(&dto).Error
}

// GormStore implements ports.OutboxStore for the relay.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FetchPending(ctx context.Context, limit, maxAttempts int) ([]ports.OutboxMessage, error) {
	var rows []MessageDTO
	err := s.db.WithContext(ctx).
		Where("published_at IS NULL AND attempt_count < ?", maxAttempts).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		msg, decodeErr := toMessage(row)
		if decodeErr != nil {
			// Undecodable rows are parked so they stop blocking the queue.
			if parkErr := s.park(ctx, row.ID, maxAttempts, decodeErr); parkErr != nil {
				return nil, parkErr
			}
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *GormStore) park(ctx context.Context, id uuid.UUID, maxAttempts int, cause error) error {
	return s.db.WithContext(ctx).
		Model(&MessageDTO{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_error":    truncateError(cause.Error()),
			"attempt_count": maxAttempts,
		}).Error
}

func (s *GormStore) MarkDispatched(ctx context.Context, id kernel.UUID, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&MessageDTO{}).
		Where("id = ?", id.Bytes()).
		Updates(map[string]any{
			"published_at": at.UTC(),
		}).Error
}

func (s *GormStore) MarkFailed(ctx context.Context, id kernel.UUID, cause error) error {
	msg := truncateError(cause.Error())
	return s.db.WithContext(ctx).
		Model(&MessageDTO{}).
		Where("id = ?", id.Bytes()).
		Updates(map[string]any{
			"last_error":    msg,
			"attempt_count": gorm.Expr("attempt_count + 1"),
		}).Error
}
