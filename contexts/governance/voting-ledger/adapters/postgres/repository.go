package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"parkpulse/contexts/governance/voting-ledger/domain/entities"
	domainerrors "parkpulse/contexts/governance/voting-ledger/domain/errors"
	"parkpulse/contexts/governance/voting-ledger/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository is the durable ledger mirror. Compound mutations run inside one
// transaction so state, counter, and ballots stay consistent; outbox rows are
// persisted alongside state changes.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) InsertProposal(ctx context.Context, proposal entities.Proposal) (entities.Proposal, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter counterModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", 1).
			First(&counter).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			counter = counterModel{ID: 1, Value: 0}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		}
		counter.Value++
		if err := tx.Save(&counter).Error; err != nil {
			return err
		}

		proposal.ID = counter.Value
		row := proposalModelFromEntity(proposal)
		return tx.Create(&row).Error
	})
	if err != nil {
		return entities.Proposal{}, r.logError("ledger_repo_insert_proposal_failed", err,
			"park_id", strings.TrimSpace(proposal.ParkID),
			"creator", strings.TrimSpace(proposal.Creator),
		)
	}
	return proposal, nil
}

func (r *Repository) GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, bool, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("id = ?", proposalID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, false, nil
		}
		return entities.Proposal{}, false, r.logError("ledger_repo_get_proposal_failed", err, "proposal_id", proposalID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListActiveProposalIDs(ctx context.Context) ([]uint64, error) {
	return r.listIDs(ctx, true)
}

func (r *Repository) ListClosedProposalIDs(ctx context.Context) ([]uint64, error) {
	return r.listIDs(ctx, false)
}

func (r *Repository) listIDs(ctx context.Context, active bool) ([]uint64, error) {
	tx := r.db.WithContext(ctx).Model(&proposalModel{}).Order("id ASC")
	if active {
		tx = tx.Where("status = ?", entities.StatusActive.String())
	} else {
		tx = tx.Where("status <> ?", entities.StatusActive.String())
	}
	var ids []uint64
	if err := tx.Pluck("id", &ids).Error; err != nil {
		return nil, r.logError("ledger_repo_list_proposal_ids_failed", err, "active", active)
	}
	return ids, nil
}

func (r *Repository) TotalProposals(ctx context.Context) (uint64, error) {
	var counter counterModel
	err := r.db.WithContext(ctx).Where("id = ?", 1).First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("ledger_repo_total_proposals_failed", err)
	}
	return counter.Value, nil
}

func (r *Repository) RecordBallot(ctx context.Context, ballot entities.Ballot) (entities.Proposal, error) {
	var updated proposalModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var proposal proposalModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ballot.ProposalID).
			First(&proposal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrProposalNotFound
			}
			return err
		}

		row := ballotModelFromEntity(ballot)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}

		column := "no_votes"
		if ballot.Choice {
			column = "yes_votes"
		}
		if err := tx.Model(&proposalModel{}).
			Where("id = ?", ballot.ProposalID).
			UpdateColumns(map[string]any{
				column:       gorm.Expr(column+" + 1"),
				"updated_at": ballot.CastAt.UTC(),
			}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", ballot.ProposalID).First(&updated).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrProposalNotFound) || errors.Is(err, domainerrors.ErrAlreadyVoted) {
			return entities.Proposal{}, err
		}
		return entities.Proposal{}, r.logError("ledger_repo_record_ballot_failed", err,
			"proposal_id", ballot.ProposalID,
			"voter", strings.TrimSpace(ballot.Voter),
		)
	}
	return updated.toEntity(), nil
}

func (r *Repository) TransitionStatus(
	ctx context.Context,
	proposalID uint64,
	to entities.ProposalStatus,
	updatedAt time.Time,
) (entities.Proposal, error) {
	var updated proposalModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&proposalModel{}).
			Where("id = ? AND status = ?", proposalID, entities.StatusActive.String()).
			UpdateColumns(map[string]any{
				"status":     to.String(),
				"updated_at": updatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&proposalModel{}).Where("id = ?", proposalID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerrors.ErrProposalNotFound
			}
			return domainerrors.ErrProposalNotActive
		}
		return tx.Where("id = ?", proposalID).First(&updated).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrProposalNotFound) || errors.Is(err, domainerrors.ErrProposalNotActive) {
			return entities.Proposal{}, err
		}
		return entities.Proposal{}, r.logError("ledger_repo_transition_status_failed", err,
			"proposal_id", proposalID,
			"status", to.String(),
		)
	}
	return updated.toEntity(), nil
}

func (r *Repository) HasVoted(ctx context.Context, proposalID uint64, voter string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ballotModel{}).
		Where("proposal_id = ? AND voter = ?", proposalID, strings.TrimSpace(voter)).
		Count(&count).Error
	if err != nil {
		return false, r.logError("ledger_repo_has_voted_failed", err,
			"proposal_id", proposalID,
			"voter", strings.TrimSpace(voter),
		)
	}
	return count > 0, nil
}

func (r *Repository) GetBallot(ctx context.Context, proposalID uint64, voter string) (entities.Ballot, bool, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ? AND voter = ?", proposalID, strings.TrimSpace(voter)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, false, nil
		}
		return entities.Ballot{}, false, r.logError("ledger_repo_get_ballot_failed", err,
			"proposal_id", proposalID,
			"voter", strings.TrimSpace(voter),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := marshalEnvelope(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ledger_repo_append_outbox_failed", create.Error,
			"event_id", row.OutboxID,
			"event_type", row.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC, outbox_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_pending_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	publishedAt = publishedAt.UTC()
	result := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		UpdateColumns(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &publishedAt,
		})
	if result.Error != nil {
		return r.logError("ledger_repo_mark_outbox_published_failed", result.Error, "outbox_id", outboxID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrEventConflict
	}
	return nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("ledger_repo_reserve_event_failed", create.Error, "event_id", row.EventID)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("ledger_repo_reserve_event_load_existing_failed", err, "event_id", row.EventID)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrEventConflict
	}
	return true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/voting-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ledger repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ProposalRepository = (*Repository)(nil)
var _ ports.BallotRegistry = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
