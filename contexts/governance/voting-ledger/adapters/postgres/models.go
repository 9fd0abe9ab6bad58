package postgresadapter

import (
	"encoding/json"
	"time"

	"parkpulse/contexts/governance/voting-ledger/domain/entities"
	"parkpulse/contexts/governance/voting-ledger/ports"
)

type proposalModel struct {
	ID                      uint64    `gorm:"column:id;primaryKey"`
	ParkName                string    `gorm:"column:park_name"`
	ParkID                  string    `gorm:"column:park_id;index"`
	Description             string    `gorm:"column:description"`
	Creator                 string    `gorm:"column:creator;index"`
	EndTime                 time.Time `gorm:"column:end_time;index"`
	Status                  string    `gorm:"column:status;index"`
	YesVotes                uint64    `gorm:"column:yes_votes"`
	NoVotes                 uint64    `gorm:"column:no_votes"`
	NDVIBefore              float64   `gorm:"column:ndvi_before"`
	NDVIAfter               float64   `gorm:"column:ndvi_after"`
	PM25Before              float64   `gorm:"column:pm25_before"`
	PM25After               float64   `gorm:"column:pm25_after"`
	PM25IncreasePercent     float64   `gorm:"column:pm25_increase_percent"`
	VegetationLossPercent   float64   `gorm:"column:vegetation_loss_percent"`
	Children                uint64    `gorm:"column:children"`
	Adults                  uint64    `gorm:"column:adults"`
	Seniors                 uint64    `gorm:"column:seniors"`
	TotalAffectedPopulation uint64    `gorm:"column:total_affected_population"`
	CreatedAt               time.Time `gorm:"column:created_at"`
	UpdatedAt               time.Time `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string { return "ledger_proposals" }

func proposalModelFromEntity(p entities.Proposal) proposalModel {
	return proposalModel{
		ID:                      p.ID,
		ParkName:                p.ParkName,
		ParkID:                  p.ParkID,
		Description:             p.Description,
		Creator:                 p.Creator,
		EndTime:                 p.EndTime.UTC(),
		Status:                  p.Status.String(),
		YesVotes:                p.YesVotes,
		NoVotes:                 p.NoVotes,
		NDVIBefore:              p.Environmental.NDVIBefore,
		NDVIAfter:               p.Environmental.NDVIAfter,
		PM25Before:              p.Environmental.PM25Before,
		PM25After:               p.Environmental.PM25After,
		PM25IncreasePercent:     p.Environmental.PM25IncreasePercent,
		VegetationLossPercent:   p.Environmental.VegetationLossPercent,
		Children:                p.Demographics.Children,
		Adults:                  p.Demographics.Adults,
		Seniors:                 p.Demographics.Seniors,
		TotalAffectedPopulation: p.Demographics.TotalAffectedPopulation,
		CreatedAt:               p.CreatedAt.UTC(),
		UpdatedAt:               p.UpdatedAt.UTC(),
	}
}

func (m proposalModel) toEntity() entities.Proposal {
	status, terminal := entities.ParseTerminalStatus(m.Status)
	if !terminal {
		status = entities.StatusActive
	}
	return entities.Proposal{
		ID:          m.ID,
		ParkName:    m.ParkName,
		ParkID:      m.ParkID,
		Description: m.Description,
		Creator:     m.Creator,
		EndTime:     m.EndTime.UTC(),
		Status:      status,
		YesVotes:    m.YesVotes,
		NoVotes:     m.NoVotes,
		Environmental: entities.EnvironmentalData{
			NDVIBefore:            m.NDVIBefore,
			NDVIAfter:             m.NDVIAfter,
			PM25Before:            m.PM25Before,
			PM25After:             m.PM25After,
			PM25IncreasePercent:   m.PM25IncreasePercent,
			VegetationLossPercent: m.VegetationLossPercent,
		},
		Demographics: entities.Demographics{
			Children:                m.Children,
			Adults:                  m.Adults,
			Seniors:                 m.Seniors,
			TotalAffectedPopulation: m.TotalAffectedPopulation,
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type ballotModel struct {
	ProposalID uint64    `gorm:"column:proposal_id;primaryKey"`
	Voter      string    `gorm:"column:voter;primaryKey"`
	Choice     bool      `gorm:"column:choice"`
	CastAt     time.Time `gorm:"column:cast_at"`
}

func (ballotModel) TableName() string { return "ledger_ballots" }

func ballotModelFromEntity(b entities.Ballot) ballotModel {
	return ballotModel{
		ProposalID: b.ProposalID,
		Voter:      b.Voter,
		Choice:     b.Choice,
		CastAt:     b.CastAt.UTC(),
	}
}

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		ProposalID: m.ProposalID,
		Voter:      m.Voter,
		Choice:     m.Choice,
		CastAt:     m.CastAt.UTC(),
	}
}

// counterModel is the single-row allocation counter. Value is the total number
// of proposals ever created.
type counterModel struct {
	ID    int    `gorm:"column:id;primaryKey"`
	Value uint64 `gorm:"column:value"`
}

func (counterModel) TableName() string { return "ledger_counter" }

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type;index"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at;index"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "ledger_outbox" }

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at;index"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string { return "ledger_event_dedup" }

func marshalEnvelope(envelope ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(envelope)
}

// Models lists every table the ledger mirror owns, for AutoMigrate.
func Models() []any {
	return []any{
		&proposalModel{},
		&ballotModel{},
		&counterModel{},
		&outboxModel{},
		&eventDedupModel{},
	}
}
