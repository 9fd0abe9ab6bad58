package votingledger

import (
	"log/slog"
	"sync"

	httpadapter "parkpulse/contexts/governance/voting-ledger/adapters/http"
	"parkpulse/contexts/governance/voting-ledger/adapters/memory"
	"parkpulse/contexts/governance/voting-ledger/application/commands"
	"parkpulse/contexts/governance/voting-ledger/application/queries"
	"parkpulse/contexts/governance/voting-ledger/domain/entities"
	"parkpulse/contexts/governance/voting-ledger/ports"
)

// Module bundles the wired ledger surface: the HTTP handler, the use cases the
// workers drive, and the single admin capability issued at construction.
type Module struct {
	Handler     httpadapter.Handler
	Creates     commands.ProposalUseCase
	Votes       commands.VoteUseCase
	Resolutions commands.ResolutionUseCase
	Queries     queries.ProposalQueries
	Capability  *commands.AdminCapability
	Store       *memory.Store
}

type Dependencies struct {
	Proposals ports.ProposalRepository
	Ballots   ports.BallotRegistry
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// NewModule wires the use cases over the supplied ports. All writes share one
// lock so the ledger behaves as a single logical writer regardless of the
// backing store.
func NewModule(deps Dependencies) Module {
	writeLock := &sync.Mutex{}

	createUseCase := commands.ProposalUseCase{
		Proposals: deps.Proposals,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		WriteLock: writeLock,
		Logger:    deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Proposals: deps.Proposals,
		Ballots:   deps.Ballots,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		WriteLock: writeLock,
		Logger:    deps.Logger,
	}
	resolutionUseCase, capability := commands.NewResolutionUseCase(
		deps.Proposals,
		deps.Outbox,
		deps.Clock,
		deps.IDGen,
		writeLock,
		deps.Logger,
	)
	proposalQueries := queries.ProposalQueries{
		Proposals: deps.Proposals,
		Ballots:   deps.Ballots,
		Clock:     deps.Clock,
	}

	return Module{
		Handler: httpadapter.Handler{
			Creates:     createUseCase,
			Votes:       voteUseCase,
			Resolutions: resolutionUseCase,
			Queries:     proposalQueries,
			Logger:      deps.Logger,
		},
		Creates:     createUseCase,
		Votes:       voteUseCase,
		Resolutions: resolutionUseCase,
		Queries:     proposalQueries,
		Capability:  capability,
	}
}

func NewInMemoryModule(seed []entities.Proposal, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Proposals: store,
		Ballots:   store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
