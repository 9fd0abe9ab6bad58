package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"parkpulse/contexts/governance/voting-ledger/application/commands"
	"parkpulse/contexts/governance/voting-ledger/application/queries"
	"parkpulse/contexts/governance/voting-ledger/domain/entities"
	domainerrors "parkpulse/contexts/governance/voting-ledger/domain/errors"
	httptransport "parkpulse/contexts/governance/voting-ledger/transport/http"
)

// defaultVotingWindow applies when a creation request omits end_time,
// matching the original thirty-day ballot period.
const defaultVotingWindow = 30 * 24 * time.Hour

type Handler struct {
	Creates     commands.ProposalUseCase
	Votes       commands.VoteUseCase
	Resolutions commands.ResolutionUseCase
	Queries     queries.ProposalQueries
	Logger      *slog.Logger
}

func (h Handler) CreateProposalHandler(
	ctx context.Context,
	req httptransport.CreateProposalRequest,
) (httptransport.CreateProposalResponse, error) {
	endTime, err := h.resolveEndTime(req.EndTime)
	if err != nil {
		return httptransport.CreateProposalResponse{}, err
	}

	environmental := entities.EnvironmentalData{
		NDVIBefore:            req.Environmental.NDVIBefore,
		NDVIAfter:             req.Environmental.NDVIAfter,
		PM25Before:            req.Environmental.PM25Before,
		PM25After:             req.Environmental.PM25After,
		PM25IncreasePercent:   req.Environmental.PM25IncreasePercent,
		VegetationLossPercent: req.Environmental.VegetationLossPercent,
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = summaryFallback(strings.TrimSpace(req.ParkName), environmental)
	}

	proposal, err := h.Creates.CreateProposal(ctx, commands.CreateProposalCommand{
		ParkName:      req.ParkName,
		ParkID:        req.ParkID,
		Description:   description,
		Creator:       req.Creator,
		EndTime:       endTime,
		Environmental: environmental,
		Demographics: entities.Demographics{
			Children:                req.Demographics.Children,
			Adults:                  req.Demographics.Adults,
			Seniors:                 req.Demographics.Seniors,
			TotalAffectedPopulation: req.Demographics.TotalAffectedPopulation,
		},
	})
	if err != nil {
		return httptransport.CreateProposalResponse{}, err
	}
	return httptransport.CreateProposalResponse{
		Status: "success",
		Data:   toDTO(proposal),
	}, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	proposalID uint64,
	voter string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposalID,
		Voter:      voter,
		Choice:     req.Choice,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	resp := httptransport.CastVoteResponse{Status: "success"}
	resp.Data.ProposalID = result.Proposal.ID
	resp.Data.Voter = result.Ballot.Voter
	resp.Data.Choice = result.Ballot.Choice
	resp.Data.YesVotes = result.Proposal.YesVotes
	resp.Data.NoVotes = result.Proposal.NoVotes
	return resp, nil
}

func (h Handler) GetProposalHandler(
	ctx context.Context,
	proposalID uint64,
) (httptransport.ProposalResponse, error) {
	proposal, found, err := h.Queries.GetProposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	if !found {
		return httptransport.ProposalResponse{}, domainerrors.ErrProposalNotFound
	}
	return httptransport.ProposalResponse{
		Status: "success",
		Data:   toDTO(proposal),
	}, nil
}

func (h Handler) ListActiveProposalsHandler(ctx context.Context) (httptransport.ProposalListResponse, error) {
	items, err := h.Queries.ListActiveProposals(ctx)
	if err != nil {
		return httptransport.ProposalListResponse{}, err
	}
	resp := httptransport.ProposalListResponse{
		Status: "success",
		Data:   make([]httptransport.ProposalDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, toDTO(item))
	}
	return resp, nil
}

func (h Handler) ListClosedProposalsHandler(ctx context.Context) (httptransport.ProposalListResponse, error) {
	ids, err := h.Queries.ListClosedProposalIDs(ctx)
	if err != nil {
		return httptransport.ProposalListResponse{}, err
	}
	resp := httptransport.ProposalListResponse{
		Status: "success",
		Data:   make([]httptransport.ProposalDTO, 0, len(ids)),
	}
	for _, id := range ids {
		proposal, found, err := h.Queries.GetProposal(ctx, id)
		if err != nil {
			return httptransport.ProposalListResponse{}, err
		}
		if found {
			resp.Data = append(resp.Data, toDTO(proposal))
		}
	}
	return resp, nil
}

func (h Handler) UserVoteHandler(
	ctx context.Context,
	proposalID uint64,
	voter string,
) (httptransport.UserVoteResponse, error) {
	if _, found, err := h.Queries.GetProposal(ctx, proposalID); err != nil {
		return httptransport.UserVoteResponse{}, err
	} else if !found {
		return httptransport.UserVoteResponse{}, domainerrors.ErrProposalNotFound
	}

	resp := httptransport.UserVoteResponse{Status: "success"}
	resp.Data.ProposalID = proposalID
	resp.Data.Voter = strings.TrimSpace(voter)

	ballot, found, err := h.Queries.Ballots.GetBallot(ctx, proposalID, voter)
	if err != nil {
		return httptransport.UserVoteResponse{}, err
	}
	if found {
		choice := ballot.Choice
		resp.Data.HasVoted = true
		resp.Data.Choice = &choice
		resp.Data.CastAt = ballot.CastAt.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

func (h Handler) ResolveProposalHandler(
	ctx context.Context,
	capability *commands.AdminCapability,
	proposalID uint64,
) (httptransport.ResolveResponse, error) {
	proposal, err := h.Resolutions.Resolve(ctx, capability, proposalID)
	if err != nil {
		return httptransport.ResolveResponse{}, err
	}
	return httptransport.ResolveResponse{
		Status: "success",
		Data:   toDTO(proposal),
	}, nil
}

func (h Handler) ForceCloseProposalHandler(
	ctx context.Context,
	capability *commands.AdminCapability,
	proposalID uint64,
	req httptransport.ForceCloseRequest,
) (httptransport.ResolveResponse, error) {
	to, terminal := entities.ParseTerminalStatus(strings.TrimSpace(req.Status))
	if !terminal {
		return httptransport.ResolveResponse{}, domainerrors.ErrInvalidInput
	}
	proposal, err := h.Resolutions.ForceClose(ctx, capability, proposalID, to)
	if err != nil {
		return httptransport.ResolveResponse{}, err
	}
	return httptransport.ResolveResponse{
		Status: "success",
		Data:   toDTO(proposal),
	}, nil
}

func (h Handler) LedgerInfoHandler(ctx context.Context) (httptransport.LedgerInfoResponse, error) {
	total, err := h.Queries.TotalProposals(ctx)
	if err != nil {
		return httptransport.LedgerInfoResponse{}, err
	}
	activeIDs, err := h.Queries.ListActiveProposalIDs(ctx)
	if err != nil {
		return httptransport.LedgerInfoResponse{}, err
	}
	closedIDs, err := h.Queries.ListClosedProposalIDs(ctx)
	if err != nil {
		return httptransport.LedgerInfoResponse{}, err
	}
	resp := httptransport.LedgerInfoResponse{Status: "success"}
	resp.Data.Service = "voting-ledger"
	resp.Data.TotalProposals = total
	resp.Data.ActiveCount = len(activeIDs)
	resp.Data.ClosedCount = len(closedIDs)
	return resp, nil
}

func (h Handler) resolveEndTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := time.Now().UTC()
		if h.Creates.Clock != nil {
			now = h.Creates.Clock.Now().UTC()
		}
		return now.Add(defaultVotingWindow), nil
	}
	endTime, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domainerrors.ErrInvalidInput
	}
	return endTime.UTC(), nil
}

// summaryFallback builds the deterministic description used when the request
// carries none.
func summaryFallback(parkName string, data entities.EnvironmentalData) string {
	if parkName == "" {
		parkName = "Park"
	}
	return fmt.Sprintf("%s: NDVI %.2f→%.2f, PM2.5 +%.1f%%",
		parkName, data.NDVIBefore, data.NDVIAfter, data.PM25IncreasePercent)
}

func toDTO(proposal entities.Proposal) httptransport.ProposalDTO {
	return httptransport.ProposalDTO{
		ProposalID:  proposal.ID,
		ParkName:    proposal.ParkName,
		ParkID:      proposal.ParkID,
		Description: proposal.Description,
		Creator:     proposal.Creator,
		EndTime:     proposal.EndTime.UTC().Format(time.RFC3339),
		Status:      proposal.Status.String(),
		YesVotes:    proposal.YesVotes,
		NoVotes:     proposal.NoVotes,
		Environmental: httptransport.EnvironmentalDataDTO{
			NDVIBefore:            proposal.Environmental.NDVIBefore,
			NDVIAfter:             proposal.Environmental.NDVIAfter,
			PM25Before:            proposal.Environmental.PM25Before,
			PM25After:             proposal.Environmental.PM25After,
			PM25IncreasePercent:   proposal.Environmental.PM25IncreasePercent,
			VegetationLossPercent: proposal.Environmental.VegetationLossPercent,
		},
		Demographics: httptransport.DemographicsDTO{
			Children:                proposal.Demographics.Children,
			Adults:                  proposal.Demographics.Adults,
			Seniors:                 proposal.Demographics.Seniors,
			TotalAffectedPopulation: proposal.Demographics.TotalAffectedPopulation,
		},
		CreatedAt: proposal.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: proposal.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
