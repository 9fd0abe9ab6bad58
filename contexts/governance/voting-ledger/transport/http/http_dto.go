package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type EnvironmentalDataDTO struct {
	NDVIBefore            float64 `json:"ndvi_before"`
	NDVIAfter             float64 `json:"ndvi_after"`
	PM25Before            float64 `json:"pm25_before"`
	PM25After             float64 `json:"pm25_after"`
	PM25IncreasePercent   float64 `json:"pm25_increase_percent"`
	VegetationLossPercent float64 `json:"vegetation_loss_percent"`
}

type DemographicsDTO struct {
	Children                uint64 `json:"children"`
	Adults                  uint64 `json:"adults"`
	Seniors                 uint64 `json:"seniors"`
	TotalAffectedPopulation uint64 `json:"total_affected_population"`
}

type ProposalDTO struct {
	ProposalID    uint64               `json:"proposal_id"`
	ParkName      string               `json:"park_name"`
	ParkID        string               `json:"park_id"`
	Description   string               `json:"description"`
	Creator       string               `json:"creator"`
	EndTime       string               `json:"end_time"`
	Status        string               `json:"status"`
	YesVotes      uint64               `json:"yes_votes"`
	NoVotes       uint64               `json:"no_votes"`
	Environmental EnvironmentalDataDTO `json:"environmental_data"`
	Demographics  DemographicsDTO      `json:"demographics"`
	CreatedAt     string               `json:"created_at"`
	UpdatedAt     string               `json:"updated_at"`
}

// CreateProposalRequest mirrors the proposal payload submitted by the
// analysis frontend. EndTime is RFC3339; when omitted the ledger applies the
// default thirty-day voting window.
type CreateProposalRequest struct {
	ParkName      string               `json:"park_name"`
	ParkID        string               `json:"park_id"`
	Description   string               `json:"description,omitempty"`
	Creator       string               `json:"creator"`
	EndTime       string               `json:"end_time,omitempty"`
	Environmental EnvironmentalDataDTO `json:"environmental_data"`
	Demographics  DemographicsDTO      `json:"demographics"`
}

type CreateProposalResponse struct {
	Status string      `json:"status"`
	Data   ProposalDTO `json:"data"`
}

type CastVoteRequest struct {
	Choice bool `json:"choice"`
}

type CastVoteResponse struct {
	Status string `json:"status"`
	Data   struct {
		ProposalID uint64 `json:"proposal_id"`
		Voter      string `json:"voter"`
		Choice     bool   `json:"choice"`
		YesVotes   uint64 `json:"yes_votes"`
		NoVotes    uint64 `json:"no_votes"`
	} `json:"data"`
}

type ProposalResponse struct {
	Status string      `json:"status"`
	Data   ProposalDTO `json:"data"`
}

type ProposalListResponse struct {
	Status string        `json:"status"`
	Data   []ProposalDTO `json:"data"`
}

type UserVoteResponse struct {
	Status string `json:"status"`
	Data   struct {
		ProposalID uint64 `json:"proposal_id"`
		Voter      string `json:"voter"`
		HasVoted   bool   `json:"has_voted"`
		Choice     *bool  `json:"choice,omitempty"`
		CastAt     string `json:"cast_at,omitempty"`
	} `json:"data"`
}

type ResolveResponse struct {
	Status string      `json:"status"`
	Data   ProposalDTO `json:"data"`
}

type ForceCloseRequest struct {
	Status string `json:"status"`
}

type LedgerInfoResponse struct {
	Status string `json:"status"`
	Data   struct {
		Service        string `json:"service"`
		TotalProposals uint64 `json:"total_proposals"`
		ActiveCount    int    `json:"active_count"`
		ClosedCount    int    `json:"closed_count"`
	} `json:"data"`
}
