package model

import "time"

// PipelineStage is one of the five fixed funnel positions a card occupies.
type PipelineStage string

const (
	StageNew          PipelineStage = "new"
	StageInterested   PipelineStage = "interested"
	StageProposalSent PipelineStage = "proposal_sent"
	StageNegotiation  PipelineStage = "negotiation"
	StageClosed       PipelineStage = "closed"
)

// Stages lists the pipeline stages in funnel order. The order is advisory
// for display; transitions between any two stages are allowed.
var Stages = []PipelineStage{
	StageNew,
	StageInterested,
	StageProposalSent,
	StageNegotiation,
	StageClosed,
}

// stageLabels maps stages to their display labels.
var stageLabels = map[PipelineStage]string{
	StageNew:          "Novo",
	StageInterested:   "Interessado",
	StageProposalSent: "Proposta Enviada",
	StageNegotiation:  "Negociação",
	StageClosed:       "Fechado",
}

// Valid reports whether s is one of the five fixed stages.
func (s PipelineStage) Valid() bool {
	_, ok := stageLabels[s]
	return ok
}

// Label returns the display label for the stage.
func (s PipelineStage) Label() string {
	return stageLabels[s]
}

// Opportunity is a sales-pipeline card representing a prospective deal.
// It belongs to exactly one stage at a time.
type Opportunity struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Category string        `json:"category"`
	Value    float64       `json:"value"`
	Notes    string        `json:"notes,omitempty"`
	Stage    PipelineStage `json:"pipeline_stage"`
	Status   string        `json:"status"`

	// Optional associations; display fields are denormalized via enrichment.
	ContactID    *string `json:"contact_id,omitempty"`
	ContactName  string  `json:"contact_name,omitempty"`
	ProductID    *string `json:"product_id,omitempty"`
	ProductTitle string  `json:"product_title,omitempty"`
	ProductImage string  `json:"product_image,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
