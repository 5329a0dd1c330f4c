package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/guildpost/guildpost/core"
	"github.com/guildpost/guildpost/ports"
)

// BountyHandlers declares the bounty actions. They exist to run the real
// marketplace traffic through the dispatch pipeline; the persistence behind
// the store port is someone else's problem.
type BountyHandlers struct {
	bounties ports.BountyStore
}

// NewBountyHandlers creates new bounty handlers.
func NewBountyHandlers(bounties ports.BountyStore) *BountyHandlers {
	return &BountyHandlers{bounties: bounties}
}

type createBountyRequest struct {
	Title       string `json:"title" form:"title" validate:"required,min=3,max=120"`
	Description string `json:"description" form:"description" validate:"max=2000"`
	Reward      string `json:"reward" form:"reward" validate:"required,numeric"`
}

// Collection serves the bounty list and creation.
func (h *BountyHandlers) Collection() Resource {
	return Resource{
		http.MethodGet: Action{
			Visibility: Public,
			Handle: func(ctx context.Context, req *Request) (*Response, error) {
				bounties, err := h.bounties.List(ctx)
				if err != nil {
					return nil, err
				}
				return &Response{
					Body:  map[string]any{"bounties": bounties},
					Cache: &CacheDirective{SMaxAge: 60, StaleWhileRevalidate: 300},
				}, nil
			},
		},
		http.MethodPost: Action{
			Visibility: Private,
			Schema:     func() any { return &createBountyRequest{} },
			Handle: func(ctx context.Context, req *Request) (*Response, error) {
				payload := req.Payload.(*createBountyRequest)

				reward, err := decimal.NewFromString(payload.Reward)
				if err != nil || reward.IsNegative() {
					return nil, &core.ValidationError{Details: []core.FieldError{
						{Field: "reward", Rule: "decimal", Message: "reward must be a non-negative decimal amount"},
					}}
				}

				bounty := &core.Bounty{
					ID:          uuid.New().String(),
					Title:       payload.Title,
					Description: payload.Description,
					Reward:      reward,
					Creator:     req.Identity.Address(),
					Status:      core.BountyOpen,
					CreatedAt:   time.Now(),
				}
				if err := h.bounties.Create(ctx, bounty); err != nil {
					return nil, err
				}
				return &Response{Status: http.StatusCreated, Body: bounty}, nil
			},
		},
	}
}

// Item serves a single bounty.
func (h *BountyHandlers) Item() Resource {
	return Resource{
		http.MethodGet: Action{
			Visibility: Public,
			Handle: func(ctx context.Context, req *Request) (*Response, error) {
				bounty, err := h.findBounty(ctx, req)
				if err != nil {
					return nil, err
				}
				return &Response{Body: bounty}, nil
			},
		},
	}
}

// Close transitions a bounty to closed. Only the creator may close it, and
// closing twice is a state conflict.
func (h *BountyHandlers) Close() Resource {
	return Resource{
		http.MethodPost: Action{
			Visibility: Private,
			Handle: func(ctx context.Context, req *Request) (*Response, error) {
				bounty, err := h.findBounty(ctx, req)
				if err != nil {
					return nil, err
				}
				if bounty.Creator != req.Identity.Address() {
					return nil, &core.AuthorizationError{Message: "only the bounty creator can close it"}
				}
				if err := bounty.Close(); err != nil {
					return nil, err
				}
				if err := h.bounties.Update(ctx, bounty); err != nil {
					return nil, err
				}
				return &Response{Body: bounty}, nil
			},
		},
	}
}

func (h *BountyHandlers) findBounty(ctx context.Context, req *Request) (*core.Bounty, error) {
	bounty, err := h.bounties.FindByID(ctx, req.Params["id"])
	if err != nil {
		return nil, err
	}
	if bounty == nil {
		return nil, &core.NotFoundError{Resource: "bounty"}
	}
	return bounty, nil
}
