package simulator

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

// Client is a typed wrapper around SimulatorClient.
type Client struct {
	raw SimulatorClient
}

// NewClient returns a typed client on cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{raw: NewSimulatorClient(cc)}
}

// Open opens a product remotely.
func (c *Client) Open(ctx context.Context, req OpenRequest) (Opening, error) {
	var op Opening
	err := c.call(ctx, c.raw.Open, req, &op)
	return op, err
}

// ValidateRule validates a rule remotely.
func (c *Client) ValidateRule(ctx context.Context, rule guarantee.Rule, ec guarantee.EditContext) (RuleCheck, error) {
	var check RuleCheck
	req := ValidateRuleRequest{Rule: rule, Scope: ec.Scope, RarityIDs: ec.RarityIDs, ProductIDs: ec.ProductIDs}
	err := c.call(ctx, c.raw.ValidateRule, req, &check)
	return check, err
}

// Collection reads an owner's holdings remotely.
func (c *Client) Collection(ctx context.Context, owner string) (CollectionResponse, error) {
	var resp CollectionResponse
	err := c.call(ctx, c.raw.Collection, CollectionRequest{Owner: owner}, &resp)
	return resp, err
}

func (c *Client) call(ctx context.Context, method func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error), req, out any) error {
	in, err := ToStruct(req)
	if err != nil {
		return err
	}
	resp, err := method(ctx, in)
	if err != nil {
		return err
	}
	return FromStruct(resp, out)
}
