package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/collection"
	"github.com/Tinuva88/TCGFun/internal/draw"
	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

// ValidateRuleRequest is the ValidateRule payload. Nil id lists leave
// targets and topper sources unchecked.
type ValidateRuleRequest struct {
	Rule       guarantee.Rule  `json:"rule"`
	Scope      guarantee.Scope `json:"scope,omitempty"`
	RarityIDs  []string        `json:"rarity_ids,omitempty"`
	ProductIDs []string        `json:"product_ids,omitempty"`
}

// CollectionRequest is the Collection payload.
type CollectionRequest struct {
	Owner string `json:"owner,omitempty"`
}

// CollectionResponse lists an owner's holdings.
type CollectionResponse struct {
	Owner   string             `json:"owner"`
	Entries []collection.Entry `json:"entries"`
	Unique  int                `json:"unique"`
	Total   int                `json:"total"`
}

// GRPCServer exposes a Service over gRPC.
type GRPCServer struct {
	svc    *Service
	logger *zap.Logger
}

var _ SimulatorServer = (*GRPCServer)(nil)

// NewGRPCServer wraps svc.
//
// Precondition: svc and logger must be non-nil.
func NewGRPCServer(svc *Service, logger *zap.Logger) *GRPCServer {
	return &GRPCServer{svc: svc, logger: logger}
}

// Register adds the service to s.
func (g *GRPCServer) Register(s grpc.ServiceRegistrar) {
	RegisterSimulatorServer(s, g)
}

// Open implements SimulatorServer.
func (g *GRPCServer) Open(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req OpenRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decoding open request: %v", err)
	}
	op, err := g.svc.Open(ctx, req)
	if err != nil {
		return nil, g.toStatus("Open", err)
	}
	return g.reply("Open", op)
}

// ValidateRule implements SimulatorServer.
func (g *GRPCServer) ValidateRule(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ValidateRuleRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decoding rule: %v", err)
	}
	check := g.svc.ValidateRule(req.Rule, guarantee.EditContext{
		Scope:      req.Scope,
		RarityIDs:  req.RarityIDs,
		ProductIDs: req.ProductIDs,
	})
	return g.reply("ValidateRule", check)
}

// Collection implements SimulatorServer.
func (g *GRPCServer) Collection(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CollectionRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decoding collection request: %v", err)
	}
	owner := req.Owner
	if owner == "" {
		owner = g.svc.defaultOwner
	}
	entries, err := g.svc.Collection(ctx, owner)
	if err != nil {
		return nil, g.toStatus("Collection", err)
	}
	if entries == nil {
		entries = []collection.Entry{}
	}
	unique, total := collection.Summary(entries)
	return g.reply("Collection", CollectionResponse{Owner: owner, Entries: entries, Unique: unique, Total: total})
}

func (g *GRPCServer) reply(method string, v any) (*structpb.Struct, error) {
	out, err := ToStruct(v)
	if err != nil {
		g.logger.Error("encoding response", zap.String("method", method), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

func (g *GRPCServer) toStatus(method string, err error) error {
	code := statusCode(err)
	if code == codes.Internal {
		g.logger.Error("request failed", zap.String("method", method), zap.Error(err))
	}
	return status.Error(code, err.Error())
}

func statusCode(err error) codes.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, ErrMissingProduct), errors.Is(err, collection.ErrEmptyOwner):
		return codes.InvalidArgument
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrSetNotFound),
		errors.Is(err, draw.ErrUnknownProduct):
		return codes.NotFound
	case errors.Is(err, ErrCollectionDisabled),
		errors.Is(err, draw.ErrEmptyCardPool), errors.Is(err, draw.ErrEmptyPool),
		errors.Is(err, draw.ErrNoCardsForRarity), errors.Is(err, draw.ErrInvalidSlot),
		errors.Is(err, draw.ErrWrongProductType), errors.Is(err, draw.ErrInvalidProduct):
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// ToStruct converts v to a Struct through its JSON encoding.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("converting to struct: %w", err)
	}
	return out, nil
}

// FromStruct decodes s into v through its JSON encoding. A nil s leaves v unchanged.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
