package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"senti_ttt/internal/domain/board"
	errs "senti_ttt/internal/errors"
	advisorRPC "senti_ttt/microservices/proto"
)

// AdvisorGrpcRepo asks the remote advisor service for a suggestion.
type AdvisorGrpcRepo struct {
	client advisorRPC.AdvisorServiceClient
	log    *zap.SugaredLogger
}

func NewAdvisorGrpcRepository(conn grpc.ClientConnInterface, log *zap.SugaredLogger) *AdvisorGrpcRepo {
	return &AdvisorGrpcRepo{
		client: advisorRPC.NewAdvisorServiceClient(conn),
		log:    log,
	}
}

func (r *AdvisorGrpcRepo) Suggest(ctx context.Context, b board.Board, toMove board.Cell, history board.MoveHistory) (int, error) {
	in, err := advisorRPC.EncodeSuggestRequest(b, toMove, history)
	if err != nil {
		return board.NoMove, fmt.Errorf("%w: encode request: %v", errs.ErrSuggestionFailure, err)
	}
	out, err := r.client.Suggest(ctx, in)
	if err != nil {
		if status.Code(err) == codes.Unavailable {
			return board.NoMove, fmt.Errorf("%w: %w: %v", errs.ErrSuggestionFailure, errs.ErrAdvisorUnavailable, err)
		}
		return board.NoMove, fmt.Errorf("%w: %v", errs.ErrSuggestionFailure, err)
	}
	return advisorRPC.DecodeSuggestResponse(out)
}
