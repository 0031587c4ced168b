package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"senti_ttt/internal/domain/board"
	errs "senti_ttt/internal/errors"
	advisorRPC "senti_ttt/microservices/proto"
)

type SuggestStore interface {
	Suggest(ctx context.Context, b board.Board, toMove board.Cell, history board.MoveHistory) (int, error)
}

type AdvisorUseCase struct {
	store SuggestStore
	log   *zap.SugaredLogger
	advisorRPC.UnimplementedAdvisorServiceServer
}

func NewAdvisorUseCase(store SuggestStore, log *zap.SugaredLogger) *AdvisorUseCase {
	return &AdvisorUseCase{
		store: store,
		log:   log,
	}
}

func (a *AdvisorUseCase) Suggest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	b, toMove, history, err := advisorRPC.DecodeSuggestRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if b.WinnerOrDraw().Terminal() {
		return nil, status.Error(codes.FailedPrecondition, "board is already decided")
	}

	pos, err := a.store.Suggest(ctx, b, toMove, history)
	if err != nil {
		a.log.Warnw("advisor failed", "board", b.Key(), "player", toMove.String(), "error", err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, status.FromContextError(err).Err()
		}
		if errors.Is(err, errs.ErrSuggestionFailure) {
			return nil, status.Error(codes.Unavailable, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return advisorRPC.EncodeSuggestResponse(pos)
}
