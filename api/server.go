package api

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/frankonly/finite/finite"
	"github.com/frankonly/finite/merkle"
	"github.com/frankonly/finite/storage"
)

// cidField carries the published CID next to the record fields
const cidField = "cid"

type Server struct {
	finite    *finite.Finite
	publisher *finite.Publisher
	logger    *zap.SugaredLogger
	opts      []finite.TransactionOption
}

// NewServer serves transactions of model f, publishing into store
func NewServer(f *finite.Finite, store storage.KvStore, logger *zap.SugaredLogger, opts ...finite.TransactionOption) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Server{
		finite:    f,
		publisher: finite.NewPublisher(store, logger),
		logger:    logger,
		opts:      opts,
	}
}

func (s *Server) Schema(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(s.finite.SchemaHash), nil
}

// Commit builds, publishes and digests one transaction. The request is a
// record without nonce or digest; input amounts are given as positive debits.
func (s *Server) Commit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	request, err := finite.RecordFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if request.Command == nil || request.Command.Action == "" {
		return nil, status.Error(codes.InvalidArgument, "missing command")
	}

	txn, err := s.finite.Transaction(s.publisher.Transact, s.opts...)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	if err := txn.Action(request.Command.Action, request.Command.Multiplier); err != nil {
		return nil, appendError(err)
	}
	for _, input := range request.Input {
		if err := txn.Input(input.Address, input.Amount); err != nil {
			return nil, appendError(err)
		}
	}
	for _, output := range request.Output {
		if err := txn.Output(output.Address, output.Amount); err != nil {
			return nil, appendError(err)
		}
	}

	receipt, err := txn.Commit(ctx)
	switch {
	case receipt == nil:
		return nil, appendError(err)
	case err != nil:
		s.logger.Errorw("failed to publish transaction", "digest", receipt.Record.Digest, "error", err)
		return nil, unpublishedError(receipt.Record, err)
	}

	if err := s.publisher.Seal(receipt); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return recordStruct(receipt.Record, receipt.Result[finite.ResultCID])
}

func (s *Server) Get(_ context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error) {
	record, err := s.publisher.Lookup(id.GetValue())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, status.Error(codes.NotFound, err.Error())
	case err != nil:
		return nil, status.Error(codes.Internal, err.Error())
	default:
		return recordStruct(record, id.GetValue())
	}
}

func recordStruct(record *finite.Record, id string) (*structpb.Struct, error) {
	out, err := record.Struct()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	out.Fields[cidField] = structpb.NewStringValue(id)
	return out, nil
}

// unpublishedError carries the digested record as a status detail so the
// caller sees the transactor error next to the digest
func unpublishedError(record *finite.Record, err error) error {
	st := status.Newf(codes.Unavailable, "transaction %s not published: %v", record.Digest, err)

	detail, serr := record.Struct()
	if serr != nil {
		return st.Err()
	}
	if withDetail, derr := st.WithDetails(detail); derr == nil {
		st = withDetail
	}

	return st.Err()
}

func appendError(err error) error {
	switch {
	case errors.Is(err, merkle.ErrOverflow):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, finite.ErrFrozen):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
