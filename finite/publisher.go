package finite

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/frankonly/finite/storage"
)

const (
	txPrefix      = "tx"
	digestPrefix  = "digest"
	addressPrefix = "address"

	// ResultCID is the Result key holding the stored record's CID
	ResultCID = "cid"
)

// Publisher stores committed records in a KvStore keyed by CID
type Publisher struct {
	store  storage.KvStore
	logger *zap.SugaredLogger
}

// NewPublisher returns a Publisher writing to store
func NewPublisher(store storage.KvStore, logger *zap.SugaredLogger) *Publisher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Publisher{store: store, logger: logger}
}

// Transact implements Transactor. The record is stored under /tx/<cid> and
// every output address points at it under /address/<addr>.
func (p *Publisher) Transact(ctx context.Context, record *Record) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := record.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	id, err := storage.ContentID(data)
	if err != nil {
		return nil, err
	}

	if err := p.store.Put(storage.Key(txPrefix, id.String()), data); err != nil {
		return nil, fmt.Errorf("failed to store record %s: %w", id, err)
	}

	for _, out := range record.Output {
		if err := p.store.Put(storage.Key(addressPrefix, out.Address), []byte(id.String())); err != nil {
			return nil, fmt.Errorf("failed to update address %s: %w", out.Address, err)
		}
	}

	p.logger.Infow("record published", "cid", id.String(), "outputs", len(record.Output))
	return Result{ResultCID: id.String()}, nil
}

// Seal stores the finalized digest next to the published record
func (p *Publisher) Seal(receipt *Receipt) error {
	id, ok := receipt.Result[ResultCID]
	if !ok {
		return fmt.Errorf("receipt has no %s", ResultCID)
	}

	return p.store.Put(storage.Key(digestPrefix, id), []byte(receipt.Record.Digest))
}

// Lookup reads a published record, with its digest once sealed
func (p *Publisher) Lookup(id string) (*Record, error) {
	data, err := p.store.Get(storage.Key(txPrefix, id))
	if err != nil {
		return nil, err
	}

	record, err := UnmarshalRecord(data)
	if err != nil {
		return nil, fmt.Errorf("corrupted record %s: %w", id, err)
	}

	digest, err := p.store.Get(storage.Key(digestPrefix, id))
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		record.Digest = string(digest)
	}

	return record, nil
}

// Latest returns the CID of the last record crediting address
func (p *Publisher) Latest(address string) (string, error) {
	id, err := p.store.Get(storage.Key(addressPrefix, address))
	if err != nil {
		return "", err
	}

	return string(id), nil
}
