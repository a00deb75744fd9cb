// Package finite digests frozen pflow models into schema hashes and builds
// transactions whose content hash is accumulated operation by operation.
package finite

import (
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/frankonly/finite/crypto"
	"github.com/frankonly/finite/merkle"
	"github.com/frankonly/finite/pflow"
)

// Version tags the first leaf of the place layer
const Version = "finite-v1"

var ErrModelNotFrozen = fmt.Errorf("model not frozen")

// Finite binds a frozen model to its schema hash
type Finite struct {
	Model      *pflow.Net
	SchemaHash string

	graph  *merkle.Graph
	logger *zap.SugaredLogger
}

// Option configures Finite
type Option func(*Finite)

// WithGraph records every merge of the schema accumulators into g
func WithGraph(g *merkle.Graph) Option {
	return func(f *Finite) {
		f.graph = g
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(f *Finite) {
		f.logger = logger
	}
}

// New computes the schema hash of a frozen model
func New(model *pflow.Net, opts ...Option) (*Finite, error) {
	if model == nil || !model.Frozen() {
		return nil, ErrModelNotFrozen
	}

	f := &Finite{Model: model, logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(f)
	}

	digest, err := f.modelDigest()
	if err != nil {
		return nil, fmt.Errorf("failed to digest model %s: %w", model.Schema, err)
	}

	f.SchemaHash = hex.EncodeToString(digest)
	f.logger.Debugw("model digested", "schema", model.Schema, "hash", f.SchemaHash,
		"places", len(model.Places), "transitions", len(model.Transitions), "edges", len(model.Edges))

	return f, nil
}

// Transaction opens a builder bound to this model
func (f *Finite) Transaction(transactor Transactor, opts ...TransactionOption) (*Transaction, error) {
	opts = append([]TransactionOption{WithTransactionLogger(f.logger)}, opts...)
	return NewTransaction(f.SchemaHash, f.Model, transactor, opts...)
}

// modelDigest chains three accumulators: places, transitions, edges. Each
// layer starts with the root of the previous one.
func (f *Finite) modelDigest() ([]byte, error) {
	net := f.Model

	places, err := f.newDag(len(net.Places) + 1)
	if err != nil {
		return nil, err
	}
	if _, err := places.Append(crypto.HashString(Version), Version); err != nil {
		return nil, err
	}
	for _, place := range net.Places {
		if _, err := places.Append(crypto.HashString(place.Label()), place.Label()); err != nil {
			return nil, err
		}
	}

	transitions, err := f.chain(places, len(net.Transitions)+1)
	if err != nil {
		return nil, err
	}
	for _, txn := range net.Transitions {
		leaf, err := weld(crypto.HashString(txn.Label()), crypto.HashString(txn.Role.Label()))
		if err != nil {
			return nil, err
		}
		if _, err := transitions.Append(leaf, txn.Label()); err != nil {
			return nil, err
		}
	}

	edges, err := f.chain(transitions, len(net.Edges)+1)
	if err != nil {
		return nil, err
	}
	for _, edge := range net.Edges {
		arc, err := weld(crypto.HashString(edge.Source.Label()), crypto.HashString(edge.Target.Label()))
		if err != nil {
			return nil, err
		}
		leaf, err := weld(arc, crypto.HashString(edge.Label()))
		if err != nil {
			return nil, err
		}
		if _, err := edges.Append(leaf, edge.Label()); err != nil {
			return nil, err
		}
	}

	return edges.TruncateRoot()
}

// chain truncates prev and seeds a new accumulator with its root
func (f *Finite) chain(prev *merkle.Dag, count int) (*merkle.Dag, error) {
	root, err := prev.TruncateRoot()
	if err != nil {
		return nil, err
	}

	d, err := f.newDag(count)
	if err != nil {
		return nil, err
	}
	if _, err := d.Append(root, f.Model.Schema); err != nil {
		return nil, err
	}

	return d, nil
}

func (f *Finite) newDag(count int) (*merkle.Dag, error) {
	var opts []merkle.Option
	if f.graph != nil {
		opts = append(opts, merkle.WithObserver(f.graph))
	}

	return merkle.New(merkle.MinWidth(uint64(count)), opts...)
}

// weld finalizes crypto.Weld into a leaf digest
func weld(left, right []byte) ([]byte, error) {
	h, err := crypto.Weld(left, right)
	if err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}
