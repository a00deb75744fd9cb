package finite

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frankonly/finite/crypto"
	"github.com/frankonly/finite/merkle"
	"github.com/frankonly/finite/pflow"
)

// transactionWidth allows 1023 leaves per transaction
const transactionWidth = 10

var (
	ErrFrozen    = fmt.Errorf("transaction already committed")
	ErrNotFrozen = fmt.Errorf("not frozen")
	ErrNoSchema  = fmt.Errorf("missing schema hash")
)

// DefaultACL is asserted by every commit unless replaced with WithACL
var DefaultACL = AddressACL{Address: "FADDR", DID: "did:mainnet:factom", Role: "default"}

// Result is whatever the transactor reports back, e.g. a storage CID
type Result map[string]string

// Transactor performs the side effects of a commit: encryption, storage,
// publication. It runs before the digest is finalized and is not retried.
type Transactor func(ctx context.Context, record *Record) (Result, error)

// Receipt pairs the finalized record with the transactor's result
type Receipt struct {
	Record *Record
	Result Result
}

// TransactionOption configures a Transaction
type TransactionOption func(*Transaction)

// WithRand sets the source of the nonce
func WithRand(r io.Reader) TransactionOption {
	return func(t *Transaction) {
		t.rand = r
	}
}

// WithACL replaces the access-control entry appended at commit
func WithACL(acl AddressACL) TransactionOption {
	return func(t *Transaction) {
		t.acl = acl
	}
}

// WithTransactionObserver observes the transaction accumulator
func WithTransactionObserver(o merkle.Observer) TransactionOption {
	return func(t *Transaction) {
		t.observer = o
	}
}

// WithTransactionLogger sets the logger
func WithTransactionLogger(logger *zap.SugaredLogger) TransactionOption {
	return func(t *Transaction) {
		t.logger = logger
	}
}

// Transaction records business data and accumulates one leaf per operation.
// It is not safe for concurrent use.
type Transaction struct {
	schema     string
	model      *pflow.Net
	transactor Transactor
	dag        *merkle.Dag
	frozen     bool
	acl        AddressACL
	rand       io.Reader
	observer   merkle.Observer
	logger     *zap.SugaredLogger

	record *Record
}

// NewTransaction seeds a transaction with weld(hash(nonce), schema)
func NewTransaction(schema string, model *pflow.Net, transactor Transactor, opts ...TransactionOption) (*Transaction, error) {
	if schema == "" {
		return nil, ErrNoSchema
	}

	t := &Transaction{
		schema:     schema,
		model:      model,
		transactor: transactor,
		acl:        DefaultACL,
		rand:       rand.Reader,
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(t)
	}

	nonce, err := uuid.NewRandomFromReader(t.rand)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	var dagOpts []merkle.Option
	if t.observer != nil {
		dagOpts = append(dagOpts, merkle.WithObserver(t.observer))
	}
	t.dag, err = merkle.New(transactionWidth, dagOpts...)
	if err != nil {
		return nil, err
	}

	t.record = &Record{
		Nonce:  nonce.String(),
		Schema: schema,
		Input:  []AddressAmount{},
		Output: []AddressAmount{},
		DidACL: []AddressACL{},
	}

	seed, err := weld(crypto.HashString(t.record.Nonce), []byte(schema))
	if err != nil {
		return nil, err
	}
	if _, err := t.dag.Append(seed, schema); err != nil {
		return nil, err
	}

	return t, nil
}

// Model returns the model the transaction was opened against
func (t *Transaction) Model() *pflow.Net {
	return t.model
}

// Record returns the record being built. Digest is set only after Commit.
func (t *Transaction) Record() *Record {
	return t.record
}

// Action sets the command: fire action multiplier times
func (t *Transaction) Action(action string, multiplier int64) error {
	if err := t.append(action,
		crypto.HashString(strconv.FormatInt(multiplier, 10)),
		crypto.HashString(action),
	); err != nil {
		return err
	}

	t.record.Command = &Command{Action: action, Multiplier: multiplier}
	return nil
}

// Input debits amount from address
func (t *Transaction) Input(address string, amount int64) error {
	debit := -amount
	if err := t.append(address,
		crypto.HashString(strconv.FormatInt(debit, 10)),
		crypto.HashString(address),
	); err != nil {
		return err
	}

	t.record.Input = append(t.record.Input, AddressAmount{Address: address, Amount: debit})
	return nil
}

// Output credits amount to address
func (t *Transaction) Output(address string, amount int64) error {
	if err := t.append(address,
		crypto.HashString(address),
		crypto.HashString(strconv.FormatInt(amount, 10)),
	); err != nil {
		return err
	}

	t.record.Output = append(t.record.Output, AddressAmount{Address: address, Amount: amount})
	return nil
}

// Commit freezes the transaction, asserts the ACL, runs the transactor and
// finalizes the digest. A transactor error is returned together with the
// digested receipt.
func (t *Transaction) Commit(ctx context.Context) (*Receipt, error) {
	if t.frozen {
		return nil, ErrFrozen
	}

	t.frozen = true
	if err := t.appendACL(); err != nil {
		return nil, err
	}

	var result Result
	var txErr error
	if t.transactor != nil {
		result, txErr = t.transactor(ctx, t.record)
	}

	digest, err := t.dag.TruncateRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to finalize transaction: %w", err)
	}
	t.record.Digest = hex.EncodeToString(digest)

	if txErr != nil {
		t.logger.Warnw("transactor failed", "digest", t.record.Digest, "error", txErr)
	} else {
		t.logger.Debugw("transaction committed", "digest", t.record.Digest, "leaves", t.dag.Len())
	}

	return &Receipt{Record: t.record, Result: result}, txErr
}

func (t *Transaction) appendACL() error {
	if !t.frozen {
		return ErrNotFrozen
	}

	acl := t.acl
	leaf, err := weld(crypto.HashString(acl.Address), crypto.HashString(acl.Role))
	if err != nil {
		return err
	}
	if _, err := t.dag.Append(leaf, acl.DID); err != nil {
		return err
	}

	t.record.DidACL = append(t.record.DidACL, acl)
	return nil
}

// append welds left and right into one leaf labelled label
func (t *Transaction) append(label string, left, right []byte) error {
	if t.frozen {
		return ErrFrozen
	}

	leaf, err := weld(left, right)
	if err != nil {
		return err
	}

	_, err = t.dag.Append(leaf, label)
	return err
}
