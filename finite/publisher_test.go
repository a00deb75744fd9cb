package finite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frankonly/finite/storage"
)

func TestPublisher(t *testing.T) {
	r := require.New(t)

	store := storage.NewMemory()
	defer store.Close()
	publisher := NewPublisher(store, nil)

	txn := newTestTransaction(t, publisher.Transact)
	r.NoError(txn.Action("send", 1))
	r.NoError(txn.Input("FA2A", 1))
	r.NoError(txn.Output("FA2C", 1))

	receipt, err := txn.Commit(context.Background())
	r.NoError(err)

	id := receipt.Result[ResultCID]
	r.NotEmpty(id)

	record, err := publisher.Lookup(id)
	r.NoError(err)
	r.Empty(record.Digest)
	r.Equal(receipt.Record.Nonce, record.Nonce)
	r.Equal(receipt.Record.Output, record.Output)

	r.NoError(publisher.Seal(receipt))
	record, err = publisher.Lookup(id)
	r.NoError(err)
	r.Equal(receipt.Record, record)

	latest, err := publisher.Latest("FA2C")
	r.NoError(err)
	r.Equal(id, latest)

	_, err = publisher.Latest("FA2A")
	r.ErrorIs(err, storage.ErrNotFound)
	_, err = publisher.Lookup("missing")
	r.ErrorIs(err, storage.ErrNotFound)
}

func TestPublisherCanceled(t *testing.T) {
	r := require.New(t)

	publisher := NewPublisher(storage.NewMemory(), nil)
	txn := newTestTransaction(t, publisher.Transact)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	receipt, err := txn.Commit(ctx)
	r.ErrorIs(err, context.Canceled)
	r.Len(receipt.Record.Digest, 64)
	r.Error(publisher.Seal(receipt))
}
