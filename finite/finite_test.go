package finite

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frankonly/finite/crypto"
	"github.com/frankonly/finite/merkle"
	"github.com/frankonly/finite/pflow"
)

const testSchema = "https://tens.city/guilder-v1"

// fatX builds the token model: a wallet drained by output and filled by input
func fatX(t *testing.T, weight int64) *pflow.Net {
	r := require.New(t)

	net := pflow.New(testSchema)
	sender, err := net.Role("sender")
	r.NoError(err)
	receiver, err := net.Role("receiver")
	r.NoError(err)

	send, err := net.Transition("output", sender)
	r.NoError(err)
	wallet, err := net.Place("wallet", 0)
	r.NoError(err)
	_, err = net.Arc(wallet, send, weight)
	r.NoError(err)

	receive, err := net.Transition("input", receiver)
	r.NoError(err)
	_, err = net.Arc(receive, wallet, 1)
	r.NoError(err)

	net.Freeze()
	return net
}

func TestModelNotFrozen(t *testing.T) {
	r := require.New(t)

	_, err := New(pflow.New(testSchema))
	r.ErrorIs(err, ErrModelNotFrozen)

	_, err = New(nil)
	r.ErrorIs(err, ErrModelNotFrozen)
}

func TestSchemaHash(t *testing.T) {
	r := require.New(t)

	f, err := New(fatX(t, 1))
	r.NoError(err)
	r.Len(f.SchemaHash, 64)

	h := crypto.HashString
	places := crypto.HashNodes(h(Version), h("wallet"))
	transitions := crypto.HashNodes(
		crypto.HashNodes(places, crypto.HashNodes(h("output"), h("sender"))),
		crypto.HashNodes(h("input"), h("receiver")),
	)
	edges := crypto.HashNodes(
		crypto.HashNodes(transitions, crypto.HashNodes(crypto.HashNodes(h("wallet"), h("output")), h("1"))),
		crypto.HashNodes(crypto.HashNodes(h("input"), h("wallet")), h("1")),
	)
	r.Equal(hex.EncodeToString(edges), f.SchemaHash)
}

func TestSchemaHashStable(t *testing.T) {
	r := require.New(t)

	a, err := New(fatX(t, 1))
	r.NoError(err)
	b, err := New(fatX(t, 1))
	r.NoError(err)
	r.Equal(a.SchemaHash, b.SchemaHash)

	c, err := New(fatX(t, 2))
	r.NoError(err)
	r.NotEqual(a.SchemaHash, c.SchemaHash)
}

func TestSchemaHashRoleSensitive(t *testing.T) {
	r := require.New(t)

	net := pflow.New(testSchema)
	admin, err := net.Role("admin")
	r.NoError(err)
	_, err = net.Transition("output", admin)
	r.NoError(err)
	net.Freeze()

	other := pflow.New(testSchema)
	sender, err := other.Role("sender")
	r.NoError(err)
	_, err = other.Transition("output", sender)
	r.NoError(err)
	other.Freeze()

	a, err := New(net)
	r.NoError(err)
	b, err := New(other)
	r.NoError(err)
	r.NotEqual(a.SchemaHash, b.SchemaHash)
}

func TestSchemaHashEmptyModel(t *testing.T) {
	r := require.New(t)

	net := pflow.New(testSchema)
	net.Freeze()

	f, err := New(net)
	r.NoError(err)

	h := crypto.HashString(Version)
	r.Equal(hex.EncodeToString(h), f.SchemaHash)
}

func TestSchemaGraph(t *testing.T) {
	r := require.New(t)

	graph := merkle.NewGraph()
	f, err := New(fatX(t, 1), WithGraph(graph))
	r.NoError(err)

	plain, err := New(fatX(t, 1))
	r.NoError(err)
	r.Equal(plain.SchemaHash, f.SchemaHash)

	last := graph.Nodes[len(graph.Nodes)-1]
	r.Equal(f.SchemaHash, hex.EncodeToString(last.Digest))
	r.Contains(graph.PrintGraph(), "label: "+Version+"+wallet")
}

func TestWeldRejectsNil(t *testing.T) {
	r := require.New(t)

	foo, bar := crypto.HashString("foo"), crypto.HashString("bar")

	leaf, err := weld(foo, bar)
	r.NoError(err)
	r.Equal(crypto.HashNodes(foo, bar), leaf)

	_, err = weld(nil, bar)
	r.ErrorIs(err, crypto.ErrNilDigest)
	_, err = weld(foo, nil)
	r.ErrorIs(err, crypto.ErrNilDigest)
}
