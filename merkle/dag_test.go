package merkle

import (
	"encoding/hex"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/frankonly/finite/crypto"
)

func TestNew(t *testing.T) {
	r := require.New(t)

	d, err := New(4)
	r.NoError(err)
	r.EqualValues(15, d.Capacity())
	r.EqualValues(0, d.Len())
	r.Equal(4, d.Width())

	for _, width := range []int{0, -1, 64} {
		_, err = New(width)
		r.ErrorIs(err, ErrInvalidWidth)
	}
}

func TestMinWidth(t *testing.T) {
	r := require.New(t)

	inputs := []uint64{0, 1, 2, 3, 4, 7, 8, 1023, 1024}
	expects := []int{1, 1, 2, 2, 3, 3, 4, 10, 11}

	for i, input := range inputs {
		r.Equal(expects[i], MinWidth(input), "count %d", input)

		d, err := New(MinWidth(input))
		r.NoError(err)
		r.GreaterOrEqual(d.Capacity(), input)
	}
}

func TestDagOverflow(t *testing.T) {
	r := require.New(t)

	d, err := New(4)
	r.NoError(err)

	for i := 0; i < 15; i++ {
		count, err := d.Append(crypto.HashString(string(rune('a'+i))), string(rune('a'+i)))
		r.NoError(err)
		r.EqualValues(i+1, count)
	}

	root, err := d.TruncateRoot()
	r.NoError(err)
	r.Len(root, 32)

	_, err = d.Append(crypto.HashString("p"), "p")
	r.ErrorIs(err, ErrOverflow)
}

func TestDagEmpty(t *testing.T) {
	r := require.New(t)

	d, err := New(10)
	r.NoError(err)

	_, err = d.TruncateRoot()
	r.ErrorIs(err, ErrEmpty)

	_, err = d.Append(crypto.HashString("foo"), "foo")
	r.NoError(err)

	root, err := d.TruncateRoot()
	r.NoError(err)
	r.Equal(crypto.HashString("foo"), root)

	_, err = d.TruncateRoot()
	r.ErrorIs(err, ErrEmpty)
}

func TestDagNilDigest(t *testing.T) {
	r := require.New(t)

	d, err := New(2)
	r.NoError(err)

	_, err = d.Append(nil, "nil")
	r.ErrorIs(err, crypto.ErrNilDigest)
	r.EqualValues(0, d.Len())
}

func TestDagMergeOrder(t *testing.T) {
	r := require.New(t)

	a, b, c := crypto.HashString("a"), crypto.HashString("b"), crypto.HashString("c")

	d, err := New(3)
	r.NoError(err)
	for _, leaf := range [][]byte{a, b, c} {
		_, err := d.Append(leaf, "")
		r.NoError(err)
	}

	root, err := d.TruncateRoot()
	r.NoError(err)
	r.Equal(crypto.HashNodes(crypto.HashNodes(a, b), c), root)

	d, err = New(3)
	r.NoError(err)
	for _, leaf := range [][]byte{a, b} {
		_, err := d.Append(leaf, "")
		r.NoError(err)
	}

	root, err = d.TruncateRoot()
	r.NoError(err)
	r.Equal(crypto.HashNodes(a, b), root)
}

func TestDagKnownRoot(t *testing.T) {
	r := require.New(t)

	d, err := New(10)
	r.NoError(err)

	actions := []string{"foo", "bar", "foobar", "baz", "qux", "quux", "quuz", "corge",
		"grault", "garply", "waldo", "fred", "plugh", "xyzzy", "thud"}
	for _, action := range actions {
		_, err := d.Append(crypto.HashString(action), action)
		r.NoError(err)
	}

	root, err := d.TruncateRoot()
	r.NoError(err)
	r.Equal("b9d8206728272c5c6fa042dbd3d259a6d1f0761a8e031654d9da798a6276c3b1", hex.EncodeToString(root))
}

func TestDagDeterministic(t *testing.T) {
	r := require.New(t)

	seed := time.Now().UnixNano()
	t.Logf("seed %d", seed)
	rng := rand.New(rand.NewSource(seed))

	hashes := make([][]byte, 1+rng.Intn(1023))
	for i := range hashes {
		hashes[i] = make([]byte, 32)
		rng.Read(hashes[i])
	}

	digest := func(opts ...Option) []byte {
		d, err := New(10, opts...)
		r.NoError(err)

		for _, hash := range hashes {
			_, err := d.Append(hash, "")
			r.NoError(err)
		}

		root, err := d.TruncateRoot()
		r.NoError(err)
		return root
	}

	first := digest()
	r.Equal(first, digest())
	r.Equal(first, digest(WithObserver(NewGraph())))

	if len(hashes) > 1 {
		hashes[0], hashes[1] = hashes[1], hashes[0]
		if string(hashes[0]) != string(hashes[1]) {
			r.NotEqual(first, digest())
		}
	}
}
