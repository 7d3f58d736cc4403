package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAmount_Arithmetic(t *testing.T) {
	a, err := FromString("120000.50")
	require.NoError(t, err)
	b := FromInt(5000)

	require.Equal(t, "125000.5", a.Add(b).String())
	require.Equal(t, "115000.5", a.Sub(b).String())
	require.True(t, a.Sub(a).IsZero())
}

func TestAmount_FromStringInvalid(t *testing.T) {
	_, err := FromString("12,000")
	require.Error(t, err)
}

func TestAmount_BSONRoundTrip(t *testing.T) {
	type doc struct {
		Rent    Amount `bson:"rent"`
		Deposit Amount `bson:"deposit"`
	}
	in := doc{Rent: mustAmount(t, "350000.25"), Deposit: FromInt(700000)}

	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	var out doc
	require.NoError(t, bson.Unmarshal(raw, &out))
	require.True(t, in.Rent.Equal(out.Rent.Decimal))
	require.True(t, in.Deposit.Equal(out.Deposit.Decimal))

	// stored representation must be a plain string, not a sub-document
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	require.Equal(t, "350000.25", m["rent"])
}

func TestAmount_JSONRoundTrip(t *testing.T) {
	in := mustAmount(t, "99.99")
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Amount
	require.NoError(t, json.Unmarshal(b, &out))
	require.True(t, in.Equal(out.Decimal))
}

func mustAmount(t *testing.T, s string) Amount {
	t.Helper()
	a, err := FromString(s)
	require.NoError(t, err)
	return a
}
