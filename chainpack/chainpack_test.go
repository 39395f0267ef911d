/*
Copyright (c) shv-go authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package chainpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silicon-heaven/shv-go/rpcvalue"
	"github.com/silicon-heaven/shv-go/wire"
)

func roundTrip(t *testing.T, v rpcvalue.Value) rpcvalue.Value {
	t.Helper()
	raw, err := Marshal(v)
	require.NoError(t, err)
	got, err := Unmarshal(raw)
	require.NoError(t, err)
	return got
}

func Test_roundTripScalars(t *testing.T) {
	cases := []rpcvalue.Value{
		rpcvalue.Null(),
		rpcvalue.NewBool(true),
		rpcvalue.NewBool(false),
		rpcvalue.NewUInt(0),
		rpcvalue.NewUInt(63),
		rpcvalue.NewUInt(64),
		rpcvalue.NewUInt(1 << 40),
		rpcvalue.NewInt(0),
		rpcvalue.NewInt(63),
		rpcvalue.NewInt(-1),
		rpcvalue.NewInt(-(1 << 40)),
		rpcvalue.NewDouble(3.5),
		rpcvalue.NewDecimalValue(rpcvalue.NewDecimal(123, -2)),
		rpcvalue.NewString("hello, world"),
		rpcvalue.NewBlob([]byte{1, 2, 3, 0xff}),
	}
	for _, v := range cases {
		got := roundTrip(t, v)
		assert.True(t, v.Equal(got), "round-trip mismatch for kind %s", v.Kind())
	}
}

func Test_tinyUIntEncodesAsSingleByte(t *testing.T) {
	raw, err := Marshal(rpcvalue.NewUInt(10))
	require.NoError(t, err)
	assert.Equal(t, []byte{10}, raw)
}

func Test_tinyIntEncodesAsSingleByte(t *testing.T) {
	raw, err := Marshal(rpcvalue.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, []byte{tinyIntBase + 5}, raw)
}

func Test_roundTripDateTime(t *testing.T) {
	dt := rpcvalue.NewDateTime(rpcvalue.ShvEpochMsec+123456, 120)
	got := roundTrip(t, rpcvalue.NewDateTimeValue(dt))
	assert.True(t, got.DateTimeVal().Equal(dt))
	assert.Equal(t, dt.TZQuarterHours, got.DateTimeVal().TZQuarterHours)
}

func Test_roundTripListMapIMap(t *testing.T) {
	m := rpcvalue.NewOrderedMap[string]()
	m.Set("b", rpcvalue.NewInt(2))
	m.Set("a", rpcvalue.NewInt(1))

	im := rpcvalue.NewOrderedMap[uint32]()
	im.Set(1, rpcvalue.NewString("x"))

	v := rpcvalue.NewList(
		rpcvalue.NewMap(m),
		rpcvalue.NewIMap(im),
		rpcvalue.NewString("tail"),
	)
	got := roundTrip(t, v)
	assert.True(t, v.Equal(got))
}

func Test_roundTripMetaData(t *testing.T) {
	meta := rpcvalue.NewMetaData()
	meta.SetIntTag(1, rpcvalue.NewUInt(1))
	meta.SetStrTag("path", rpcvalue.NewString("a/b"))
	v := rpcvalue.NewInt(42).WithMeta(meta)

	got := roundTrip(t, v)
	assert.True(t, v.Equal(got))
	require.NotNil(t, got.Meta())
}

func Test_roundTripArray(t *testing.T) {
	arr, err := rpcvalue.NewArray(rpcvalue.KindInt, rpcvalue.NewInt(1), rpcvalue.NewInt(-2), rpcvalue.NewInt(3))
	require.NoError(t, err)
	got := roundTrip(t, rpcvalue.NewArrayValue(arr))
	assert.True(t, rpcvalue.NewArrayValue(arr).Equal(got))
}

func Test_truncatedBufferYieldsNeedMoreData(t *testing.T) {
	raw, err := Marshal(rpcvalue.NewString("abcdefgh"))
	require.NoError(t, err)
	_, err = Unmarshal(raw[:len(raw)-2])
	assert.ErrorIs(t, err, wire.ErrNeedMoreData)
}

func Test_vlqWidthGrowsWithMagnitude(t *testing.T) {
	var prev int
	for _, n := range []uint64{10, 1000, 100000, 10000000, 1 << 40} {
		raw, err := Marshal(rpcvalue.NewUInt(n))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(raw), prev)
		prev = len(raw)
	}
}
