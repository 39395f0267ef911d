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

package cpon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silicon-heaven/shv-go/rpcvalue"
)

func roundTrip(t *testing.T, v rpcvalue.Value) rpcvalue.Value {
	t.Helper()
	text, err := Marshal(v, WriterOptions{})
	require.NoError(t, err)
	got, err := Unmarshal(text)
	require.NoError(t, err, "text: %s", text)
	return got
}

func Test_roundTripScalars(t *testing.T) {
	cases := []rpcvalue.Value{
		rpcvalue.Null(),
		rpcvalue.NewBool(true),
		rpcvalue.NewBool(false),
		rpcvalue.NewUInt(456),
		rpcvalue.NewInt(-123),
		rpcvalue.NewDouble(0.123),
		rpcvalue.NewDecimalValue(rpcvalue.NewDecimal(123456, -3)),
		rpcvalue.NewString("foo bar"),
		rpcvalue.NewBlob([]byte("Hello")),
	}
	for _, v := range cases {
		got := roundTrip(t, v)
		assert.True(t, v.Equal(got), "mismatch for kind %s", v.Kind())
	}
}

func Test_parsesKnownExample(t *testing.T) {
	src := `[
		"foo bar",
		123,
		true,
		false,
		null,
		456u,
		0.123,
		123.456n,
		x"48656c6c6f",
		d"2018-01-14T01:17:33.256-1045"
	]`
	v, err := Unmarshal(src)
	require.NoError(t, err)
	elems := v.List()
	require.Len(t, elems, 10)
	assert.Equal(t, "foo bar", elems[0].Str())
	assert.Equal(t, int64(123), elems[1].Int())
	assert.True(t, elems[2].Bool())
	assert.False(t, elems[3].Bool())
	assert.Equal(t, rpcvalue.KindNull, elems[4].Kind())
	assert.Equal(t, uint64(456), elems[5].UInt())
	assert.Equal(t, 0.123, elems[6].Double())
	assert.Equal(t, rpcvalue.NewDecimal(123456, -3), elems[7].DecimalVal())
	assert.Equal(t, []byte("Hello"), elems[8].Blob())
	dt := elems[9].DateTimeVal()
	assert.Equal(t, int64(256), dt.Msec%1000)
	assert.Equal(t, -(10*60 + 45), dt.UTCOffsetMinutes())
}

func Test_commentsAreSkipped(t *testing.T) {
	src := `[1, /* block comment */ 2, // line comment
		3]`
	v, err := Unmarshal(src)
	require.NoError(t, err)
	elems := v.List()
	require.Len(t, elems, 3)
	assert.Equal(t, int64(2), elems[1].Int())
}

func Test_mapOrderRoundTrips(t *testing.T) {
	m := rpcvalue.NewOrderedMap[string]()
	m.Set("b", rpcvalue.NewInt(2))
	m.Set("a", rpcvalue.NewInt(1))
	v := rpcvalue.NewMap(m)
	text, err := Marshal(v, WriterOptions{})
	require.NoError(t, err)
	got, err := Unmarshal(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, got.Map().Keys())
}

func Test_imapRoundTrip(t *testing.T) {
	im := rpcvalue.NewOrderedMap[uint32]()
	im.Set(8, rpcvalue.NewInt(42))
	v := rpcvalue.NewIMap(im)
	got := roundTrip(t, v)
	assert.True(t, v.Equal(got))
}

func Test_arrayRoundTrip(t *testing.T) {
	arr, err := rpcvalue.NewArray(rpcvalue.KindInt, rpcvalue.NewInt(1), rpcvalue.NewInt(2))
	require.NoError(t, err)
	got := roundTrip(t, rpcvalue.NewArrayValue(arr))
	assert.True(t, rpcvalue.NewArrayValue(arr).Equal(got))
}

func Test_metaDataRoundTrip(t *testing.T) {
	meta := rpcvalue.NewMetaData()
	meta.SetIntTag(8, rpcvalue.NewUInt(1))
	meta.SetStrTag("method", rpcvalue.NewString("ls"))
	v := rpcvalue.NewInt(1).WithMeta(meta)
	got := roundTrip(t, v)
	assert.True(t, v.Equal(got))
}

func Test_invalidDateTimeEmptyBody(t *testing.T) {
	v, err := Unmarshal(`d""`)
	require.NoError(t, err)
	assert.False(t, v.DateTimeVal().IsValid())
}

func Test_jsonFormatProducesPlainNumbers(t *testing.T) {
	text, err := Marshal(rpcvalue.NewDouble(1.5), WriterOptions{JSONFormat: true})
	require.NoError(t, err)
	assert.Equal(t, "1.5", text)
}
