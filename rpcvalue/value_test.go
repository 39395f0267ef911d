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

package rpcvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_scalarConstructors(t *testing.T) {
	assert.Equal(t, KindNull, Null().Kind())
	assert.Equal(t, KindBool, NewBool(true).Kind())
	assert.True(t, NewBool(true).Bool())
	assert.Equal(t, int64(-7), NewInt(-7).Int())
	assert.Equal(t, uint64(7), NewUInt(7).UInt())
	assert.Equal(t, 1.5, NewDouble(1.5).Double())
	assert.Equal(t, KindInvalid, Invalid.Kind())
	assert.False(t, Invalid.IsValid())
}

func Test_listAtSetAppend(t *testing.T) {
	v := NewList(NewInt(1), NewInt(2))
	elem, ok := v.At(1)
	require.True(t, ok)
	assert.Equal(t, int64(2), elem.Int())

	require.NoError(t, v.Set(0, NewInt(100)))
	elem, _ = v.At(0)
	assert.Equal(t, int64(100), elem.Int())

	require.NoError(t, v.Append(NewInt(3)))
	assert.Equal(t, 3, v.Len())

	_, ok = v.At(99)
	assert.False(t, ok)
}

func Test_mapOrderPreserved(t *testing.T) {
	m := NewOrderedMap[string]()
	m.Set("b", NewInt(2))
	m.Set("a", NewInt(1))
	m.Set("b", NewInt(22))
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	v, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, int64(22), v.Int())
}

func Test_imapViaValue(t *testing.T) {
	im := NewOrderedMap[uint32]()
	im.Set(1, NewString("req"))
	val := NewIMap(im)
	got, ok := val.At(uint32(1))
	require.True(t, ok)
	assert.Equal(t, "req", got.Str())
}

func Test_decimalValidity(t *testing.T) {
	assert.True(t, NewDecimal(123, -2).IsValid())
	assert.False(t, NewDecimal(0, 3).IsValid())
	assert.True(t, NewDecimal(0, 0).IsValid())
	assert.Equal(t, 1.23, NewDecimal(123, -2).Float64())
	assert.Equal(t, "1.23", NewDecimal(123, -2).String())
	assert.Equal(t, "-1.23", NewDecimal(-123, -2).String())
}

func Test_dateTimeEquality(t *testing.T) {
	a := NewDateTime(1000, 60)
	b := NewDateTime(1000, -60)
	assert.True(t, a.Equal(b), "Equal compares Msec only, per the C++ original")

	inv := DateTime{Msec: 1000, TZQuarterHours: TZInvalid}
	assert.False(t, inv.IsValid())
}

func Test_arrayRejectsMismatchedKind(t *testing.T) {
	_, err := NewArray(KindInt, NewInt(1), NewString("x"))
	assert.Error(t, err)

	_, err = NewArray(KindList)
	assert.Error(t, err, "containers are not a valid array element kind")

	arr, err := NewArray(KindInt, NewInt(1), NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, 2, arr.Len())
}

func Test_guessKind(t *testing.T) {
	cases := []struct {
		in   any
		want Kind
	}{
		{nil, KindNull},
		{true, KindBool},
		{int(1), KindInt},
		{uint(1), KindUInt},
		{1.5, KindDouble},
		{"s", KindString},
		{[]byte("b"), KindBlob},
	}
	for _, c := range cases {
		k, err := GuessKind(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, k)
	}
	_, err := GuessKind(struct{}{})
	assert.Error(t, err)
}

func Test_equalWithMeta(t *testing.T) {
	a := NewInt(5)
	b := NewInt(5)
	assert.True(t, a.Equal(b))

	meta := NewMetaData()
	meta.SetIntTag(1, NewUInt(2))
	a = a.WithMeta(meta)
	assert.False(t, a.Equal(b), "differing meta-data breaks equality")

	b = b.WithMeta(meta.Clone())
	assert.True(t, a.Equal(b))
}

func Test_nestedContainerEquality(t *testing.T) {
	m1 := NewOrderedMap[string]()
	m1.Set("k", NewList(NewInt(1), NewString("x")))
	m2 := NewOrderedMap[string]()
	m2.Set("k", NewList(NewInt(1), NewString("x")))
	assert.True(t, NewMap(m1).Equal(NewMap(m2)))

	m2.Set("k", NewList(NewInt(1), NewString("y")))
	assert.False(t, NewMap(m1).Equal(NewMap(m2)))
}
