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

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_stackPushPop(t *testing.T) {
	s := NewStack(4)
	require.NoError(t, s.Push(ContainerList))
	require.NoError(t, s.Push(ContainerMap))
	assert.Equal(t, 2, s.Depth())

	top, ok := s.Top()
	require.True(t, ok)
	assert.Equal(t, ContainerMap, top)

	k, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, ContainerMap, k)
	assert.Equal(t, 1, s.Depth())
}

func Test_stackEnforcesMaxDepth(t *testing.T) {
	s := NewStack(2)
	require.NoError(t, s.Push(ContainerList))
	require.NoError(t, s.Push(ContainerList))
	err := s.Push(ContainerList)
	assert.Error(t, err)
}

func Test_stackPopUnderflow(t *testing.T) {
	s := NewStack(4)
	_, err := s.Pop()
	assert.Error(t, err)
}

func Test_defaultMaxDepthApplied(t *testing.T) {
	s := NewStack(0)
	assert.Equal(t, DefaultMaxDepth, s.MaxDepth)
}
