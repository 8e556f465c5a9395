// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/luxfi/metric"

	dto "github.com/prometheus/client_model/go"
)

var (
	hello      = "hello"
	world      = "world"
	helloWorld = "hello_world"

	errTest = errors.New("non-nil error")
)

type testGatherer struct {
	mfs []*metric.MetricFamily
	err error
}

func (g *testGatherer) Gather() ([]*metric.MetricFamily, error) {
	return g.mfs, g.err
}

func counterFamily(name string) *metric.MetricFamily {
	family := &dto.MetricFamily{
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{
			{Counter: &dto.Counter{Value: proto.Float64(0)}},
		},
	}
	if name != "" {
		family.Name = proto.String(name)
	}
	return family
}

func TestMultiGathererEmptyGather(t *testing.T) {
	require := require.New(t)

	g := NewMultiGatherer()

	mfs, err := g.Gather()
	require.NoError(err)
	require.Empty(mfs)
}

func TestMultiGathererOverlappingPrefix(t *testing.T) {
	require := require.New(t)

	g := NewMultiGatherer()
	tg := &testGatherer{}

	require.NoError(g.Register("elastic", tg))
	require.ErrorIs(g.Register("elastic", tg), errOverlappingNamespaces)
	require.ErrorIs(g.Register("elastic_api", tg), errOverlappingNamespaces)
	require.NoError(g.Register("elasticd", tg))
}

func TestMultiGathererAddedError(t *testing.T) {
	require := require.New(t)

	g := NewMultiGatherer()
	require.NoError(g.Register("", &testGatherer{err: errTest}))

	mfs, err := g.Gather()
	require.ErrorIs(err, errTest)
	require.Empty(mfs)
}

func TestMultiGathererNoAddedPrefix(t *testing.T) {
	require := require.New(t)

	g := NewMultiGatherer()
	require.NoError(g.Register("", &testGatherer{
		mfs: []*metric.MetricFamily{counterFamily(hello)},
	}))

	mfs, err := g.Gather()
	require.NoError(err)
	require.Len(mfs, 1)
	require.Equal(hello, mfs[0].GetName())
}

func TestMultiGathererAddedPrefix(t *testing.T) {
	require := require.New(t)

	g := NewMultiGatherer()
	require.NoError(g.Register(hello, &testGatherer{
		mfs: []*metric.MetricFamily{counterFamily(world)},
	}))

	mfs, err := g.Gather()
	require.NoError(err)
	require.Len(mfs, 1)
	require.Equal(helloWorld, mfs[0].GetName())
}

func TestMultiGathererJustPrefix(t *testing.T) {
	require := require.New(t)

	g := NewMultiGatherer()
	require.NoError(g.Register(hello, &testGatherer{
		mfs: []*metric.MetricFamily{counterFamily("")},
	}))

	mfs, err := g.Gather()
	require.NoError(err)
	require.Len(mfs, 1)
	require.Equal(hello, mfs[0].GetName())
}

func TestMultiGathererSorted(t *testing.T) {
	require := require.New(t)

	g := NewMultiGatherer()
	require.NoError(g.Register("", &testGatherer{
		mfs: []*metric.MetricFamily{
			counterFamily("z"),
			counterFamily("a"),
		},
	}))

	mfs, err := g.Gather()
	require.NoError(err)
	require.Len(mfs, 2)
	require.Equal("a", mfs[0].GetName())
	require.Equal("z", mfs[1].GetName())
}

func TestMultiGathererDeregister(t *testing.T) {
	require := require.New(t)

	g := NewMultiGatherer()
	require.NoError(g.Register(hello, &testGatherer{
		mfs: []*metric.MetricFamily{counterFamily(world)},
	}))
	require.True(g.Deregister(hello))
	require.False(g.Deregister(hello))

	mfs, err := g.Gather()
	require.NoError(err)
	require.Empty(mfs)

	// The name can be reused once deregistered.
	require.NoError(g.Register(hello, &testGatherer{}))
}

func TestMakeAndRegister(t *testing.T) {
	require := require.New(t)

	g := NewMultiGatherer()
	reg, err := MakeAndRegister(g, "http")
	require.NoError(err)
	require.NotNil(reg)

	_, err = MakeAndRegister(g, "http")
	require.ErrorIs(err, errOverlappingNamespaces)
}
