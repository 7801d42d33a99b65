package space

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainConstructionErrors(t *testing.T) {
	t.Parallel()

	inf := math.Inf(1)
	testCases := []struct {
		name    string
		domain  *Domain
		wantErr string
	}{
		{"second sampler", Float(0, 1).Uniform().LogUniform(), "sampler already assigned"},
		{"second sampler after normal", Float(0, 1).Normal(0.5, 1).Uniform(), "sampler already assigned"},
		{"loguniform zero lower", Float(0, 10).LogUniform(), "lower bound must be positive"},
		{"loguniform negative lower", Integer(-5, 10).LogUniform(), "lower bound must be positive"},
		{"loguniform unbounded", Float(1, inf).LogUniform(), "requires finite bounds"},
		{"uniform unbounded", Float(-inf, inf).Uniform(), "requires finite bounds"},
		{"normal on integer", Integer(0, 10).Normal(1, 1), "only supported on float"},
		{"normal zero sd", RandN(0, 0), "standard deviation"},
		{"normal mean outside bounds", Float(0, 1).Normal(5, 1), "outside bounds"},
		{"quantize float bound not multiple", Float(0, 32).Uniform().Quantized(3), "not a multiple"},
		{"quantize step too large", Integer(0, 3).Uniform().Quantized(5), "exceeds domain width"},
		{"quantize non-positive", Float(0, 1).Uniform().Quantized(0), "must be positive"},
		{"quantize integer fraction", Integer(0, 10).Quantized(0.5), "must be integral"},
		{"quantize unbounded without normal", Float(-inf, inf).Quantized(1), "without a normal sampler"},
		{"quantize categorical", Choice(1, 2).Quantized(1), "not supported"},
		{"empty float", Float(2, 1), "must be below"},
		{"empty integer", Integer(3, 3), "empty range"},
		{"integer wider than int64", Integer(math.MinInt64, math.MaxInt64), "wider than int64"},
		{"empty grid", Grid(), "at least one value"},
		{"empty categorical", Categorical(), "at least one value"},
		{"uniform on grid", Grid(1, 2).Uniform(), "not supported"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.domain.Err()
			require.Error(t, err)
			var de *InvalidDomainError
			require.True(t, errors.As(err, &de), "expected *InvalidDomainError, got %T", err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDomainValidConstruction(t *testing.T) {
	t.Parallel()

	valid := map[string]*Domain{
		"quniform divisible":   Float(0, 33).Uniform().Quantized(3),
		"quniform small step":  QUniform(1e-4, 1e-1, 5e-5),
		"qrandint":             QRandInt(1, 10, 3),
		"qlograndint":          QLogRandInt(1, 10, 3),
		"qrandn":               QRandN(0, 2, 0.5),
		"bounded normal":       Float(-1, 1).Normal(0, 5),
		"quantize then sample": Float(0, 10).Quantized(2).Uniform(),
		"function":             SampleFrom(func() any { return 1 }),
	}
	for name, d := range valid {
		assert.NoError(t, d.Validate(), name)
	}
}

func TestDomainErrorIsSticky(t *testing.T) {
	t.Parallel()

	base := Float(0, 1).Uniform().Uniform()
	chained := base.Quantized(0.5).LogUniform()

	require.Error(t, chained.Err())
	assert.Equal(t, base.Err().Error(), chained.Err().Error())
}

func TestDomainIsImmutable(t *testing.T) {
	t.Parallel()

	base := Float(0, 10)
	uni := base.Uniform()
	logu := Float(1, 10).LogUniform()

	assert.Equal(t, SamplerNone, base.Sampler())
	assert.Equal(t, SamplerUniform, uni.Sampler())
	assert.Equal(t, SamplerLogUniform, logu.Sampler())
	assert.Zero(t, uni.Step())
	assert.Equal(t, 2.0, uni.Quantized(2).Step())
	assert.Zero(t, uni.Step())
}

func TestUnboundedWithoutNormalFailsValidation(t *testing.T) {
	t.Parallel()

	d := Float(math.Inf(-1), 5)
	assert.NoError(t, d.Err())
	err := d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a normal sampler")
}

func TestDomainContains(t *testing.T) {
	t.Parallel()

	assert.True(t, Uniform(0, 1).Contains(0.5))
	assert.True(t, Uniform(0, 1).Contains(1))
	assert.False(t, Uniform(0, 1).Contains(1.5))
	assert.False(t, Uniform(0, 1).Contains("x"))

	assert.True(t, RandInt(0, 5).Contains(4))
	assert.True(t, RandInt(0, 5).Contains(4.0))
	assert.False(t, RandInt(0, 5).Contains(5))
	assert.False(t, RandInt(0, 5).Contains(2.5))

	assert.True(t, Choice("a", "b").Contains("b"))
	assert.False(t, Choice("a", "b").Contains("c"))
	assert.True(t, GridSearch(1, 2, 3).Contains(2.0))
	assert.True(t, SampleFrom(func() any { return 0 }).Contains("anything"))
}

func TestDomainString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "(0, 1)", Uniform(0, 1).String())
	assert.Equal(t, "(-inf, inf)", RandN(0, 1).String())
	assert.Equal(t, "(1, 11)", QRandInt(1, 10, 3).String())
	assert.Equal(t, "[a, b, 3]", Choice("a", "b", 3).String())
	assert.True(t, strings.HasPrefix(SampleFrom(func() any { return 0 }).String(), "<function"))
}
