package atomicx

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type FloatCellTestSuite struct {
	suite.Suite
}

func (s *FloatCellTestSuite) TestZeroValue() {
	var c FloatCell
	s.Equal(0.0, c.Load())
	s.False(math.Signbit(c.Load()))
}

func (s *FloatCellTestSuite) TestStoreLoadSpecials() {
	c := NewFloat(0)
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.MaxFloat64, math.SmallestNonzeroFloat64, -0.0} {
		c.Store(v)
		s.Equal(math.Float64bits(v), math.Float64bits(c.Load()))
	}
	c.Store(math.NaN())
	s.True(math.IsNaN(c.Load()))
}

func (s *FloatCellTestSuite) TestSwap() {
	c := NewFloat(1.5)
	s.Equal(1.5, c.Swap(2.5))
	s.Equal(2.5, c.Load())
}

func (s *FloatCellTestSuite) TestCompareExchange() {
	c := NewFloat(1.25)
	ok, seen := c.CompareExchange(1.25, 3)
	s.True(ok)
	s.Equal(1.25, seen)
	s.Equal(3.0, c.Load())

	ok, seen = c.CompareExchange(1.25, 4)
	s.False(ok)
	s.Equal(3.0, seen)
	s.Equal(3.0, c.Load())
}

func (s *FloatCellTestSuite) TestCompareExchangeIEEEEquality() {
	c := NewFloat(math.NaN())
	ok, seen := c.CompareExchange(math.NaN(), 1)
	s.False(ok)
	s.True(math.IsNaN(seen))
	s.True(math.IsNaN(c.Load()))

	c.Store(math.Copysign(0, -1))
	ok, _ = c.CompareExchange(0, 7)
	s.True(ok)
	s.Equal(7.0, c.Load())
}

func (s *FloatCellTestSuite) TestArithmeticFetchBefore() {
	c := NewFloat(1.5)
	s.Equal(1.5, c.Add(2))
	s.Equal(3.5, c.Load())
	s.Equal(3.5, c.Sub(0.5))
	s.Equal(3.0, c.Load())
	s.Equal(3.0, c.Mul(4))
	s.Equal(12.0, c.Load())

	prev, err := c.Div(8)
	s.Require().NoError(err)
	s.Equal(12.0, prev)
	s.Equal(1.5, c.Load())
}

func (s *FloatCellTestSuite) TestIEEEPropagation() {
	c := NewFloat(math.MaxFloat64)
	c.Mul(10)
	s.True(math.IsInf(c.Load(), 1))

	c.Add(math.Inf(-1))
	s.True(math.IsNaN(c.Load()))

	c.Add(1)
	s.True(math.IsNaN(c.Load()))
}

func (s *FloatCellTestSuite) TestDivByZero() {
	c := NewFloat(30)
	_, err := c.Div(0)
	s.ErrorIs(err, ErrDivisionByZero)
	_, err = c.Div(math.Copysign(0, -1))
	s.ErrorIs(err, ErrDivisionByZero)
	s.ErrorIs(c.DivAssign(0), ErrDivisionByZero)
	s.Equal(30.0, c.Load())
}

func (s *FloatCellTestSuite) TestCompoundAssign() {
	c := NewFloat(1)
	c.AddAssign(2)
	c.SubAssign(0.5)
	c.MulAssign(4)
	s.Require().NoError(c.DivAssign(2))
	s.Equal(5.0, c.Load())
}

func (s *FloatCellTestSuite) TestRendering() {
	c := NewFloat(2.5)
	s.Equal("2.5", c.String())
	s.Equal("AtomicFloat(2.5)", fmt.Sprintf("%#v", c))
	c.Store(math.Inf(-1))
	s.Equal("-Inf", c.String())
	s.Equal(math.Inf(-1), c.Float())
}

func (s *FloatCellTestSuite) TestExportImportBitExact() {
	payloadNaN := math.Float64frombits(0x7ff8_0000_0000_beef)
	for _, v := range []float64{0.1, -0.0, math.Inf(1), payloadNaN} {
		src := NewFloat(v)
		dst := NewFloat(0)

		bin, err := src.MarshalBinary()
		s.Require().NoError(err)
		s.Require().NoError(dst.UnmarshalBinary(bin))
		s.Equal(math.Float64bits(v), math.Float64bits(dst.Load()))

		dst.ImportBits(src.ExportBits())
		s.Equal(math.Float64bits(v), dst.ExportBits())
	}

	c := NewFloat(0.1)
	c.Import(c.Export())
	s.Equal(0.1, c.Load())

	txt, err := c.MarshalText()
	s.Require().NoError(err)
	var dst FloatCell
	s.Require().NoError(dst.UnmarshalText(txt))
	s.Equal(0.1, dst.Load())
	s.ErrorIs(dst.UnmarshalText([]byte("one")), ErrInvalidState)
}

func TestFloatCellTestSuite(t *testing.T) {
	suite.Run(t, new(FloatCellTestSuite))
}
