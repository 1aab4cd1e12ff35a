package atomicx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type BoolCellTestSuite struct {
	suite.Suite
}

func (s *BoolCellTestSuite) TestZeroValue() {
	var c BoolCell
	s.False(c.Load())
	s.False(NewBool(false).Load())
}

func (s *BoolCellTestSuite) TestStoreLoadSwap() {
	c := NewBool(false)
	c.Store(true)
	s.True(c.Load())
	s.True(c.Swap(false))
	s.False(c.Load())
}

func (s *BoolCellTestSuite) TestCompareExchange() {
	c := NewBool(true)
	ok, seen := c.CompareExchange(true, false)
	s.True(ok)
	s.True(seen)
	s.False(c.Load())

	c = NewBool(false)
	ok, seen = c.CompareExchange(true, false)
	s.False(ok)
	s.False(seen)
	s.False(c.Load())
}

func (s *BoolCellTestSuite) TestFlip() {
	c := NewBool(true)
	s.True(c.Flip())
	s.False(c.Load())
	s.False(c.Flip())
	s.True(c.Load())
}

func (s *BoolCellTestSuite) TestConversions() {
	c := NewBool(true)
	s.True(c.Bool())
	s.Equal(int64(1), c.Int())
	s.False(c.Not())
	s.True(c.Load(), "Not must not mutate")

	c.Store(false)
	s.Equal(int64(0), c.Int())
	s.True(c.Not())
	s.Equal("false", c.String())
	s.Equal("AtomicBool(false)", fmt.Sprintf("%#v", c))
	c.Store(true)
	s.Equal("true", c.String())
	s.Equal("AtomicBool(true)", c.GoString())
}

func (s *BoolCellTestSuite) TestExportImport() {
	for _, v := range []bool{true, false} {
		c := NewBool(v)
		c.Import(c.Export())
		s.Equal(v, c.Load())

		bin, err := c.MarshalBinary()
		s.Require().NoError(err)
		var dst BoolCell
		s.Require().NoError(dst.UnmarshalBinary(bin))
		s.Equal(v, dst.Load())

		txt, err := c.MarshalText()
		s.Require().NoError(err)
		s.Require().NoError(dst.UnmarshalText(txt))
		s.Equal(v, dst.Load())
	}

	var c BoolCell
	s.ErrorIs(c.UnmarshalBinary([]byte{0, 0, 0, 0, 0, 0, 0, 2}), ErrInvalidState)
	s.ErrorIs(c.UnmarshalText([]byte("maybe")), ErrInvalidState)
}

func (s *BoolCellTestSuite) TestExternalWordNonZeroIsTrue() {
	var w uint64 = 7
	c := NewBoolAt(&w)
	s.True(c.Load())
	ok, _ := c.CompareExchange(true, false)
	s.True(ok)
	s.Equal(uint64(0), w)
}

func TestBoolCellTestSuite(t *testing.T) {
	suite.Run(t, new(BoolCellTestSuite))
}
