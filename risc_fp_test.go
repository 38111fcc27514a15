package main

import "testing"

// fltConst is the fixed float constant (value 2^23, with exponent field 150
// chosen to match fpAdd's hardcoded FLT exponent) that real RISC5 code
// loads via a load-upper MOV before executing FLT/FLR, per the reference
// fp-test harness (original_source/fp-test/flt.c, flr.c use the same
// 0x4B00<<16 constant as the "y" operand).
const fltConst = 0x4B00 << 16

// TestFloatIntRoundTrip reproduces spec.md §8's "FLR(FLT(n)) == n" law for
// a sample of small integers.
func TestFloatIntRoundTrip(t *testing.T) {
	values := []int32{
		0, 1, -1, 2, -2, 100, -100, 123456, -123456,
		1 << 22, -(1 << 22), (1 << 23) - 1, -(1 << 23),
	}
	for _, n := range values {
		flt := fpAdd(uint32(n), fltConst, true, false)
		back := int32(fpAdd(flt, fltConst, false, true))
		if back != n {
			t.Errorf("FLR(FLT(%d)) = %d, want %d (flt bits = %#08x)", n, back, n, flt)
		}
	}
}

// TestFPAddOneIsIEEEOne checks that FLT(1) produces the expected IEEE-754
// single-precision bit pattern for 1.0, which this 24-bit format shares
// (bias-127 exponent, explicit-leading-bit-dropped 23-bit mantissa).
func TestFPAddOneIsIEEEOne(t *testing.T) {
	got := fpAdd(1, fltConst, true, false)
	want := uint32(0x3F800000)
	if got != want {
		t.Errorf("FLT(1) = %#08x, want %#08x", got, want)
	}
}

func TestFPAddZero(t *testing.T) {
	if got := fpAdd(0x3F800000, 0, false, false); got != 0x3F800000 {
		t.Errorf("x + 0 = %#08x, want %#08x (zero operand pass-through)", got, 0x3F800000)
	}
	if got := fpAdd(0, 0x3F800000, false, false); got != 0x3F800000 {
		t.Errorf("0 + y = %#08x, want %#08x", got, 0x3F800000)
	}
}

func TestFPMulByOne(t *testing.T) {
	one := uint32(0x3F800000)
	x := uint32(0x40000000) // 2.0
	if got := fpMul(x, one); got != x {
		t.Errorf("x * 1.0 = %#08x, want %#08x", got, x)
	}
}

func TestFPDivByOne(t *testing.T) {
	one := uint32(0x3F800000)
	x := uint32(0x40000000) // 2.0
	if got := fpDiv(x, one); got != x {
		t.Errorf("x / 1.0 = %#08x, want %#08x", got, x)
	}
}

// TestIdivUnsigned exercises the non-restoring divider directly for
// straightforward unsigned cases.
func TestIdivUnsigned(t *testing.T) {
	cases := []struct{ x, y, quot, rem uint32 }{
		{10, 3, 3, 1},
		{0, 5, 0, 0},
		{100, 7, 14, 2},
	}
	for _, tc := range cases {
		got := idiv(tc.x, tc.y, false)
		if got.quot != tc.quot || got.rem != tc.rem {
			t.Errorf("idiv(%d,%d,false) = {%d,%d}, want {%d,%d}",
				tc.x, tc.y, got.quot, got.rem, tc.quot, tc.rem)
		}
	}
}

// TestIdivSignedNegativeDividend checks the Euclidean-style remainder
// fixup for signed division of a negative dividend, matching DIV's
// non-restoring path for non-positive divisors (spec.md §4.1).
func TestIdivSignedNegativeDividend(t *testing.T) {
	var negSeven int32 = -7
	got := idiv(uint32(negSeven), 2, true)
	if int32(got.quot) != -4 {
		t.Errorf("quotient = %d, want -4", int32(got.quot))
	}
	if int32(got.rem) != 1 {
		t.Errorf("remainder = %d, want 1", int32(got.rem))
	}
}
