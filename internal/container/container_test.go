// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package container

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/alvinbaena/golomb/pkg/bitio"
	"github.com/alvinbaena/golomb/pkg/golomb"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestEncodeDecode(t *testing.T) {
	cases := []struct {
		order   bitio.Endianness
		modulus uint64
		values  []uint64
	}{
		{bitio.BigEndian, 3, []uint64{10, 0, 1, 2, 3, 100}},
		{bitio.LittleEndian, 3, []uint64{10, 0, 1, 2, 3, 100}},
		{bitio.BigEndian, 1, []uint64{0, 0, 0, 5}},
		{bitio.LittleEndian, 1000, []uint64{999, 1000, 1001, 123456}},
		{bitio.BigEndian, 7, []uint64{}},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		stats, err := Encode(&buf, tc.order, tc.modulus, tc.values)
		if err != nil {
			t.Fatalf("Encode should not fail: %s", err)
		}

		bits, err := EncodedLen(tc.values, tc.modulus)
		if err != nil {
			t.Fatalf("EncodedLen should not fail: %s", err)
		}
		if stats.Bits != bits {
			t.Errorf("Encode: %d bits, EncodedLen: %d", stats.Bits, bits)
		}
		if stats.Bytes != uint64(buf.Len()) {
			t.Errorf("Encode: %d bytes reported, %d written", stats.Bytes, buf.Len())
		}

		h, got, err := Decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("Decode should not fail: %s", err)
		}
		want := Header{Order: tc.order, Modulus: tc.modulus, Count: uint64(len(tc.values)), Bits: bits}
		if diff := cmp.Diff(want, h); diff != "" {
			t.Errorf("header mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(tc.values, got); diff != "" {
			t.Errorf("%s b=%d values mismatch (-want +got):\n%s", tc.order, tc.modulus, diff)
		}
	}
}

func TestEncode_Layout(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, bitio.BigEndian, 3, []uint64{10}); err != nil {
		t.Fatalf("Encode should not fail: %s", err)
	}

	want := []byte("[GLB:v1]")
	want = append(want, 0)
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 3)
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 1)
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 6)
	want = append(want, 0x18)

	if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
		t.Errorf("container layout mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_Errors(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, bitio.Endianness(9), 3, []uint64{1}); !errors.Is(err, ErrBadOrder) {
		t.Errorf("Encode with an unknown order should fail with ErrBadOrder, got: %v", err)
	}
	if _, err := Encode(&buf, bitio.BigEndian, 0, []uint64{1}); !errors.Is(err, golomb.ErrInvalidModulus) {
		t.Errorf("Encode with b=0 should fail with ErrInvalidModulus, got: %v", err)
	}
	if _, err := Encode(&buf, bitio.BigEndian, 1, []uint64{3, math.MaxUint64}); !errors.Is(err, golomb.ErrTooLong) {
		t.Errorf("Encode of an uncountable code should fail with ErrTooLong, got: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written on invalid arguments, got %d bytes", buf.Len())
	}
}

func TestEncodedLen(t *testing.T) {
	cases := []struct {
		values []uint64
		b      uint64
		want   uint64
		err    error
	}{
		{[]uint64{}, 3, 0, nil},
		{[]uint64{10, 0, 7}, 3, 6 + 2 + 5, nil},
		{[]uint64{golomb.MaxQuotient}, 1, golomb.MaxQuotient + 1, nil},
		{[]uint64{golomb.MaxQuotient, golomb.MaxQuotient, golomb.MaxQuotient}, 1, 0, golomb.ErrTooLong},
		{[]uint64{1, math.MaxUint64}, 1, 0, golomb.ErrTooLong},
		{[]uint64{1}, 0, 0, golomb.ErrInvalidModulus},
	}

	for _, tc := range cases {
		got, err := EncodedLen(tc.values, tc.b)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Errorf("EncodedLen(%v, %d) should fail with %v, got: %d, %v", tc.values, tc.b, tc.err, got, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("EncodedLen(%v, %d) should not fail: %s", tc.values, tc.b, err)
		}
		if got != tc.want {
			t.Errorf("EncodedLen(%v, %d): %d, want: %d", tc.values, tc.b, got, tc.want)
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, bitio.LittleEndian, 5, []uint64{1, 20, 300, 4000}); err != nil {
		t.Fatalf("Encode should not fail: %s", err)
	}
	valid := buf.Bytes()

	badMagic := append([]byte{}, valid...)
	badMagic[0] = 'X'
	if _, _, err := Decode(bytes.NewReader(badMagic)); !errors.Is(err, ErrBadMagic) {
		t.Errorf("Decode with a bad magic should fail with ErrBadMagic, got: %v", err)
	}

	if _, _, err := Decode(bytes.NewReader(valid[:4])); !errors.Is(err, ErrBadMagic) {
		t.Errorf("Decode of a short header should fail with ErrBadMagic, got: %v", err)
	}

	badOrder := append([]byte{}, valid...)
	badOrder[len(magic)] = 7
	if _, _, err := Decode(bytes.NewReader(badOrder)); !errors.Is(err, ErrBadOrder) {
		t.Errorf("Decode with a bad order should fail with ErrBadOrder, got: %v", err)
	}

	zeroModulus := append([]byte{}, valid...)
	copy(zeroModulus[len(magic)+1:], make([]byte, 8))
	if _, _, err := Decode(bytes.NewReader(zeroModulus)); !errors.Is(err, golomb.ErrInvalidModulus) {
		t.Errorf("Decode with b=0 should fail with ErrInvalidModulus, got: %v", err)
	}

	truncated := valid[:HeaderSize+2]
	if _, _, err := Decode(bytes.NewReader(truncated)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Decode of a truncated payload should fail with io.ErrUnexpectedEOF, got: %v", err)
	}
}

func TestSuggestModulus(t *testing.T) {
	cases := []struct {
		values []uint64
		want   uint64
	}{
		{nil, 1},
		{[]uint64{0, 0, 0}, 1},
		// mean 9, p = 0.1
		{[]uint64{9, 9, 9, 9}, 7},
		{[]uint64{0, 18}, 7},
		{[]uint64{1}, 1},
	}

	for _, tc := range cases {
		if got := SuggestModulus(tc.values); got != tc.want {
			t.Errorf("SuggestModulus(%v): %d, want: %d", tc.values, got, tc.want)
		}
	}

	if got := SuggestModulus([]uint64{math.MaxUint64}); got < 1<<62 {
		t.Errorf("SuggestModulus of a huge mean: %d, want a huge modulus", got)
	}
}
