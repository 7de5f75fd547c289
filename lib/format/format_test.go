package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceFormatToken(t *testing.T) {
	tests := []struct {
		tok    string
		valid  bool
		lo, hi int
	}{
		{"", false, 0, 0},
		{"1", true, 1, 1},
		{"1000", true, 1000, 1000},
		{"a", false, 0, 0},
		{"1..30", true, 1, 30},
		{"10..10", true, 10, 10},
		{"a..30", false, 0, 0},
		{"1..a", false, 0, 0},
		{"30..1", false, 0, 0},
		{"a..b", false, 0, 0},
		{"1..30..60", false, 0, 0},
		{"1...3", false, 0, 0},
	}

	for i, test := range tests {
		err := isSequenceFormatToken(test.tok)
		if !test.valid {
			assert.Error(t, err, "%d) '%s'", i, test.tok)
			continue
		}
		require.NoError(t, err, "%d) '%s'", i, test.tok)

		lo, hi := sequenceFormatTokenBounds(test.tok)
		assert.Equal(t, [2]int{test.lo, test.hi}, [2]int{lo, hi},
			"%d) '%s'", i, test.tok)
	}
}

func TestTokeniseSequenceFormat(t *testing.T) {
	tests := []struct {
		format string
		tok    []string
		valid  bool
	}{
		{"", []string{""}, false},
		{"0", []string{"0"}, true},
		{"101", []string{"101"}, true},
		{"10..20", []string{"10..20"}, true},
		{"a..b", []string{"a..b"}, true},
		{"0+1", []string{"0", "+", "1"}, true},
		{"0 + 1", []string{"0", "+", "1"}, true},
		{"0-1", []string{"0", "-", "1"}, true},
		{"0 - 1", []string{"0", "-", "1"}, true},
		{"  0+       1    ", []string{"0", "+", "1"}, true},
		{"-0..100 + 0..200-9", []string{"-", "0..100", "+", "0..200",
			"-", "9"}, true},
		{"+-+-", []string{"+", "-", "+", "-"}, true},
	}

	for i, test := range tests {
		tok, err := tokeniseSequenceFormat(test.format)
		if !test.valid {
			assert.Error(t, err, "%d) '%s'", i, test.format)
			continue
		}
		require.NoError(t, err, "%d) '%s'", i, test.format)
		assert.Equal(t, test.tok, tok, "%d) '%s'", i, test.format)
	}
}

func TestAddsSubsSequenceFormat(t *testing.T) {
	tests := []struct {
		tok, adds, subs []string
		valid           bool
	}{
		{[]string{}, nil, nil, false},
		{[]string{"1"}, []string{"1"}, []string{}, true},
		{[]string{"+", "1"}, []string{"1"}, []string{}, true},
		{[]string{"-", "1"}, []string{}, []string{"1"}, true},
		{[]string{"1", "+", "2"}, []string{"1", "2"}, []string{}, true},
		{[]string{"1", "+", "2..10"}, []string{"1", "2..10"}, []string{}, true},
		{[]string{"1", "-", "2"}, []string{"1"}, []string{"2"}, true},
		{[]string{"1", "-", "2..10"}, []string{"1"}, []string{"2..10"}, true},
		{[]string{"-", "1", "-", "2"}, []string{}, []string{"1", "2"}, true},
		{[]string{"1", "2"}, nil, nil, false},
		{[]string{"1", "+", "2", "+"}, nil, nil, false},
		{[]string{"1", "+", "+", "2"}, nil, nil, false},
		{[]string{"1", "-", "-", "2"}, nil, nil, false},
		{[]string{"1", "+", "-", "2"}, nil, nil, false},
		{[]string{"1", "+"}, nil, nil, false},
		{[]string{"1", "-", "+", "2"}, nil, nil, false},
		{[]string{"1", "*", "2"}, nil, nil, false},
		{[]string{"+", "+", "1", "+", "2"}, nil, nil, false},
		{[]string{"a", "+", "2"}, nil, nil, false},
		{[]string{"1", "+", "a"}, nil, nil, false},
		{[]string{"1", "+", "a..2"}, nil, nil, false},
	}

	for i, test := range tests {
		adds, subs, err := addsSubsSequenceFormat(test.tok)
		if !test.valid {
			assert.Error(t, err, "%d) %q", i, test.tok)
			continue
		}
		require.NoError(t, err, "%d) %q", i, test.tok)
		assert.Equal(t, test.adds, adds, "%d) %q adds", i, test.tok)
		assert.Equal(t, test.subs, subs, "%d) %q subs", i, test.tok)
	}
}

func TestExpandSeqeunceFormat(t *testing.T) {
	tests := []struct {
		format string
		n      []int
		valid  bool
	}{
		{"", nil, false},
		{"a", nil, false},
		{"10..a", nil, false},
		{"a..10", nil, false},
		{"1", []int{1}, true},
		{"1..5", []int{1, 2, 3, 4, 5}, true},
		{"+1", []int{1}, true},
		{"+1..5", []int{1, 2, 3, 4, 5}, true},
		{"+ 1", []int{1}, true},
		{"+ 1..5", []int{1, 2, 3, 4, 5}, true},
		{"-1", nil, false},
		{"-1..5", nil, false},
		{"- 1", nil, false},
		{"- 1..5", nil, false},
		{"1 + 2", []int{1, 2}, true},
		{"1+2", []int{1, 2}, true},
		{"1 +2", []int{1, 2}, true},
		{"1+ 2", []int{1, 2}, true},
		{"1 + 1", []int{1}, false},
		{"1 + 3..5", []int{1, 3, 4, 5}, true},
		{"3..5 + 1", []int{1, 3, 4, 5}, true},
		{"3..5 + 1 + 7..9", []int{1, 3, 4, 5, 7, 8, 9}, true},
		{"-3 + 3..5 - 4", []int{5}, true},
		{"1..10 - 2..9", []int{1, 10}, true},
		{"3..5 - 1", nil, false},
		{"3..5 - 4 - 4", nil, false},
		{"3..5 + 6+", nil, false},
		{"3..5 + 6-", nil, false},
	}

	for i, test := range tests {
		n, err := ExpandSequenceFormat(test.format)
		if !test.valid {
			assert.Error(t, err, "%d) '%s'", i, test.format)
			continue
		}
		require.NoError(t, err, "%d) '%s'", i, test.format)
		assert.Equal(t, test.n, n, "%d) '%s'", i, test.format)
	}
}

func TestStartsEndsFormatString(t *testing.T) {
	tests := []struct {
		format       string
		starts, ends []int
		valid        bool
	}{
		{"aaaaaa", []int{}, []int{}, true},
		{"a{bb}a", []int{1}, []int{5}, true},
		{"{bb}aa", []int{0}, []int{4}, true},
		{"aa{bb}", []int{2}, []int{6}, true},
		{"{}", []int{0}, []int{2}, true},
		{"{}{bb}{}{}", []int{0, 2, 6, 8}, []int{2, 6, 8, 10}, true},
		{"{}{bb}a{}{}", []int{0, 2, 7, 9}, []int{2, 6, 9, 11}, true},
		{"{", nil, nil, false},
		{"}", nil, nil, false},
		{"{{", nil, nil, false},
		{"{{}}", nil, nil, false},
		{"{}{", nil, nil, false},
		{"{}}", nil, nil, false},
		{"}{}", nil, nil, false},
		{"{{}", nil, nil, false},
	}

	for i, test := range tests {
		starts, ends, err := startsEndsFormatString(test.format)
		if !test.valid {
			assert.Error(t, err, "%d) '%s'", i, test.format)
			assert.Nil(t, starts, "%d) '%s'", i, test.format)
			continue
		}
		require.NoError(t, err, "%d) '%s'", i, test.format)
		assert.Equal(t, test.starts, starts, "%d) '%s' starts", i, test.format)
		assert.Equal(t, test.ends, ends, "%d) '%s' ends", i, test.format)
	}
}

func TestExpandRankFormat(t *testing.T) {
	tests := []struct {
		format string
		rank   int
		out    string
		valid  bool
	}{
		{"bunch.dat", 3, "bunch.dat", true},
		{"bunch.{%d,rank}.dat", 3, "bunch.3.dat", true},
		{"bunch.{%03d,rank}.dat", 7, "bunch.007.dat", true},
		{"{%d,rank}", 12, "12", true},
		{"r{%d, rank}/bunch.{%02d,rank}", 4, "r4/bunch.04", true},
		{"bunch.{%d}.dat", 0, "", false},
		{"bunch.{%d,snapshot}.dat", 0, "", false},
		{"bunch.{%s,rank}.dat", 0, "", false},
		{"bunch.{%d%d,rank}.dat", 0, "", false},
		{"bunch.{%d,rank.dat", 0, "", false},
		{"bunch.%d,rank}.dat", 0, "", false},
	}

	for i, test := range tests {
		out, err := ExpandRankFormat(test.format, test.rank)
		if !test.valid {
			assert.Error(t, err, "%d) '%s'", i, test.format)
			continue
		}
		require.NoError(t, err, "%d) '%s'", i, test.format)
		assert.Equal(t, test.out, out, "%d) '%s', rank %d", i,
			test.format, test.rank)
	}
}
