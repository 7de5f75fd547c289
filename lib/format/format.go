/*package format handles macrobunch's two miniature formatting languages:
sequence formats, used to select particle indices, and rank formats, used to
give each process of a group its own dump file. E.g:

   Delete = "0..100 - 63 + 200"
   Output = "dumps/bunch.{%03d,rank}.zst"

Sequence formats are a generic way to specify non-contiguous sequences of
natural numbers. They consist of a series of tokens separated by "+" or "-".
Each token can be either a number or two numbers separated by "..", which
is inclusive on both ends. E.g.:

  100
  0..100
  0..10 + 100
  0..100 - 63 - 10..20

Every "+" token is added before any "-" token is removed. Adding a number
twice or removing a number that was never added is an error. All spaces
around "-" and "+" are ignored.

Rank formats are a combination of fixed text and variables. Variables are
written as {verb,rank}, where "verb" is a printf() verb (e.g. %03d) used to
print the rank of the calling process.
*/
package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// Any expanded sequences which would have more than BigNumber elements
	// are assumed to be bugs.
	BigNumber = 1 << 24
)

// ExpandSequenceFormat expands a sequence format string into a sorted
// sequence of integers.
func ExpandSequenceFormat(format string) ([]int, error) {
	tok, err := tokeniseSequenceFormat(format)
	if err != nil {
		return nil, err
	}
	adds, subs, err := addsSubsSequenceFormat(tok)
	if err != nil {
		return nil, err
	}

	m := map[int]bool{}
	for i := range adds {
		lo, hi := sequenceFormatTokenBounds(adds[i])
		if len(m)+(hi-lo+1) > BigNumber {
			return nil, fmt.Errorf("The sequence '%s' would have more than "+
				"%d elements, which is almost certainly a bug.",
				format, BigNumber)
		}
		for n := lo; n <= hi; n++ {
			if m[n] {
				return nil, fmt.Errorf("The number %d is added more "+
					"than once.", n)
			}
			m[n] = true
		}
	}

	for i := range subs {
		lo, hi := sequenceFormatTokenBounds(subs[i])
		for n := lo; n <= hi; n++ {
			if !m[n] {
				return nil, fmt.Errorf("The number %d is removed more "+
					"times than it was inserted.", n)
			}
			delete(m, n)
		}
	}

	out := make([]int, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Ints(out)

	return out, nil
}

// tokeniseSequenceFormat splits a sequence format string into number tokens
// and operators.
func tokeniseSequenceFormat(format string) ([]string, error) {
	// Make sure all operators are separated by spaces.
	formatClean := strings.ReplaceAll(format, "+", " + ")
	formatClean = strings.ReplaceAll(formatClean, "-", " - ")

	tok := strings.Fields(formatClean)
	if len(tok) == 0 {
		return nil, fmt.Errorf("The format string is empty.")
	}
	return tok, nil
}

// addsSubsSequenceFormat sorts tokens into ones which add numbers to the
// sequence and ones which remove them, checking the operator grammar along
// the way.
func addsSubsSequenceFormat(tok []string) (adds, subs []string, err error) {
	if len(tok) == 0 {
		return nil, nil, fmt.Errorf("Format string is empty")
	}

	// Handle the case where the starting "+" is dropped.
	adds, subs = []string{}, []string{}
	start := 0
	if tok[0] != "+" && tok[0] != "-" {
		if err := isSequenceFormatToken(tok[0]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				1, tok[0], err.Error(),
			)
		}
		adds = append(adds, tok[0])
		start = 1
	}

	for i := start; i < len(tok); i += 2 {
		if tok[i] != "-" && tok[i] != "+" {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', should be a '-' or '+', but isn't.",
				i+1, tok[i])
		} else if i+1 >= len(tok) {
			return nil, nil, fmt.Errorf(
				"The format string ends in a trailing '%s'", tok[i],
			)
		} else if err := isSequenceFormatToken(tok[i+1]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element number %d, '%s', cannot be parsed because %s",
				i+2, tok[i+1], err.Error(),
			)
		}

		if tok[i] == "+" {
			adds = append(adds, tok[i+1])
		} else {
			subs = append(subs, tok[i+1])
		}
	}

	return adds, subs, nil
}

// isSequenceFormatToken returns a nil error if tok is a valid token for
// a sequence format and an error describing the problem otherwise. The error
// message assumes it is printed after a trailing "because"
func isSequenceFormatToken(tok string) error {
	if len(tok) == 0 {
		return fmt.Errorf("the token is empty.")
	}

	bounds := strings.Split(tok, "..")
	switch len(bounds) {
	case 1:
		if _, err := strconv.Atoi(bounds[0]); err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		return nil
	case 2:
		start, err := strconv.Atoi(bounds[0])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[0])
		}
		end, err := strconv.Atoi(bounds[1])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[1])
		}
		if end < start {
			return fmt.Errorf("lower bound %d is larger than upper bound %d.",
				start, end)
		}
		return nil
	}
	return fmt.Errorf("it has more than one '..'.")
}

// sequenceFormatTokenBounds returns the inclusive range of numbers covered
// by a token which has already passed isSequenceFormatToken.
func sequenceFormatTokenBounds(tok string) (lo, hi int) {
	bounds := strings.Split(tok, "..")
	lo, _ = strconv.Atoi(bounds[0])
	if len(bounds) == 1 {
		return lo, lo
	}
	hi, _ = strconv.Atoi(bounds[1])
	return lo, hi
}

// ExpandRankFormat replaces every {verb,rank} variable in format with the
// given rank printed using verb.
func ExpandRankFormat(format string, rank int) (string, error) {
	starts, ends, err := startsEndsFormatString(format)
	if err != nil {
		return "", err
	}

	sb := &strings.Builder{}
	prev := 0
	for i := range starts {
		sb.WriteString(format[prev:starts[i]])

		v := format[starts[i]+1 : ends[i]-1]
		tok := strings.Split(v, ",")
		if len(tok) != 2 {
			return "", fmt.Errorf("The file format '%s' has an invalid "+
				"variable, '{%s}'. Variables should contain a formatting "+
				"verb (e.g. '%%d', '%%03d'), a comma, and the argument "+
				"'rank'.", format, v)
		}
		verb, arg := strings.TrimSpace(tok[0]), strings.TrimSpace(tok[1])
		if arg != "rank" {
			return "", fmt.Errorf("The file format '%s' has a variable "+
				"with the argument '%s', but only 'rank' is supported.",
				format, arg)
		} else if !strings.HasPrefix(verb, "%") ||
			!strings.HasSuffix(verb, "d") || strings.Count(verb, "%") != 1 {
			return "", fmt.Errorf("The file format '%s' has a variable "+
				"with the verb '%s', but only integer verbs like '%%d' and "+
				"'%%03d' are supported.", format, verb)
		}

		fmt.Fprintf(sb, verb, rank)
		prev = ends[i]
	}
	sb.WriteString(format[prev:])

	return sb.String(), nil
}

// startsEndsFormatString returns the indices of the opening '{' and one past
// the closing '}' of each variable in a file format.
func startsEndsFormatString(format string) (starts, ends []int, err error) {
	starts, ends = []int{}, []int{}
	ending := "Make sure variables in file formats are enclosed in " +
		"matching { ... } pairs."

	open := false
	for i := range format {
		switch format[i] {
		case '{':
			if open {
				return nil, nil, fmt.Errorf("The file format '%s' has "+
					"nested '{' characters at index %d. "+ending, format, i)
			}
			open = true
			starts = append(starts, i)
		case '}':
			if !open {
				return nil, nil, fmt.Errorf("The file format '%s' has a "+
					"'}' that doesn't come after a '{' at index %d. "+ending,
					format, i)
			}
			open = false
			ends = append(ends, i+1)
		}
	}

	if open {
		return nil, nil, fmt.Errorf("The file format '%s' has a '{' "+
			"without a matching '}' at index %d. "+ending,
			format, starts[len(starts)-1])
	}
	return starts, ends, nil
}
