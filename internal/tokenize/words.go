package tokenize

import "strings"

// Words replaced by two tokens, mirroring the splits a Treebank word
// tokenizer applies to letter-only text.
var boundarySplits = map[string][2]string{
	"CANNOT": {"CAN", "NOT"},
	"GIMME":  {"GIM", "ME"},
	"GONNA":  {"GON", "NA"},
	"GOTTA":  {"GOT", "TA"},
	"LEMME":  {"LEM", "ME"},
	"WANNA":  {"WAN", "NA"},
}

// Words replaces every rune that is not an ASCII letter with a space,
// upper-cases the result and splits it into word tokens.
func Words(text string) []string {
	if text == "" {
		return nil
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if parts, ok := boundarySplits[f]; ok {
			out = append(out, parts[0], parts[1])
			continue
		}
		out = append(out, f)
	}
	return out
}
