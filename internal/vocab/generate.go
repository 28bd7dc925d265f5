package vocab

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// Symbol classes for the canonical phoneme vocabulary. Space always takes
// id 0; the remaining symbols are deduplicated and sorted so regenerated
// files stay byte-stable.
const (
	letters    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	lettersIPA = "ɑɐɒæɓʙβɔɕçɗɖðʤəɘɚɛɜɝɞɟʄɡɠɢʛɦɧħɥʜɨɪʝɭɬɫɮʟɱɯɰŋɳɲɴøɵɸθœɶʘɹɺɾɻʀʁɽʂʃʈʧʉʊʋⱱʌɣɤʍχʎʏʑʐʒʔʡʕʢǀǁǂǃˈˌːˑʼʴʰʱᵝʲʷˠˤ˞↓↑→↗↘'̩ᵻ"
	lettersJP  = "äᵝĩũ"
	specials   = ";:,.!?¡¿—…\"'«»“”-_()[]#%&*+=>@\\/"
)

// CanonicalSymbols returns the canonical symbol set in id order.
func CanonicalSymbols() []rune {
	set := make(map[rune]struct{})
	for _, class := range []string{specials, letters, lettersIPA, lettersJP} {
		for _, r := range class {
			set[r] = struct{}{}
		}
	}

	sorted := make([]rune, 0, len(set))
	for r := range set {
		sorted = append(sorted, r)
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make([]rune, 0, len(sorted)+1)
	out = append(out, ' ')
	out = append(out, sorted...)

	return out
}

// Generate writes the canonical vocabulary to w, one symbol per line.
func Generate(w io.Writer) (int, error) {
	symbols := CanonicalSymbols()

	bw := bufio.NewWriter(w)
	for _, r := range symbols {
		// Space is written as a blank line, matching how Load reads it.
		if r == ' ' {
			if err := bw.WriteByte('\n'); err != nil {
				return 0, fmt.Errorf("vocab: write symbol %q: %w", r, err)
			}
			continue
		}

		if _, err := fmt.Fprintf(bw, "%c\n", r); err != nil {
			return 0, fmt.Errorf("vocab: write symbol %q: %w", r, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("vocab: flush: %w", err)
	}

	return len(symbols), nil
}
