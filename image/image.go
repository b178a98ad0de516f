// Package image builds the word images that feed target channels and reads
// and writes them in the hex text format $readmemh understands.
package image

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// An Image is the ordered word sequence behind one target.
type Image struct {
	Width int
	Words []uint64
}

// Len returns the number of words.
func (img Image) Len() int {
	return len(img.Words)
}

// Encode writes one zero-padded hex word per line.
func (img Image) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	digits := (img.Width + 3) / 4

	for _, word := range img.Words {
		if _, err := fmt.Fprintf(bw, "%0*x\n", digits, word); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Decode parses the output of Encode. Blank lines are skipped and every word
// must fit in width bits.
func Decode(r io.Reader, width int) (Image, error) {
	img := Image{Width: width}
	limit := mask(width)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		word, err := strconv.ParseUint(text, 16, 64)
		if err != nil {
			return Image{}, errors.Wrapf(err, "line %d", line)
		}

		if word > limit {
			return Image{}, errors.Errorf(
				"line %d: word %s does not fit in %d bits", line, text, width)
		}

		img.Words = append(img.Words, word)
	}

	if err := scanner.Err(); err != nil {
		return Image{}, err
	}

	return img, nil
}
