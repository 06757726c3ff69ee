package ranking

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentFolder removes combining marks so "sênior" and "senior" land on the
// same term.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

// tokenize lower-cases, strips accents and splits the text into word
// tokens of at least two alphanumeric runes.
func tokenize(text string) []string {
	text = stripAccents(strings.ToLower(text))

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	out := tokens[:0]
	for _, tok := range tokens {
		if len([]rune(tok)) >= 2 {
			out = append(out, tok)
		}
	}
	return out
}

// terms expands tokens into n-grams in the [min, max] range, bigrams
// joined with a single space.
func terms(tokens []string, ngramMin, ngramMax int) []string {
	if ngramMin <= 1 && ngramMax <= 1 {
		return tokens
	}

	out := make([]string, 0, len(tokens)*2)
	for n := ngramMin; n <= ngramMax; n++ {
		if n == 1 {
			out = append(out, tokens...)
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// sparseVec is a term-index → weight map for one document.
type sparseVec map[int]float64

// tfidfMatrix builds L2-normalized TF-IDF vectors (sub-linear term
// frequency, smoothed inverse document frequency) over the documents,
// keeping at most maxFeatures terms ranked by corpus frequency. Returns
// nil when the vocabulary ends up empty.
func tfidfMatrix(docs []string, ngramMin, ngramMax, maxFeatures int) []sparseVec {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	corpus := make(map[string]int)

	for i, doc := range docs {
		c := make(map[string]int)
		for _, term := range terms(tokenize(doc), ngramMin, ngramMax) {
			c[term]++
		}
		counts[i] = c
		for term, n := range c {
			df[term]++
			corpus[term] += n
		}
	}

	if len(df) == 0 {
		return nil
	}

	vocabTerms := make([]string, 0, len(df))
	for term := range df {
		vocabTerms = append(vocabTerms, term)
	}
	// Keep the most frequent terms when the vocabulary exceeds the cap;
	// alphabetical order breaks frequency ties so the cut is stable.
	sort.Slice(vocabTerms, func(i, k int) bool {
		if corpus[vocabTerms[i]] != corpus[vocabTerms[k]] {
			return corpus[vocabTerms[i]] > corpus[vocabTerms[k]]
		}
		return vocabTerms[i] < vocabTerms[k]
	})
	if maxFeatures > 0 && len(vocabTerms) > maxFeatures {
		vocabTerms = vocabTerms[:maxFeatures]
	}

	vocab := make(map[string]int, len(vocabTerms))
	for idx, term := range vocabTerms {
		vocab[term] = idx
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocabTerms))
	for term, idx := range vocab {
		idf[idx] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	matrix := make([]sparseVec, len(docs))
	for i, c := range counts {
		vec := make(sparseVec)
		for term, count := range c {
			idx, ok := vocab[term]
			if !ok {
				continue
			}
			tf := 1 + math.Log(float64(count))
			vec[idx] = tf * idf[idx]
		}
		normalizeVec(vec)
		matrix[i] = vec
	}

	return matrix
}

func normalizeVec(vec sparseVec) {
	var sum float64
	for _, w := range vec {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	length := math.Sqrt(sum)
	for idx, w := range vec {
		vec[idx] = w / length
	}
}

// dotSparse is the cosine similarity of two L2-normalized sparse vectors.
func dotSparse(a, b sparseVec) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, w := range a {
		sum += w * b[idx]
	}
	return sum
}
