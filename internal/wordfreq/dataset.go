package wordfreq

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/retype/internal/textsource"
)

const dataPrefix = "wordfreq/data/"

// List sizes in order of preference.
const (
	SizeLarge = "large"
	SizeSmall = "small"
)

const (
	minWordLen = 2
	maxWordLen = 20
)

// NoticeFiles are written next to generated word lists and are not languages.
var NoticeFiles = []string{"ATTRIBUTION", "LICENSE", "DATA_LICENSE"}

// Dataset gives access to the frequency lists inside a wheel.
type Dataset struct {
	zr    *zip.ReadCloser
	lists map[string]map[string]*zip.File // lang -> size -> file
}

// OpenDataset indexes the word lists in the wheel at path.
func OpenDataset(path string) (*Dataset, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	d := &Dataset{zr: zr, lists: map[string]map[string]*zip.File{}}
	for _, f := range zr.File {
		lang, size, ok := parseListName(f.Name)
		if !ok {
			continue
		}
		if d.lists[lang] == nil {
			d.lists[lang] = map[string]*zip.File{}
		}
		d.lists[lang][size] = f
	}
	if len(d.lists) == 0 {
		_ = zr.Close()
		return nil, fmt.Errorf("no word lists found in %s", filepath.Base(path))
	}
	return d, nil
}

// Close releases the wheel.
func (d *Dataset) Close() error {
	return d.zr.Close()
}

// Languages returns the sorted language codes in the dataset.
func (d *Dataset) Languages() []string {
	out := make([]string, 0, len(d.lists))
	for lang := range d.lists {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Words returns up to limit of the most frequent words for lang, using the
// large list when there is one. Words must be alphabetic, 2-20 runes long and
// accepted by keep. The list size used is returned alongside.
func (d *Dataset) Words(lang string, limit int, keep textsource.FilterFunc) ([]string, string, error) {
	if limit <= 0 {
		return nil, "", fmt.Errorf("limit must be greater than 0")
	}
	lang = strings.ToLower(lang)
	sizes, ok := d.lists[lang]
	if !ok {
		return nil, "", fmt.Errorf("unknown language %q", lang)
	}
	size := SizeLarge
	f, ok := sizes[size]
	if !ok {
		size = SizeSmall
		if f, ok = sizes[size]; !ok {
			return nil, "", fmt.Errorf("no word list for %q", lang)
		}
	}

	buckets, err := readBuckets(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	words := make([]string, 0, limit)
	seen := map[string]struct{}{}
	for _, bucket := range buckets {
		for _, word := range bucket.words {
			word = norm.NFC.String(word)
			if _, dup := seen[word]; dup || !usable(word) {
				continue
			}
			if keep != nil && !keep(word) {
				continue
			}
			seen[word] = struct{}{}
			words = append(words, word)
			if len(words) == limit {
				return words, size, nil
			}
		}
	}
	if len(words) == 0 {
		return nil, "", fmt.Errorf("no usable words for %s/%s", lang, size)
	}
	return words, size, nil
}

func usable(word string) bool {
	n := utf8.RuneCountInString(word)
	if n < minWordLen || n > maxWordLen {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// WriteAttribution writes the notices the dataset license asks for into dir.
func (d *Dataset) WriteAttribution(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	license, err := d.license()
	if err != nil {
		return err
	}
	files := map[string][]byte{
		"ATTRIBUTION.txt":  []byte(attribution),
		"LICENSE.txt":      license,
		"DATA_LICENSE.txt": []byte(dataLicense),
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func (d *Dataset) license() ([]byte, error) {
	for _, f := range d.zr.File {
		if !strings.Contains(strings.ToLower(f.Name), "license") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open license: %w", err)
		}
		defer closeQuietly(rc)
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read license: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("license file not found in wheel")
}

const attribution = `Word lists generated from the wordfreq dataset.
Source: https://github.com/rspeer/wordfreq
Data license: Creative Commons Attribution-ShareAlike 4.0 International (CC BY-SA 4.0).
Changes were made: filtered to alphabetic words and truncated to the requested size.
Includes data from Google Books Ngrams: https://books.google.com/ngrams
Includes data from the Leeds Internet Corpus: https://corpus.leeds.ac.uk/
Please attribute wordfreq when redistributing derived word lists.
`

const dataLicense = `This word list is licensed under CC BY-SA 4.0.
https://creativecommons.org/licenses/by-sa/4.0/
`

// parseListName accepts names like wordfreq/data/large_en.msgpack.gz.
func parseListName(name string) (lang, size string, ok bool) {
	name = strings.ToLower(name)
	if !strings.HasPrefix(name, dataPrefix) {
		return "", "", false
	}
	base := strings.TrimPrefix(name, dataPrefix)
	switch {
	case strings.HasSuffix(base, ".msgpack.gz"):
		base = strings.TrimSuffix(base, ".msgpack.gz")
	case strings.HasSuffix(base, ".msgpack"):
		base = strings.TrimSuffix(base, ".msgpack")
	default:
		return "", "", false
	}
	size, lang, found := strings.Cut(base, "_")
	if !found || lang == "" || (size != SizeLarge && size != SizeSmall) {
		return "", "", false
	}
	return lang, size, true
}

type bucket struct {
	score float64
	words []string
}

// readBuckets decodes a list file into frequency buckets, most frequent
// first. Two layouts are accepted: the cBpack format (a header map followed
// by one word array per centibel step) and explicit [score, words] pairs.
func readBuckets(f *zip.File) ([]bucket, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rc)

	var r io.Reader = rc
	if strings.HasSuffix(strings.ToLower(f.Name), ".gz") {
		gz, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer closeQuietly(gz)
		r = gz
	}

	var items []any
	if err := msgpack.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode msgpack: %w", err)
	}
	var out []bucket
	for i, item := range items {
		switch v := item.(type) {
		case map[string]any:
			// cBpack header.
			continue
		case []any:
			if b, ok := scoredBucket(v); ok {
				out = append(out, b)
				continue
			}
			words, ok := stringsOf(v)
			if !ok {
				return nil, fmt.Errorf("unexpected entry at index %d", i)
			}
			out = append(out, bucket{score: -float64(i), words: words})
		default:
			return nil, fmt.Errorf("unexpected %T at index %d", item, i)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out, nil
}

func scoredBucket(v []any) (bucket, bool) {
	if len(v) != 2 {
		return bucket{}, false
	}
	score, ok := number(v[0])
	if !ok {
		return bucket{}, false
	}
	list, ok := v[1].([]any)
	if !ok {
		return bucket{}, false
	}
	words, ok := stringsOf(list)
	if !ok {
		return bucket{}, false
	}
	return bucket{score: score, words: words}, true
}

func stringsOf(v []any) ([]string, bool) {
	out := make([]string, 0, len(v))
	for _, item := range v {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
