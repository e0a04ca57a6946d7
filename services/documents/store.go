package documents

import (
	"fmt"
	"os"
	"path/filepath"

	"refdocs-backend/lib/catalog"
	"refdocs-backend/lib/fsutil"

	"github.com/go-resty/resty/v2"
)

// unknownCountry is written when origin extraction finds nothing, so
// the run still leaves an inspectable artifact.
const unknownCountry = "Unknown Country"

// store persists fetched documents under one source's subdirectory.
type store struct {
	dir string
}

func newStore(baseDir, source string) (store, error) {
	dir := filepath.Join(baseDir, source)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return store{}, err
	}
	return store{dir: dir}, nil
}

// saveDocument writes the response body using the upstream filename
// when one can be derived, else a code/doc-type based default.
func (s store) saveDocument(res *resty.Response, code string, doc catalog.DocType) (string, error) {
	filename := fsutil.FilenameFromResponse(res)
	if filename == "" {
		ext := fsutil.ExtensionForContentType(res.Header().Get("Content-Type"))
		filename = fmt.Sprintf("%s_%s%s", code, doc, ext)
	}
	filename = fsutil.SafeFilename(filename, fmt.Sprintf("%s_%s", code, doc))

	path := fsutil.UniquePath(filepath.Join(s.dir, filename))
	if err := os.WriteFile(path, res.Body(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// saveCountry writes the origin-country artifact `<Country>.txt`. When
// another product already claimed that name the file is suffixed with
// the catalogue code instead of being overwritten.
func (s store) saveCountry(country, code string) (string, error) {
	if country == "" {
		country = unknownCountry
	}

	name := fsutil.SafeFilename(country, "Unknown_Country")
	path := filepath.Join(s.dir, name+".txt")
	if _, err := os.Stat(path); err == nil {
		codePart := fsutil.SafeFilename(code, "code")
		path = filepath.Join(s.dir, fmt.Sprintf("%s_%s.txt", name, codePart))
	}

	if err := os.WriteFile(path, []byte(country+"\n"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
