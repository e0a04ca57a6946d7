// Package catalog holds the data model shared by the per-catalog
// scrapers and the documents service: product identities, lot records,
// download results and the error taxonomy.
package catalog

import (
	"errors"
	"time"
)

type DocType string

const (
	CertificateOfAnalysis DocType = "COA"
	SafetyDataSheet       DocType = "SDS"
	CertificateOfOrigin   DocType = "COO"
)

// AllDocTypes is the order DownloadAll processes document types in.
var AllDocTypes = []DocType{
	CertificateOfAnalysis,
	SafetyDataSheet,
	CertificateOfOrigin,
}

var (
	// ErrNotFound means the code resolved to no product.
	ErrNotFound = errors.New("product not found")
	// ErrLinkMissing means the product exists but exposes no candidate
	// URL for the requested document type.
	ErrLinkMissing = errors.New("document link missing")
	// ErrTransport covers network failures, timeouts and non-success
	// status codes.
	ErrTransport = errors.New("transport error")
	// ErrFormat means the response was an HTML error page where a
	// document was expected. The upstream services answer 200 with an
	// HTML body on broken links, so content-type checks are mandatory.
	ErrFormat = errors.New("response is not a document")
	// ErrExtractionEmpty means no confident origin country was found in
	// the document text.
	ErrExtractionEmpty = errors.New("no origin country found")
)

// ProductIdentity is the confirmed identity of a resolved catalogue
// code. It is built fresh by each resolution call and never mutated
// afterwards; callers thread it through subsequent acquisition calls.
type ProductIdentity struct {
	// Key is the compacted catalogue code the identity was resolved for.
	Key         string
	DisplayName string
	DetailURL   string
	// Documents maps a document type to its ordered candidate URLs.
	// The first candidate that yields a non-HTML response wins.
	Documents map[DocType][]string
	// Lots carries per-lot metadata for catalogs that expose it
	// (the USP store); empty elsewhere.
	Lots []LotRecord
	// Country is the product-level origin field for catalogs that
	// expose it structurally; empty elsewhere.
	Country string
}

// LotRecord is one production lot of a reference standard, parsed from
// the USP store's delimited lot field.
type LotRecord struct {
	Number         string
	Current        bool
	CertValid      bool
	ValidUse       time.Time
	Country        string
	MaterialOrigin string
	AuxCodes       []string
}

// Result reports the outcome of one (code, document type) request.
// Failures are carried here rather than returned as errors so that one
// failed document never aborts its siblings.
type Result struct {
	Code    string
	Doc     DocType
	Success bool
	Path    string
	Error   string
}

func Failure(code string, doc DocType, err error) Result {
	return Result{Code: code, Doc: doc, Error: err.Error()}
}

func Success(code string, doc DocType, path string) Result {
	return Result{Code: code, Doc: doc, Success: true, Path: path}
}
