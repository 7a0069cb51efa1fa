package workorder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/abduss/fieldservice/internal/thumbnail"
)

// Conventional metadata keys read by search and notifications.
const (
	FieldCustomer        = "customer"
	FieldSiteAddress     = "site_address"
	FieldPONumber        = "po_number"
	FieldSiteContact     = "site_contact"
	FieldWorkOrderNumber = "work_order_number"
	FieldJobStatus       = "job_status"
	FieldWeek            = "week"
)

// Missing is reported for conventional fields absent from a record.
const Missing = "N/A"

// the mobile client writes camelCase keys
var fieldAliases = map[string][]string{
	FieldCustomer:        {"customer"},
	FieldSiteAddress:     {"site_address", "siteAddress"},
	FieldPONumber:        {"po_number", "purchaseOrderNumber"},
	FieldSiteContact:     {"site_contact", "siteContact"},
	FieldWorkOrderNumber: {"work_order_number", "workOrderNumber"},
	FieldJobStatus:       {"job_status", "jobStatus"},
	FieldWeek:            {"week", "weekNumber"},
}

// Record is a work order folder with its metadata document as stored.
type Record struct {
	Folder   string          `json:"folder"`
	Metadata json.RawMessage `json:"metadata"`
}

// Fields holds the conventional metadata values present in a record,
// normalised to strings.
type Fields map[string]string

// Fields parses the typed view of the metadata document.
func (r Record) Fields() (Fields, error) {
	return parseFields(r.Metadata)
}

// Get returns a field value and whether it was present.
func (f Fields) Get(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

// Or returns the field value or fallback when absent.
func (f Fields) Or(key, fallback string) string {
	if v, ok := f[key]; ok {
		return v
	}
	return fallback
}

func parseFields(raw []byte) (Fields, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: corrupt metadata: %v", ErrInvalidInput, err)
	}
	fields := make(Fields, len(fieldAliases))
	for key, aliases := range fieldAliases {
		for _, alias := range aliases {
			if v, ok := scalar(doc[alias]); ok {
				fields[key] = v
				break
			}
		}
	}
	return fields, nil
}

// scalar renders strings, numbers and booleans as text; null, objects and
// arrays count as absent.
func scalar(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[', 'n':
		return "", false
	default:
		return string(trimmed), true
	}
}

// Match is a search hit with the four searchable fields.
type Match struct {
	Folder      string `json:"folder"`
	Customer    string `json:"customer"`
	SiteAddress string `json:"site_address"`
	PONumber    string `json:"po_number"`
	SiteContact string `json:"site_contact"`
}

// Upload is one incoming media file.
type Upload struct {
	Filename string
	Body     io.Reader
}

// UploadResult lists stored files and the thumbnail outcome of each video.
// Thumbnails are never part of Files.
type UploadResult struct {
	Files      []string           `json:"files"`
	Thumbnails []thumbnail.Result `json:"thumbnails,omitempty"`
}

// GalleryItem is one entry of the album view. Videos carry their thumbnail.
type GalleryItem struct {
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

func normalizeWeek(v string) string {
	return strings.TrimSpace(v)
}
