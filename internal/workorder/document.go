package workorder

import (
	"bytes"
	"context"
	"fmt"

	"github.com/abduss/fieldservice/internal/media"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// DocumentInfo summarises the primary document of a work order.
type DocumentInfo struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	Pages     int    `json:"pages"`
	Readable  bool   `json:"readable"`
}

// Document inspects the primary document. A file that cannot be parsed as a
// PDF is still reported, with Readable false.
func (s *Service) Document(ctx context.Context, folder string) (DocumentInfo, error) {
	name := media.DocumentName(folder)
	data, err := s.store.ReadFile(folder, name)
	if err != nil {
		return DocumentInfo{}, translateMediaError(err)
	}

	info := DocumentInfo{Name: name, URL: MediaURL(folder, name), SizeBytes: int64(len(data))}
	pages, err := countPages(data)
	if err != nil {
		s.log.Debug("primary document unreadable", zap.String("folder", folder), zap.Error(err))
		return info, nil
	}
	info.Pages = pages
	info.Readable = true
	return info, nil
}

func countPages(data []byte) (pages int, err error) {
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	return doc.NumPage(), nil
}
