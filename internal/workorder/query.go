package workorder

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

var searchableFields = []string{FieldCustomer, FieldSiteAddress, FieldPONumber, FieldSiteContact}

// SearchByText matches query case-insensitively against customer, site
// address, PO number and site contact. Folders without readable metadata are
// skipped.
func (s *Service) SearchByText(ctx context.Context, query string) ([]Match, error) {
	needle := strings.ToLower(query)
	matches := []Match{}

	err := s.scan(ctx, func(folder string, fields Fields) {
		hit := false
		for _, key := range searchableFields {
			if v, ok := fields.Get(key); ok && strings.Contains(strings.ToLower(v), needle) {
				hit = true
				break
			}
		}
		// an empty query matches every record, present fields or not
		if !hit && needle != "" {
			return
		}
		matches = append(matches, Match{
			Folder:      folder,
			Customer:    fields.Or(FieldCustomer, Missing),
			SiteAddress: fields.Or(FieldSiteAddress, Missing),
			PONumber:    fields.Or(FieldPONumber, Missing),
			SiteContact: fields.Or(FieldSiteContact, Missing),
		})
	})
	return matches, err
}

// SearchByWeek returns the folders whose week tag equals week.
func (s *Service) SearchByWeek(ctx context.Context, week string) ([]string, error) {
	want := normalizeWeek(week)
	folders := []string{}

	err := s.scan(ctx, func(folder string, fields Fields) {
		if v, ok := fields.Get(FieldWeek); ok && normalizeWeek(v) == want {
			folders = append(folders, folder)
		}
	})
	return folders, err
}

func (s *Service) scan(ctx context.Context, visit func(folder string, fields Fields)) error {
	folders, err := s.store.ListFolders()
	if err != nil {
		return err
	}
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := s.Read(ctx, folder)
		if err != nil {
			s.log.Debug("search skipped folder", zap.String("folder", folder), zap.Error(err))
			continue
		}
		fields, err := rec.Fields()
		if err != nil {
			s.log.Debug("search skipped folder", zap.String("folder", folder), zap.Error(err))
			continue
		}
		visit(folder, fields)
	}
	return nil
}
