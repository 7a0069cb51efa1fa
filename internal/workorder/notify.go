package workorder

import (
	"context"
	"fmt"
	"net/url"

	"github.com/abduss/fieldservice/internal/metrics"
	"github.com/abduss/fieldservice/internal/notify"
	"go.uber.org/zap"
)

func (s *Service) dispatchNotification(ctx context.Context, folder string) {
	if s.notifier == nil {
		return
	}
	msg := s.uploadMessage(ctx, folder)
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		err := s.notifier.Notify(ctx, msg)
		status := notify.Status(s.notifier, err)
		metrics.ObserveNotification(status)

		log := s.log.With(zap.String("folder", folder), zap.String("status", status))
		if err != nil {
			log.Warn("upload notification failed", zap.Error(err))
			return
		}
		log.Info("upload notification dispatched")
	}()
}

func (s *Service) uploadMessage(ctx context.Context, folder string) notify.Message {
	number := Missing
	info := "No workorder data found."

	if rec, err := s.Read(ctx, folder); err == nil {
		if fields, err := rec.Fields(); err == nil {
			number = fields.Or(FieldWorkOrderNumber, Missing)
			info = fmt.Sprintf("Customer: %s\nSite Address: %s\nStatus: %s",
				fields.Or(FieldCustomer, Missing),
				fields.Or(FieldSiteAddress, Missing),
				fields.Or(FieldJobStatus, Missing),
			)
		}
	}

	albumURL := fmt.Sprintf("%s/album/%s/", s.baseURL, url.PathEscape(folder))
	return notify.Message{
		Subject: fmt.Sprintf("%s - %s", s.now().Format("01/02/2006"), number),
		Body:    fmt.Sprintf("%s\n\nFiles available at: %s", info, albumURL),
	}
}
