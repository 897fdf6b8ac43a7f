package alert

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/scbrown/newman/internal/model"
	"github.com/scbrown/newman/internal/store"
)

// StoreSink records reports as alerts in a store: the local SQLite journal
// or a remote collector.
type StoreSink struct {
	Store store.Store
	Host  string
	Now   func() time.Time
}

// NewStoreSink creates a StoreSink tagged with the local host name.
func NewStoreSink(s store.Store) *StoreSink {
	host, _ := os.Hostname()
	return &StoreSink{Store: s, Host: host, Now: time.Now}
}

func (s *StoreSink) Report(ctx context.Context, err error, sev Severity) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	d, _ := DetailsFrom(ctx)
	a := model.Alert{
		ID:           uuid.NewString(),
		Timestamp:    now().UTC(),
		Severity:     sev.String(),
		Message:      err.Error(),
		ErrorType:    d.ErrorType,
		Namespace:    d.Namespace,
		Operation:    d.Operation,
		InvocationID: d.InvocationID,
		Host:         s.Host,
	}
	return s.Store.RecordAlert(ctx, a)
}
