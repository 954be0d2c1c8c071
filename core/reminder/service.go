package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/feeportal/backend/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrRemoteDisabled = errors.New("remote send-reminders function not configured")

	errDaysAhead = fmt.Sprintf("must be between %d and %d", MinDaysAhead, MaxDaysAhead)
)

type (
	Repository interface {
		// QueryDueInvoices returns the unpaid invoices due on or before targetDate (YYYY-MM-DD),
		// each with its student's parents.
		QueryDueInvoices(ctx context.Context, targetDate string) ([]DueInvoice, error)
		CreateSMSLog(ctx context.Context, log SMSLog) error
	}

	// RemoteClient triggers the hosted send-reminders function.
	RemoteClient interface {
		SendReminders(ctx context.Context) (RemoteResult, error)
	}

	Service struct {
		repo   Repository
		remote RemoteClient // optional
		conf   core.RemindersConfig
		logger core.Logger
	}
)

func NewService(repo Repository, remote RemoteClient, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		repo:   repo,
		remote: remote,
		conf:   conf.Reminders,
		logger: logger,
	}
}

// DaysAhead resolves the horizon of a batch, checking its bounds.
func (svc *Service) DaysAhead(opts Options) (int, error) {
	days := opts.DaysAhead
	if days == 0 {
		days = svc.conf.DefaultDaysAhead
	}
	if days < MinDaysAhead || days > MaxDaysAhead {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "days_ahead", Error: errDaysAhead})
	}
	return days, nil
}

// Generate builds the reminders of the unpaid invoices due within the horizon: one per
// (invoice, reachable parent) pair, in query order. Each reminder is logged to sms_logs before
// the batch is returned; the first failed log write aborts the batch (earlier logs are kept).
func (svc *Service) Generate(ctx context.Context, opts Options) ([]Reminder, error) {
	days, err := svc.DaysAhead(opts)
	if err != nil {
		return nil, err
	}
	targetDate := core.DaysFrom(NowFunc(), days)

	dues, err := svc.repo.QueryDueInvoices(ctx, targetDate)
	if err != nil {
		return nil, errors.Wrap(err, "querying due invoices")
	}

	reminders := make([]Reminder, 0, len(dues))
	for _, due := range dues {
		for _, parent := range due.Parents {
			if !Reachable(parent) {
				continue
			}

			msg := RenderMessage(MessageData{
				ParentName:  parent.Name,
				StudentName: due.StudentName,
				Currency:    svc.conf.Currency,
				Amount:      due.Amount,
				DueDate:     due.DueDate,
				PayLink:     PayLink(svc.conf.PayLinkBaseURL, due.InvoiceID),
			})
			log := SMSLog{
				ID:          uuid.New().String(),
				TargetPhone: parent.Phone,
				Message:     msg,
				CreatedAt:   NowFunc().UTC(),
			}
			if err = svc.repo.CreateSMSLog(ctx, log); err != nil {
				return nil, errors.Wrapf(err, "logging reminder of invoice %s", due.InvoiceID)
			}

			reminders = append(reminders, Reminder{
				ParentName:  parent.Name,
				Phone:       parent.Phone,
				StudentName: due.StudentName,
				Amount:      due.Amount,
				DueDate:     due.DueDate,
				Message:     msg,
				InvoiceID:   due.InvoiceID,
				ChatLink:    ChatLink(svc.conf.ChatDomain, parent.Phone, msg),
			})
		}
	}
	return reminders, nil
}

// SendRemote asks the hosted function to send the reminders itself.
// A failed call is reported as an unsuccessful RemoteResult, not as an error.
func (svc *Service) SendRemote(ctx context.Context) (RemoteResult, error) {
	if svc.remote == nil {
		return RemoteResult{}, ErrRemoteDisabled
	}
	res, err := svc.remote.SendReminders(ctx)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending reminders remotely: %v", err), err)
		msg := err.Error()
		if res.Error != "" {
			msg = res.Error
		}
		return RemoteResult{Success: false, Error: msg}, nil
	}
	return res, nil
}

// RunScheduled generates the default batch; used by the scheduler.
func (svc *Service) RunScheduled(ctx context.Context) {
	reminders, err := svc.Generate(ctx, Options{})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("generating scheduled reminders: %v", err), err)
		return
	}
	svc.logger.Info(fmt.Sprintf("scheduled reminders generated: %d", len(reminders)))
}
