package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"

	echoapi "github.com/feeportal/backend/apps/api/echo"
	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/export"
	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/reminder"
)

var (
	errHelp = errors.New("help provided")

	createFile = func(name string) (io.WriteCloser, error) { return os.Create(name) } // mockable
)

type commandLine struct {
	conf        *core.Config
	db          *sql.DB
	invoiceSvc  *invoice.Service
	reminderSvc *reminder.Service
	mailSvc     core.EmailService
	out         io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS...]                - run a goose migration command (up, down, status, ...)")
	fmt.Println("  token -name NAME                         - print a staff token for the dashboard API")
	fmt.Println("  reminders [-days N] [-csv]               - generate fee reminders for invoices due in N days")
	fmt.Println("  export -kind csv|receipt [-out FILE]     - export paid invoices")
	fmt.Println("  export -kind csv|receipt -mail ADDRESS   - email the export as an attachment")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenName := tokenCmd.String("name", "", "The staff member's name.")

	remindersCmd := flag.NewFlagSet("reminders", flag.ContinueOnError)
	remindersDays := remindersCmd.Int("days", 0, "Days ahead of today (1-30). Defaults to the configured horizon.")
	remindersCSV := remindersCmd.Bool("csv", false, "Print the reminders as CSV instead of plain messages.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportKind := exportCmd.String("kind", "csv", "csv or receipt.")
	exportOut := exportCmd.String("out", "", "Output file. Defaults to stdout.")
	exportMail := exportCmd.String("mail", "", "Email the export to this address instead of writing it.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenName == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenName)
	case "reminders":
		if err := remindersCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.reminders(*remindersDays, *remindersCSV)
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportKind != "csv" && *exportKind != "receipt" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(*exportKind, *exportOut, *exportMail)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) token(name string) error {
	token, err := echoapi.GenerateToken(echoapi.StaffClaims(name, cli.conf), cli.conf)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.out, token)
	return err
}

func (cli *commandLine) reminders(days int, asCSV bool) error {
	reminders, err := cli.reminderSvc.Generate(context.Background(), reminder.Options{DaysAhead: days})
	if err != nil {
		return err
	}
	if asCSV {
		return export.WriteRemindersCSV(cli.out, reminders)
	}
	if len(reminders) == 0 {
		_, err = fmt.Fprintln(cli.out, "No reminders to send.")
		return err
	}
	_, err = fmt.Fprintln(cli.out, export.JoinMessages(reminders))
	return err
}

func (cli *commandLine) export(kind, out, mailTo string) (err error) {
	rows, err := cli.invoiceSvc.QueryPaid(context.Background())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		if kind == "receipt" {
			return errors.New(export.NoticeNoReceipt)
		}
		return errors.New(export.NoticeNoPaidInvoices)
	}

	now := invoice.NowFunc()
	var (
		buf         bytes.Buffer
		filename    string
		contentType string
	)
	if kind == "receipt" {
		filename, contentType = export.Filename(export.KindReceipt, export.ExtHTML, now), export.MIMETextHTML
		err = export.RenderReceipt(&buf, rows, cli.conf.Reminders.Currency, now)
	} else {
		filename, contentType = export.Filename(export.KindPaidInvoices, export.ExtCSV, now), export.MIMETextCSV
		err = export.WriteInvoicesCSV(&buf, rows)
	}
	if err != nil {
		return err
	}

	if mailTo != "" {
		return cli.mailExport(mailTo, filename, contentType, &buf, len(rows))
	}

	w := cli.out
	if out != "" {
		var f io.WriteCloser
		f, err = createFile(out)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	_, err = buf.WriteTo(w)
	return err
}

func (cli *commandLine) mailExport(to, filename, contentType string, content io.Reader, count int) error {
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("invalid -mail address %q: %w", to, err)
	}

	msg := &core.EmailMessage{
		To:      []mail.Address{*addr},
		Subject: "Paid invoices export",
		BodyStr: fmt.Sprintf("Attached: %s (%d paid invoices).", filename, count),
	}
	if err = msg.Attach(content, filename, contentType); err != nil {
		return fmt.Errorf("attaching %s: %w", filename, err)
	}
	cli.mailSvc.SendMessages(msg)
	cli.mailSvc.Wait()

	_, err = fmt.Fprintf(cli.out, "Sent %s to %s.\n", filename, addr.Address)
	return err
}
