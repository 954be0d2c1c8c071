package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/export"
	"github.com/feeportal/backend/core/reminder"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
	formatText = "text"
)

var errUnknownFormat = fmt.Sprintf("must be one of: %s, %s, %s", formatJSON, formatCSV, formatText)

type reminderApi struct {
	svc *reminder.Service
}

func registerReminderAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *reminder.Service) {
	api := reminderApi{svc: svc}

	rg := g.Group("/reminders", jwt, staffMiddleware)
	rg.POST("", api.generate)
	rg.POST("/send", api.sendRemote)
}

type GenerateRemindersRequest struct {
	reminder.Options
	Format string `query:"format"`
}

// Handlers

func (api *reminderApi) generate(ctx echo.Context) error {
	var data GenerateRemindersRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateRemindersRequest")
	}
	format := core.CleanString(data.Format, true /* lower */)
	switch format {
	case "":
		format = formatJSON
	case formatJSON, formatCSV, formatText:
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "format", Error: errUnknownFormat})
	}

	reminders, err := api.svc.Generate(ctx.Request().Context(), data.Options)
	if err != nil {
		return errors.Wrap(err, "generating reminders")
	}

	switch format {
	case formatCSV:
		var buf bytes.Buffer
		if err = export.WriteRemindersCSV(&buf, reminders); err != nil {
			return err
		}
		filename := export.Filename(export.KindReminders, export.ExtCSV, reminder.NowFunc())
		return attachment(ctx, filename, export.MIMETextCSV, buf.Bytes())
	case formatText:
		return ctx.String(http.StatusOK, export.JoinMessages(reminders))
	default:
		return ctx.JSON(http.StatusOK, reminders)
	}
}

func (api *reminderApi) sendRemote(ctx echo.Context) error {
	res, err := api.svc.SendRemote(ctx.Request().Context())
	if err != nil {
		if errors.Cause(err) == reminder.ErrRemoteDisabled {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return errors.Wrap(err, "sending reminders")
	}
	return ctx.JSON(http.StatusOK, res)
}
