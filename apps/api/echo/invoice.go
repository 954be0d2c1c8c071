package echoapi

import (
	"bytes"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/export"
	"github.com/feeportal/backend/core/invoice"
)

var (
	errInvNotFoundInCtx = errors.New("invoice object not found in echo.Context")
	contextObjectKey    = "object"
)

type invoiceApi struct {
	svc      *invoice.Service
	validate *validator.Validate
	currency string
}

func registerInvoiceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *invoice.Service, validate *validator.Validate, conf *core.Config) {
	api := invoiceApi{
		svc:      svc,
		validate: validate,
		currency: conf.Reminders.Currency,
	}

	ig := g.Group("/invoices", jwt, staffMiddleware)
	ig.GET("", api.query)
	ig.POST("", api.create)
	ig.DELETE("", api.destroyMultiple)
	ig.GET("/export/csv", api.exportCSV)
	ig.GET("/export/receipt", api.exportReceipt)

	// detail endpoints
	dg := ig.Group("/:id", invoiceObjectMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/pay", api.markAsPaid)
}

// Handlers

func (api *invoiceApi) query(ctx echo.Context) error {
	filter := new(invoice.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err := api.validate.Struct(filter); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	invoices, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying invoices")
	}
	return ctx.JSON(http.StatusOK, invoices)
}

func (api *invoiceApi) create(ctx echo.Context) error {
	var data invoice.NewInvoice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInvoice")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inv, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating invoice")
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *invoiceApi) retrieve(ctx echo.Context) error {
	inv, ok := ctx.Get(contextObjectKey).(invoice.Invoice)
	if !ok {
		return errors.Wrap(errInvNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *invoiceApi) update(ctx echo.Context) error {
	inv, ok := ctx.Get(contextObjectKey).(invoice.Invoice)
	if !ok {
		return errors.Wrap(errInvNotFoundInCtx, "retrieving object from context")
	}

	var data invoice.UpdateInvoice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInvoice")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inv, err := api.svc.Update(ctx.Request().Context(), inv.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating invoice")
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *invoiceApi) markAsPaid(ctx echo.Context) error {
	inv, ok := ctx.Get(contextObjectKey).(invoice.Invoice)
	if !ok {
		return errors.Wrap(errInvNotFoundInCtx, "retrieving object from context")
	}

	inv, err := api.svc.MarkAsPaid(ctx.Request().Context(), inv.ID)
	if err != nil {
		return errors.Wrap(err, "marking invoice as paid")
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *invoiceApi) destroy(ctx echo.Context) error {
	inv, ok := ctx.Get(contextObjectKey).(invoice.Invoice)
	if !ok {
		return errors.Wrap(errInvNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), inv.ID); err != nil {
		return errors.Wrap(err, "deleting invoice")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *invoiceApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting invoices")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *invoiceApi) exportCSV(ctx echo.Context) error {
	rows, err := api.svc.QueryPaid(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying paid invoices")
	}
	if len(rows) == 0 {
		return core.NewNoticeError(export.NoticeNoPaidInvoices)
	}

	var buf bytes.Buffer
	if err = export.WriteInvoicesCSV(&buf, rows); err != nil {
		return err
	}
	filename := export.Filename(export.KindPaidInvoices, export.ExtCSV, invoice.NowFunc())
	return attachment(ctx, filename, export.MIMETextCSV, buf.Bytes())
}

func (api *invoiceApi) exportReceipt(ctx echo.Context) error {
	rows, err := api.svc.QueryPaid(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying paid invoices")
	}
	if len(rows) == 0 {
		return core.NewNoticeError(export.NoticeNoReceipt)
	}

	now := invoice.NowFunc()
	var buf bytes.Buffer
	if err = export.RenderReceipt(&buf, rows, api.currency, now); err != nil {
		return err
	}
	filename := export.Filename(export.KindReceipt, export.ExtHTML, now)
	return attachment(ctx, filename, export.MIMETextHTML, buf.Bytes())
}

func invoiceObjectMiddleware(svc *invoice.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			inv, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == invoice.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding invoice by ID")
			}
			ctx.Set(contextObjectKey, inv)
			return next(ctx)
		}
	}
}

type DestroyMultipleRequest struct {
	IDs []string `query:"id"`
}
