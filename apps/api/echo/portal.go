package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/feeportal/backend/core/invoice"
	"github.com/feeportal/backend/core/portal"
)

const paymentSubmitted = "Payment confirmation submitted successfully! We will verify and update the status."

type portalApi struct {
	svc      *portal.Service
	validate *validator.Validate
}

// registerPortalAPI registers the parent endpoints; they are public.
func registerPortalAPI(g *echo.Group, svc *portal.Service, validate *validator.Validate) {
	api := portalApi{svc: svc, validate: validate}

	pg := g.Group("/portal")
	pg.GET("/students", api.searchStudents)
	pg.GET("/students/:id", api.studentInvoices)
	pg.GET("/pay/:token", api.lookupPayLink)
	pg.POST("/invoices/:id/payments", api.submitPayment)
}

// Handlers

func (api *portalApi) searchStudents(ctx echo.Context) error {
	var query portal.StudentQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to StudentQuery")
	}

	res, err := api.svc.SearchStudents(ctx.Request().Context(), query)
	if err != nil {
		return errors.Wrap(err, "searching students")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *portalApi) studentInvoices(ctx echo.Context) error {
	res, err := api.svc.StudentInvoices(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "loading student invoices")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *portalApi) lookupPayLink(ctx echo.Context) error {
	res, err := api.svc.LookupPayLink(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return errors.Wrap(err, "looking up pay link")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *portalApi) submitPayment(ctx echo.Context) error {
	var data portal.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	payment, err := api.svc.SubmitPayment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == invoice.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "submitting payment")
	}
	return ctx.JSON(http.StatusCreated, PaymentResponse{Success: paymentSubmitted, Payment: payment})
}

type PaymentResponse struct {
	Success string         `json:"success"`
	Payment portal.Payment `json:"payment"`
}
