package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-finance/core/finance"
)

type financeApi struct {
	board *finance.Board
}

func registerFinanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, board *finance.Board) {
	api := financeApi{board: board}

	fg := g.Group("/finance", jwt, adminMiddleware(RoleAdmin, RoleAdminAccountant))
	fg.GET("/dashboard", api.dashboard)
	fg.GET("/payments", api.payments)
	fg.GET("/students", api.students)
	fg.GET("/plans", api.plans)
	fg.POST("/refresh", api.refresh, adminMiddleware(RoleAdmin))
}

// Requests & Responses

type StudentOption struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"class_name,omitempty"`
}

func bindSelector(ctx echo.Context) finance.Selector {
	return finance.NewSelector(ctx.QueryParam("teacher"), ctx.QueryParam("student"))
}

// Handlers

func (api *financeApi) dashboard(ctx echo.Context) error {
	dash, err := api.board.Dashboard(bindSelector(ctx))
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *financeApi) payments(ctx echo.Context) error {
	payments, err := api.board.Reconcile(bindSelector(ctx))
	if err != nil {
		return errors.Wrap(err, "reconciling payments")
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *financeApi) students(ctx echo.Context) error {
	students, err := api.board.StudentOptions(bindSelector(ctx))
	if err != nil {
		return errors.Wrap(err, "querying student options")
	}
	options := make([]StudentOption, 0, len(students))
	for _, s := range students {
		options = append(options, StudentOption{ID: s.ID, Name: s.DisplayName(), ClassName: s.ClassName.String})
	}
	return ctx.JSON(http.StatusOK, options)
}

func (api *financeApi) plans(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.board.Catalog().Plans())
}

func (api *financeApi) refresh(ctx echo.Context) error {
	if err := api.board.Refresh(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "refreshing finance board")
	}
	return ctx.NoContent(http.StatusNoContent)
}
