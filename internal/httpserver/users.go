package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/havirkesht/backend/internal/logging"
	"github.com/havirkesht/backend/internal/service"
	"github.com/havirkesht/backend/internal/transport"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func (h *UsersHTTP) CreateAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_create")

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_user_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	_, err := h.Svc.Create(ctx, service.UserInput{
		Username:    req.Username,
		Password:    req.Password,
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		RoleID:      req.RoleID,
		Disabled:    req.Disabled,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, "User created successfully")
}

func (h *UsersHTTP) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	u, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.NewUserOut(u))
}

func (h *UsersHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_update")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_user_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.Update(ctx, id, service.UserInput{
		Username:    req.Username,
		Password:    req.Password,
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		RoleID:      req.RoleID,
		Disabled:    req.Disabled,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.NewUserOut(u))
}

func (h *UsersHTTP) List(c echo.Context) error {
	p, err := listParams(c)
	if err != nil {
		return err
	}

	page, err := h.Svc.List(c.Request().Context(), p)
	if err != nil {
		return httpError(err)
	}

	items := make([]transport.UserOut, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, transport.NewUserOut(&page.Items[i]))
	}
	return c.JSON(http.StatusOK, transport.ListOut[transport.UserOut]{
		Total: page.Total, Size: page.Size, Pages: page.Pages, Items: items,
	})
}

func pathID(c echo.Context) (uint, error) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}
	return uint(n), nil
}

func listParams(c echo.Context) (service.ListParams, error) {
	p := service.ListParams{
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Search:    c.QueryParam("search"),
	}
	var err error
	if p.Page, err = intQuery(c, "page"); err != nil {
		return p, err
	}
	if p.Size, err = intQuery(c, "size"); err != nil {
		return p, err
	}
	return p, nil
}

// intQuery returns 0 when the parameter is absent.
func intQuery(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return n, nil
}
