package httpserver

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/havirkesht/backend/internal/service"
	"github.com/havirkesht/backend/internal/transport"
)

type ProvincesHTTP struct {
	Svc *service.ProvinceService
}

func (h *ProvincesHTTP) Create(c echo.Context) error {
	var req transport.ProvinceIn
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.Create(c.Request().Context(), req.Province)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, transport.ProvinceCreatedOut{Province: p.Name})
}

func (h *ProvincesHTTP) List(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	page, err := h.Svc.List(c.Request().Context(), params)
	if err != nil {
		return httpError(err)
	}

	items := make([]transport.ProvinceOut, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, transport.ProvinceOut{ID: p.ID, Province: p.Name, CreatedAt: p.CreatedAt})
	}
	return c.JSON(http.StatusOK, transport.ListOut[transport.ProvinceOut]{
		Total: page.Total, Size: page.Size, Pages: page.Pages, Items: items,
	})
}

func (h *ProvincesHTTP) Delete(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("province"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid province")
	}
	if err := h.Svc.Delete(c.Request().Context(), name); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.MessageOut{Message: "Province deleted successfully"})
}
