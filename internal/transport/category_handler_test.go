package transport

import (
	"net/http"
	"testing"

	"storefront/internal/domain"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
)

func TestCategoryRoutes(t *testing.T) {
	c := qt.New(t)
	api := newTestAPI(t)

	w := api.do(t, "POST", "/categories/", map[string]interface{}{"name": "Outdoor"}, &adminCaller)
	c.Assert(w.Code, qt.Equals, http.StatusCreated)

	w = api.do(t, "POST", "/categories/", map[string]interface{}{"name": "Tents"}, &customerCaller)
	c.Assert(w.Code, qt.Equals, http.StatusForbidden)

	w = api.do(t, "POST", "/categories/", map[string]interface{}{"name": "Tents", "parent_id": uuid.NewString()}, &adminCaller)
	c.Assert(w.Code, qt.Equals, http.StatusNotFound)
	c.Assert(errorDetail(t, w), qt.Equals, "There is no parent category found")

	var categories []domain.Category
	decodeBody(t, api.do(t, "GET", "/categories/", nil, nil), &categories)
	c.Assert(categories, qt.HasLen, 1)
	outdoor := categories[0]
	c.Assert(outdoor.Slug, qt.Equals, "outdoor")

	w = api.do(t, "POST", "/categories/", map[string]interface{}{"name": "Tents", "parent_id": outdoor.ID.String()}, &adminCaller)
	c.Assert(w.Code, qt.Equals, http.StatusCreated)

	w = api.do(t, "POST", "/categories/", map[string]interface{}{"name": "Outdoor"}, &adminCaller)
	c.Assert(w.Code, qt.Equals, http.StatusConflict)

	var descendants DescendantsResponse
	w = api.do(t, "GET", "/categories/outdoor/descendants", nil, nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	decodeBody(t, w, &descendants)
	c.Assert(descendants.CategoryIDs, qt.HasLen, 2)
	c.Assert(descendants.CategoryIDs[0], qt.Equals, outdoor.ID)

	tents := descendants.CategoryIDs[1]
	w = api.do(t, "PUT", "/categories/outdoor", map[string]interface{}{"name": "Outdoor", "parent_id": tents.String()}, &adminCaller)
	c.Assert(w.Code, qt.Equals, http.StatusConflict)

	w = api.do(t, "PUT", "/categories/tents", map[string]interface{}{"name": "Camping"}, &adminCaller)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(w.Body.String(), qt.JSONEquals, map[string]interface{}{
		"status_code": 200,
		"transaction": "Category update is successful",
	})

	w = api.do(t, "GET", "/categories/outdoor/descendants", nil, nil)
	decodeBody(t, w, &descendants)
	c.Assert(descendants.CategoryIDs, qt.DeepEquals, []uuid.UUID{outdoor.ID})

	w = api.do(t, "GET", "/categories/nowhere/descendants", nil, nil)
	c.Assert(w.Code, qt.Equals, http.StatusNotFound)
}
