package transport

import (
	"net/http"
	"testing"

	"storefront/internal/domain"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func postReview(t *testing.T, api *testAPI, caller domain.Caller, productID uuid.UUID, grade int) int {
	t.Helper()
	return api.do(t, "POST", "/reviews/", map[string]interface{}{
		"product_id": productID.String(),
		"grade":      grade,
		"comment":    "works as described",
	}, &caller).Code
}

func productRating(t *testing.T, api *testAPI, slug string) string {
	t.Helper()
	var product domain.Product
	w := api.do(t, "GET", "/products/detail/"+slug, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to load product %s: %d", slug, w.Code)
	}
	decodeBody(t, w, &product)
	return product.Rating.String()
}

func TestReviewsUpdateRating(t *testing.T) {
	c := qt.New(t)
	api := newTestAPI(t)

	category := api.seedCategory(t, "Books", nil)
	product := api.seedProduct(t, newSupplier(), "Atlas", category.ID)

	c.Assert(postReview(t, api, customerCaller, product.ID, 4), qt.Equals, http.StatusCreated)
	c.Assert(productRating(t, api, "atlas"), qt.Equals, "4")

	c.Assert(postReview(t, api, customerCaller, product.ID, 5), qt.Equals, http.StatusCreated)
	c.Assert(productRating(t, api, "atlas"), qt.Equals, "4.5")

	c.Assert(postReview(t, api, adminCaller, product.ID, 3), qt.Equals, http.StatusCreated)
	c.Assert(productRating(t, api, "atlas"), qt.Equals, "4")

	var reviews []domain.Review
	w := api.do(t, "GET", "/reviews/atlas", nil, nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	decodeBody(t, w, &reviews)
	c.Assert(reviews, qt.HasLen, 3)
}

func TestProperty_OutOfRangeGradesRejected(t *testing.T) {
	api := newTestAPI(t)
	category := api.seedCategory(t, "Games", nil)
	product := api.seedProduct(t, newSupplier(), "Chess", category.ID)

	properties := gopter.NewProperties(nil)

	properties.Property("grades outside 1..5 answer 400", prop.ForAll(
		func(grade int) bool {
			return postReview(t, api, customerCaller, product.ID, grade) == http.StatusBadRequest
		},
		gen.OneGenOf(gen.IntRange(-50, 0), gen.IntRange(6, 50)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestReviewRejections(t *testing.T) {
	c := qt.New(t)
	api := newTestAPI(t)
	supplier := newSupplier()

	category := api.seedCategory(t, "Pets", nil)
	product := api.seedProduct(t, supplier, "Leash", category.ID)

	c.Assert(postReview(t, api, supplier, product.ID, 5), qt.Equals, http.StatusForbidden)

	w := api.do(t, "POST", "/reviews/", map[string]interface{}{"product_id": uuid.NewString(), "grade": 2}, &customerCaller)
	c.Assert(w.Code, qt.Equals, http.StatusNotFound)
	c.Assert(errorDetail(t, w), qt.Equals, "There is no product found")

	w = api.do(t, "GET", "/reviews/collar", nil, nil)
	c.Assert(w.Code, qt.Equals, http.StatusNotFound)
	c.Assert(errorDetail(t, w), qt.Equals, "There is no product found")

	w = api.do(t, "GET", "/reviews/leash", nil, nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(w.Body.String(), qt.JSONEquals, []interface{}{})
}

func TestDeleteReview(t *testing.T) {
	c := qt.New(t)
	api := newTestAPI(t)

	category := api.seedCategory(t, "Music", nil)
	product := api.seedProduct(t, newSupplier(), "Drum", category.ID)
	c.Assert(postReview(t, api, customerCaller, product.ID, 2), qt.Equals, http.StatusCreated)

	var reviews []domain.Review
	decodeBody(t, api.do(t, "GET", "/reviews/", nil, nil), &reviews)
	c.Assert(reviews, qt.HasLen, 1)
	path := "/reviews/" + reviews[0].ID.String()

	c.Assert(api.do(t, "DELETE", path, nil, &customerCaller).Code, qt.Equals, http.StatusForbidden)
	c.Assert(api.do(t, "DELETE", "/reviews/17", nil, &adminCaller).Code, qt.Equals, http.StatusBadRequest)

	w := api.do(t, "DELETE", "/reviews/"+uuid.NewString(), nil, &adminCaller)
	c.Assert(w.Code, qt.Equals, http.StatusNotFound)
	c.Assert(errorDetail(t, w), qt.Equals, "There is no review found")

	w = api.do(t, "DELETE", path, nil, &adminCaller)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(w.Body.String(), qt.JSONEquals, map[string]interface{}{
		"status_code": 200,
		"transaction": "Review delete is successful",
	})

	decodeBody(t, api.do(t, "GET", "/reviews/", nil, nil), &reviews)
	c.Assert(reviews, qt.HasLen, 0)

	// the rating keeps the deleted grade until the next review
	c.Assert(productRating(t, api, "drum"), qt.Equals, "2")
}
