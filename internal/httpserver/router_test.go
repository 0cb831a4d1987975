package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dutyfree/internal/auth"
	"dutyfree/internal/domain"
	"dutyfree/internal/events"
	cartsvc "dutyfree/internal/service/cart"
	"dutyfree/internal/service/collection"
	contentsvc "dutyfree/internal/service/content"
	ordersvc "dutyfree/internal/service/order"
	productsvc "dutyfree/internal/service/product"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guestUUID = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

type stubProductService struct {
	snapshotErr error
}

func (s *stubProductService) List(context.Context, string) ([]domain.Product, error) {
	return []domain.Product{{ID: "p1", Name: "Cognac"}}, nil
}
func (s *stubProductService) ListAll(context.Context) ([]domain.Product, error) {
	return []domain.Product{{ID: "p1", Name: "Cognac"}}, nil
}
func (s *stubProductService) Get(_ context.Context, id string) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}
func (s *stubProductService) Snapshot(_ context.Context, id string) (domain.ProductSnapshot, error) {
	return domain.ProductSnapshot{ID: id, Name: "Cognac"}, s.snapshotErr
}
func (s *stubProductService) Search(context.Context, string) ([]domain.Product, error) {
	return []domain.Product{}, nil
}
func (s *stubProductService) Featured(context.Context) ([]domain.CollectionEntry, error) {
	return []domain.CollectionEntry{}, nil
}
func (s *stubProductService) DutyFree(context.Context) ([]domain.CollectionEntry, error) {
	return []domain.CollectionEntry{}, nil
}
func (s *stubProductService) Create(context.Context, productsvc.Input) (*domain.Product, error) {
	return &domain.Product{ID: "new"}, nil
}
func (s *stubProductService) Update(_ context.Context, id string, _ productsvc.Input) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}
func (s *stubProductService) Delete(context.Context, string) error { return nil }
func (s *stubProductService) AddImage(_ context.Context, productID, imageURL string, primary bool) (*domain.ProductImage, error) {
	return &domain.ProductImage{ProductID: productID, ImageURL: imageURL, IsPrimary: primary}, nil
}
func (s *stubProductService) DeleteImage(context.Context, string) error { return nil }

type stubCategoryService struct{}

func (stubCategoryService) List(context.Context) ([]domain.Category, error) {
	return []domain.Category{{Name: "Spirits", Slug: "spirits", ProductCount: 1}}, nil
}
func (stubCategoryService) Resolve(_ context.Context, slug string) (domain.Category, error) {
	return domain.Category{Name: domain.TitleFromSlug(slug), Slug: slug}, nil
}

type stubStore struct {
	lines     []domain.CartLine
	lastQty   int
	updateErr error
}

func (s *stubStore) List(context.Context) ([]domain.CartLine, error) { return s.lines, nil }
func (s *stubStore) Add(_ context.Context, p domain.ProductSnapshot, qty int) error {
	s.lastQty = qty
	s.lines = append(s.lines, domain.CartLine{ID: domain.GuestLineID(p.ID), Quantity: qty, Product: p})
	return nil
}
func (s *stubStore) UpdateQuantity(_ context.Context, _ string, qty int) error {
	s.lastQty = qty
	return s.updateErr
}
func (s *stubStore) Remove(context.Context, string) error { return nil }
func (s *stubStore) Clear(context.Context) error          { return nil }
func (s *stubStore) Count(context.Context) (int, error)   { return domain.CountItems(s.lines), nil }

type stubCartService struct {
	store        *stubStore
	lastIdentity domain.Identity
	lastGuestID  string
}

func (s *stubCartService) For(id domain.Identity, guestID string) cartsvc.Store {
	s.lastIdentity, s.lastGuestID = id, guestID
	return s.store
}

type stubOrderService struct {
	lastRaw     string
	lastGuestID string
	lastInput   ordersvc.CheckoutInput
}

func (s *stubOrderService) Place(_ context.Context, _ domain.Identity, guestID string, in ordersvc.CheckoutInput) (*domain.Order, error) {
	s.lastGuestID, s.lastInput = guestID, in
	return &domain.Order{ID: "o1", Status: domain.OrderPending}, nil
}
func (s *stubOrderService) Track(context.Context, string, string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}
func (s *stubOrderService) ListMine(context.Context, domain.Identity) ([]domain.Order, error) {
	return []domain.Order{}, nil
}
func (s *stubOrderService) Cancel(context.Context, domain.Identity, string) (*domain.Order, error) {
	return nil, ordersvc.ErrNotCancellable
}
func (s *stubOrderService) AdminList(context.Context, string) ([]domain.Order, error) {
	return []domain.Order{{ID: "o1", Subtotal: decimal.NewFromInt(100), Tax: decimal.NewFromInt(15), Total: decimal.NewFromInt(115)}}, nil
}
func (s *stubOrderService) UpdateStatus(context.Context, string, string) error { return nil }
func (s *stubOrderService) UpdateTotal(_ context.Context, _ string, raw string) (decimal.Decimal, error) {
	s.lastRaw = raw
	return decimal.NewFromString(raw)
}

type stubEditor struct {
	items      []domain.OrderableItem
	addErr     error
	lastAdd    collection.AddInput
	lastMove   collection.Direction
	lastToggle *bool
}

func (e *stubEditor) List(context.Context, string) ([]domain.OrderableItem, error) { return e.items, nil }
func (e *stubEditor) Move(_ context.Context, _ string, dir collection.Direction, _ string) ([]domain.OrderableItem, error) {
	e.lastMove = dir
	return e.items, nil
}
func (e *stubEditor) ToggleActive(_ context.Context, _ string, current bool) error {
	e.lastToggle = &current
	return nil
}
func (e *stubEditor) Add(_ context.Context, in collection.AddInput) (*domain.OrderableItem, error) {
	e.lastAdd = in
	if e.addErr != nil {
		return nil, e.addErr
	}
	return &domain.OrderableItem{ID: "i1", RefID: in.RefID, Active: !in.Inactive}, nil
}
func (e *stubEditor) Remove(context.Context, string) error { return nil }
func (e *stubEditor) Active(context.Context) ([]domain.OrderableItem, error) {
	return e.items, nil
}

type stubWishlist struct{}

func (stubWishlist) List(context.Context, domain.Identity) ([]domain.WishlistItem, error) {
	return []domain.WishlistItem{}, nil
}
func (stubWishlist) Add(context.Context, domain.Identity, string) error    { return nil }
func (stubWishlist) Remove(context.Context, domain.Identity, string) error { return nil }

type stubContent struct{}

func (stubContent) List(context.Context) ([]domain.WebsiteContent, error) {
	return []domain.WebsiteContent{}, nil
}
func (stubContent) Save(_ context.Context, section string, c domain.WebsiteContent) (*domain.WebsiteContent, error) {
	c.Section = section
	return &c, nil
}
func (stubContent) Delete(context.Context, string) error { return nil }
func (stubContent) CreateHeroSection(_ context.Context, key string) (*domain.WebsiteContent, error) {
	return &domain.WebsiteContent{Section: key}, nil
}
func (stubContent) Hero(context.Context) (contentsvc.HeroImages, error) {
	return contentsvc.HeroImages{Desktop: "d.jpg", Mobile: "d.jpg"}, nil
}

type stubFiles struct {
	lastName string
	lastBody string
}

func (s *stubFiles) List(context.Context) ([]domain.StoredFile, error) { return []domain.StoredFile{}, nil }
func (s *stubFiles) Upload(_ context.Context, original, _ string, body io.Reader, size int64) (*domain.StoredFile, error) {
	data, _ := io.ReadAll(body)
	s.lastName, s.lastBody = original, string(data)
	return &domain.StoredFile{Name: "1-x." + original, Size: size}, nil
}
func (s *stubFiles) Delete(context.Context, string) error { return nil }

type stubRoles struct {
	admins map[string]bool
	err    error
}

func (s stubRoles) HasRole(_ context.Context, userID, _ string) (bool, error) {
	return s.admins[userID], s.err
}

type stubTokens map[string]domain.Identity

func (s stubTokens) Verify(token string) (domain.Identity, error) {
	if token == "expired" {
		return domain.Identity{}, auth.ErrExpiredToken
	}
	id, ok := s[token]
	if !ok {
		return domain.Identity{}, auth.ErrInvalidToken
	}
	return id, nil
}

type stubGuests struct{}

func (stubGuests) Issue() string { return guestUUID }
func (stubGuests) Resolve(raw string) (string, error) {
	if raw == "" || raw == "bogus" {
		return "", errors.New("invalid guest id")
	}
	return raw, nil
}

type fixture struct {
	router   *gin.Engine
	carts    *stubCartService
	orders   *stubOrderService
	featured *stubEditor
	logos    *stubEditor
	files    *stubFiles
	notifier *events.Notifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{
		carts:    &stubCartService{store: &stubStore{}},
		orders:   &stubOrderService{},
		featured: &stubEditor{},
		logos:    &stubEditor{},
		files:    &stubFiles{},
		notifier: events.NewNotifier(),
	}
	router, err := buildRouter(nil, nil, Deps{
		ProductSvc:  &stubProductService{},
		CategorySvc: stubCategoryService{},
		CartSvc:     f.carts,
		CartEvents:  f.notifier,
		OrderSvc:    f.orders,
		WishlistSvc: stubWishlist{},
		ContentSvc:  stubContent{},
		FileSvc:     f.files,
		Roles:       stubRoles{admins: map[string]bool{"admin-1": true}},
		Tokens: stubTokens{
			"user-token":  {UserID: "user-1", Email: "u@example.com"},
			"admin-token": {UserID: "admin-1", Email: "a@example.com"},
		},
		Guests: stubGuests{},
		Collections: map[string]CollectionEditor{
			CollectionFeatured:   f.featured,
			CollectionDutyFree:   &stubEditor{},
			CollectionBrandLogos: f.logos,
			CollectionCatalog:    &stubEditor{},
		},
	})
	require.NoError(t, err)
	f.router = router
	return f
}

func (f *fixture) do(method, path, body, token string, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestBuildRouter_RequiresDeps(t *testing.T) {
	_, err := buildRouter(nil, nil, Deps{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGuestIDIssuedWhenMissing(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/cart", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, guestUUID, rec.Header().Get(guestHeader))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), guestCookie+"="+guestUUID)
	assert.Equal(t, guestUUID, f.carts.lastGuestID)
	assert.False(t, f.carts.lastIdentity.Authenticated())
}

func TestGuestIDFromHeaderAndCookie(t *testing.T) {
	f := newFixture(t)
	const device = "9b2e4c1a-1111-4222-8333-444455556666"

	rec := f.do(http.MethodGet, "/api/cart/count", "", "", guestHeader, device)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, device, f.carts.lastGuestID)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))

	rec = f.do(http.MethodGet, "/api/cart/count", "", "", "Cookie", guestCookie+"="+device)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, device, f.carts.lastGuestID)
}

func TestCartUsesIdentityWhenSignedIn(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/cart/items", `{"product_id":"p1"}`, "user-token")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", f.carts.lastIdentity.UserID)
	assert.Equal(t, 0, f.carts.store.lastQty)

	var body struct {
		Items []domain.CartLine `json:"items"`
		Count int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Cognac", body.Items[0].Product.Name)
}

func TestCartUpdateRequiresQuantity(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPatch, "/api/cart/items/guest-p1", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.carts.store.updateErr = domain.Validation("quantity must be positive")
	rec = f.do(http.MethodPatch, "/api/cart/items/line-1", `{"quantity":0}`, "user-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quantity must be positive", errorMessage(t, rec))
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/orders", "", "nope")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.ErrInvalidToken.Error(), errorMessage(t, rec))

	rec = f.do(http.MethodGet, "/api/wishlist", "", "expired")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/orders", "", "user-token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublicRouteIgnoresBadToken(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/products", "", "nope")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCMSRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/cms/featured", "", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/cms/featured", "", "user-token").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/cms/featured", "", "admin-token").Code)
}

func TestCMSCollectionAdd(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/cms/featured", `{"product_id":"p1","is_active":false}`, "admin-token")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "p1", f.featured.lastAdd.RefID)
	assert.True(t, f.featured.lastAdd.Inactive)

	f.featured.addErr = collection.ErrDuplicate
	rec = f.do(http.MethodPost, "/api/cms/featured", `{"product_id":"p1"}`, "admin-token")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "product is already in this collection", errorMessage(t, rec))

	rec = f.do(http.MethodPost, "/api/cms/brand-logos", `{"name":"Dior","image_url":"dior.png"}`, "admin-token")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Dior", f.logos.lastAdd.Payload["name"])
	assert.Empty(t, f.logos.lastAdd.RefID)
}

func TestCMSMoveAndToggle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/cms/featured/i1/move", `{"direction":"sideways"}`, "admin-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/cms/featured/i1/move", `{"direction":"UP"}`, "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, collection.Up, f.featured.lastMove)

	rec = f.do(http.MethodPost, "/api/cms/featured/i1/toggle", `{}`, "admin-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/cms/featured/i1/toggle", `{"current":true}`, "admin-token")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.featured.lastToggle)
	assert.True(t, *f.featured.lastToggle)
}

func TestPublicBrandLogosUsePayload(t *testing.T) {
	f := newFixture(t)
	f.logos.items = []domain.OrderableItem{{
		ID:      "b1",
		Active:  true,
		Payload: map[string]interface{}{"name": "Dior", "image_url": "dior.png"},
	}}

	rec := f.do(http.MethodGet, "/api/brand-logos", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var logos []domain.BrandLogo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logos))
	require.Len(t, logos, 1)
	assert.Equal(t, "Dior", logos[0].Name)
	assert.Equal(t, "dior.png", logos[0].ImageURL)
}

func TestCheckoutPassesGuestID(t *testing.T) {
	f := newFixture(t)
	body := `{"email":"t@example.com","passport_number":"A1","surname":"Doe"}`

	rec := f.do(http.MethodPost, "/api/checkout", body, "", guestHeader, guestUUID)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, guestUUID, f.orders.lastGuestID)
	assert.Equal(t, "A1", f.orders.lastInput.PassportNumber)
	assert.Equal(t, "t@example.com", f.orders.lastInput.Email)
}

func TestOrderErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/orders/o1/track?email=x@example.com", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/orders/o1/cancel", "", "user-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "order can no longer be cancelled", errorMessage(t, rec))
}

func TestUpdateOrderTotalAcceptsNumberOrString(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPatch, "/api/cms/orders/o1/total", `{"total":120.5}`, "admin-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "120.5", f.orders.lastRaw)

	f.do(http.MethodPatch, "/api/cms/orders/o1/total", `{"total":"99"}`, "admin-token")
	assert.Equal(t, "99", f.orders.lastRaw)
}

func TestExportOrders(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/cms/orders/export", "", "admin-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "orders-")
	assert.NotZero(t, rec.Body.Len())
}

func TestUploadFile(t *testing.T) {
	f := newFixture(t)

	body := &strings.Builder{}
	boundary := "XBOUNDARY"
	fmt.Fprintf(body, "--%s\r\nContent-Disposition: form-data; name=\"file\"; filename=\"logo.png\"\r\nContent-Type: image/png\r\n\r\npngdata\r\n--%s--\r\n", boundary, boundary)
	req := httptest.NewRequest(http.MethodPost, "/api/cms/files", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "logo.png", f.files.lastName)
	assert.Equal(t, "pngdata", f.files.lastBody)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.Validation("x"), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", domain.ErrNotFound), http.StatusNotFound},
		{collection.ErrDuplicate, http.StatusConflict},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: %w", collection.ErrSwapFailed, errors.New("db")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestCartEventsWebsocket(t *testing.T) {
	f := newFixture(t)
	f.carts.store.lines = []domain.CartLine{{ID: "guest-p1", Quantity: 2}}
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/cart/events"
	header := http.Header{}
	header.Set(guestHeader, guestUUID)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg struct {
		Type  string `json:"type"`
		Count int    `json:"count"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "cart_changed", msg.Type)
	assert.Equal(t, 2, msg.Count)

	f.notifier.Publish(events.CartChanged{Owner: "guest:" + guestUUID, Count: 5})
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, 5, msg.Count)
}
