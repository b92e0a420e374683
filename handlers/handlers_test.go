package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"table-order-api/config"
	"table-order-api/handlers"
	"table-order-api/livequery"
	"table-order-api/middleware"
	"table-order-api/models"
	"table-order-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	router *gin.Engine
	spice  *models.Restaurant // tenant A, slug "spicehub"
	sea    *models.Restaurant // tenant B, slug "seaside"
	cook   *models.Staff      // active kitchen staff at spicehub
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Load()
	config.C.DBPath = fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	config.C.UploadDir = t.TempDir()
	config.InitDB()
	livequery.Init(handlers.LoadOrders)

	f := &fixture{router: gin.New()}
	routes.SetupRoutes(f.router)

	f.spice = seedRestaurant(t, "Spice Hub", "spicehub")
	f.sea = seedRestaurant(t, "Seaside", "seaside")
	f.cook = seedStaff(t, f.spice.ID, "Arun", "9000000001", "secret123", true)
	seedTable(t, f.spice.ID, 5)
	seedTable(t, f.sea.ID, 5)
	return f
}

func seedRestaurant(t *testing.T, name, slug string) *models.Restaurant {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.MinCost)
	r := &models.Restaurant{
		Name: name, Slug: slug,
		AdminEmail: slug + "@example.com", AdminPasswordHash: string(hash),
	}
	require.NoError(t, config.DB.Create(r).Error)
	return r
}

func seedStaff(t *testing.T, restaurantID uint, name, mobile, password string, active bool) *models.Staff {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s := &models.Staff{
		RestaurantID: restaurantID, FullName: name, Mobile: mobile,
		PasswordHash: string(hash), Designation: "cook", IsActive: active,
	}
	require.NoError(t, config.DB.Create(s).Error)
	return s
}

func seedTable(t *testing.T, restaurantID uint, number int) {
	t.Helper()
	require.NoError(t, config.DB.Create(&models.Table{
		RestaurantID: restaurantID, Number: number, Capacity: 4, IsActive: true,
	}).Error)
}

func seedFood(t *testing.T, restaurantID uint, title string, price float64) *models.Food {
	t.Helper()
	food := &models.Food{RestaurantID: restaurantID, Title: title, Category: "mains", Price: price, IsAvailable: true}
	require.NoError(t, config.DB.Create(food).Error)
	return food
}

func seedOrder(t *testing.T, restaurantID uint, tableNo int, status models.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()
	o := &models.Order{
		RestaurantID: restaurantID, TableNo: tableNo, Title: "Dal Fry",
		Price: 120, Quantity: 1, Total: 120, Status: status,
	}
	require.NoError(t, config.DB.Create(o).Error)
	// pin the server timestamp for deterministic ordering in assertions
	require.NoError(t, config.DB.Model(o).Update("created_at", createdAt).Error)
	o.CreatedAt = createdAt
	return o
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func staffAuth(t *testing.T, s *models.Staff) map[string]string {
	t.Helper()
	token, err := middleware.GenerateStaffToken(s)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func adminAuth(t *testing.T, r *models.Restaurant) map[string]string {
	t.Helper()
	token, err := middleware.GenerateAdminToken(r)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func tableCookie(t *testing.T, restaurantID uint, tableNo int) map[string]string {
	t.Helper()
	cookie, err := middleware.IssueTableSession(restaurantID, tableNo, "Asha", "9888800000")
	require.NoError(t, err)
	return map[string]string{"Cookie": middleware.TableSessionCookie + "=" + cookie}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// ── Auth ────────────────────────────────────────────────────────────────────

func TestStaffLogin(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/spicehub/api/staff/login",
		gin.H{"mobile": "9000000001", "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	staff := body["staff"].(map[string]interface{})
	assert.Equal(t, "Arun", staff["fullName"])
	assert.EqualValues(t, f.spice.ID, staff["restaurantId"])

	w = f.do(t, http.MethodPost, "/spicehub/api/staff/login",
		gin.H{"mobile": "9000000001", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	seedStaff(t, f.spice.ID, "Binu", "9000000002", "secret123", false)
	w = f.do(t, http.MethodPost, "/spicehub/api/staff/login",
		gin.H{"mobile": "9000000002", "password": "secret123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/spicehub/api/staff/login",
		gin.H{"mobile": "9000000001"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStaffLoginBlockedTenant(t *testing.T) {
	f := setup(t)
	require.NoError(t, config.DB.Model(f.spice).Update("is_blocked", true).Error)

	w := f.do(t, http.MethodPost, "/spicehub/api/staff/login",
		gin.H{"mobile": "9000000001", "password": "secret123"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ── Customer flow ───────────────────────────────────────────────────────────

func TestCheckoutCreatesOneOrderPerLineItem(t *testing.T) {
	f := setup(t)
	dal := seedFood(t, f.spice.ID, "Dal Fry", 120)
	naan := seedFood(t, f.spice.ID, "Butter Naan", 40)

	w := f.do(t, http.MethodPost, "/spicehub/api/checkout", gin.H{
		"items": []gin.H{
			{"food_id": dal.ID, "quantity": 2},
			{"food_id": naan.ID, "quantity": 3},
		},
	}, tableCookie(t, f.spice.ID, 5))
	require.Equal(t, http.StatusCreated, w.Code)

	var orders []models.Order
	require.NoError(t, config.DB.Where("restaurant_id = ?", f.spice.ID).Order("title").Find(&orders).Error)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, models.StatusPending, o.Status)
		assert.Equal(t, 5, o.TableNo)
		assert.Equal(t, o.Price*float64(o.Quantity), o.Total)
		assert.NotEmpty(t, o.ID)
		assert.Equal(t, "Asha", o.CustomerName)
	}
}

func TestCheckoutRequiresTableSession(t *testing.T) {
	f := setup(t)
	dal := seedFood(t, f.spice.ID, "Dal Fry", 120)

	w := f.do(t, http.MethodPost, "/spicehub/api/checkout", gin.H{
		"items": []gin.H{{"food_id": dal.ID, "quantity": 1}},
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// a cookie issued for another restaurant must not work here
	w = f.do(t, http.MethodPost, "/spicehub/api/checkout", gin.H{
		"items": []gin.H{{"food_id": dal.ID, "quantity": 1}},
	}, tableCookie(t, f.sea.ID, 5))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTableStatusAggregatesActiveOrders(t *testing.T) {
	f := setup(t)
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, f.spice.ID, 5, models.StatusCooking, t0)
	newest := seedOrder(t, f.spice.ID, 5, models.StatusPending, t0.Add(time.Minute))

	w := f.do(t, http.MethodGet, "/spicehub/api/table-status", nil, tableCookie(t, f.spice.ID, 5))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["found"])
	view := body["view"].(map[string]interface{})
	assert.Equal(t, "pending", view["status"])
	assert.Equal(t, newest.ID, view["order_id"])
	assert.Len(t, view["items"], 2)
	assert.Equal(t, 240.0, view["total"])
}

func TestTableStatusEmptyWhenOnlyServed(t *testing.T) {
	f := setup(t)
	seedOrder(t, f.spice.ID, 5, models.StatusServed, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	w := f.do(t, http.MethodGet, "/spicehub/api/table-status", nil, tableCookie(t, f.spice.ID, 5))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["found"])
}

// ── Kitchen flow ────────────────────────────────────────────────────────────

func TestKitchenTransition(t *testing.T) {
	f := setup(t)
	auth := staffAuth(t, f.cook)
	order := seedOrder(t, f.spice.ID, 5, models.StatusPending, time.Now().UTC())

	w := f.do(t, http.MethodPut, "/spicehub/kitchen/orders/"+order.ID+"/status",
		gin.H{"status": "cooking"}, auth)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Order
	require.NoError(t, config.DB.First(&got, "id = ?", order.ID).Error)
	assert.Equal(t, models.StatusCooking, got.Status)
	assert.Equal(t, 2, got.Version)

	// backward move is rejected and leaves status unchanged
	w = f.do(t, http.MethodPut, "/spicehub/kitchen/orders/"+order.ID+"/status",
		gin.H{"status": "pending"}, auth)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NoError(t, config.DB.First(&got, "id = ?", order.ID).Error)
	assert.Equal(t, models.StatusCooking, got.Status)

	// unknown order id
	w = f.do(t, http.MethodPut, "/spicehub/kitchen/orders/nope/status",
		gin.H{"status": "cooking"}, auth)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKitchenSkipForwardTransition(t *testing.T) {
	f := setup(t)
	auth := staffAuth(t, f.cook)
	order := seedOrder(t, f.spice.ID, 5, models.StatusPending, time.Now().UTC())

	w := f.do(t, http.MethodPut, "/spicehub/kitchen/orders/"+order.ID+"/status",
		gin.H{"status": "served"}, auth)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Order
	require.NoError(t, config.DB.First(&got, "id = ?", order.ID).Error)
	assert.Equal(t, models.StatusServed, got.Status)
}

func TestRemoveOrderIsIdempotent(t *testing.T) {
	f := setup(t)
	auth := staffAuth(t, f.cook)
	order := seedOrder(t, f.spice.ID, 5, models.StatusPending, time.Now().UTC())

	w := f.do(t, http.MethodDelete, "/spicehub/kitchen/orders/"+order.ID, nil, auth)
	assert.Equal(t, http.StatusOK, w.Code)

	// second delete of the same id is a no-op, not an error
	w = f.do(t, http.MethodDelete, "/spicehub/kitchen/orders/"+order.ID, nil, auth)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestKitchenRequiresStaffRole(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/spicehub/kitchen/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// a staff token from another tenant is rejected
	other := seedStaff(t, f.sea.ID, "Chitra", "9000000009", "secret123", true)
	w = f.do(t, http.MethodGet, "/spicehub/kitchen/orders", nil,
		staffAuth(t, other))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBlockedTenantExpiresStaffSession(t *testing.T) {
	f := setup(t)
	auth := staffAuth(t, f.cook)

	w := f.do(t, http.MethodGet, "/spicehub/kitchen/orders", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, config.DB.Model(f.spice).Update("is_blocked", true).Error)

	// the still-valid token is dead on next observation; no write can land
	w = f.do(t, http.MethodGet, "/spicehub/kitchen/orders", nil, auth)
	assert.Equal(t, http.StatusForbidden, w.Code)
	order := seedOrder(t, f.spice.ID, 5, models.StatusPending, time.Now().UTC())
	w = f.do(t, http.MethodPut, "/spicehub/kitchen/orders/"+order.ID+"/status",
		gin.H{"status": "cooking"}, auth)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ── Admin flow ──────────────────────────────────────────────────────────────

func TestTenantIsolation(t *testing.T) {
	f := setup(t)
	seedOrder(t, f.spice.ID, 5, models.StatusPending, time.Now().UTC())

	spiceAuth := adminAuth(t, f.spice)
	seaAuth := adminAuth(t, f.sea)

	w := f.do(t, http.MethodGet, "/spicehub/admin/orders", nil, spiceAuth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	// tenant B sees none of tenant A's orders
	w = f.do(t, http.MethodGet, "/seaside/admin/orders", nil, seaAuth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["count"])

	// and tenant B's token is rejected on tenant A's paths
	w = f.do(t, http.MethodGet, "/spicehub/admin/orders", nil, seaAuth)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFoodPriceEditKeepsOrderTotalsFrozen(t *testing.T) {
	f := setup(t)
	auth := adminAuth(t, f.spice)
	dal := seedFood(t, f.spice.ID, "Dal Fry", 120)

	w := f.do(t, http.MethodPost, "/spicehub/api/checkout", gin.H{
		"items": []gin.H{{"food_id": dal.ID, "quantity": 2}},
	}, tableCookie(t, f.spice.ID, 5))
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPut, fmt.Sprintf("/spicehub/admin/foods/%d", dal.ID),
		gin.H{"price": 200}, auth)
	require.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	require.NoError(t, config.DB.Where("restaurant_id = ?", f.spice.ID).First(&order).Error)
	assert.Equal(t, 120.0, order.Price)
	assert.Equal(t, 240.0, order.Total)
}

func TestAdminUpdateOrderValidatesStatus(t *testing.T) {
	f := setup(t)
	auth := adminAuth(t, f.spice)
	order := seedOrder(t, f.spice.ID, 5, models.StatusServed, time.Now().UTC())

	w := f.do(t, http.MethodPut, "/spicehub/admin/orders/"+order.ID,
		gin.H{"status": "cooking", "customer_name": "Ravi"}, auth)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodPut, "/spicehub/admin/orders/"+order.ID,
		gin.H{"status": "completed", "customer_name": "Ravi"}, auth)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Order
	require.NoError(t, config.DB.First(&got, "id = ?", order.ID).Error)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, "Ravi", got.CustomerName)
}

func TestAddStaffMultipart(t *testing.T) {
	f := setup(t)
	auth := adminAuth(t, f.spice)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("full_name", "Deepa"))
	require.NoError(t, form.WriteField("mobile", "9000000003"))
	require.NoError(t, form.WriteField("password", "kitchen99"))
	require.NoError(t, form.WriteField("designation", "chef"))
	part, err := form.CreateFormFile("image", "deepa.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not-a-real-png"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/spicehub/admin/add-staff", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", auth["Authorization"])
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var staff models.Staff
	require.NoError(t, config.DB.Where("restaurant_id = ? AND mobile = ?", f.spice.ID, "9000000003").First(&staff).Error)
	assert.Equal(t, "Deepa", staff.FullName)
	assert.True(t, staff.IsActive)
	assert.NotEqual(t, "kitchen99", staff.PasswordHash)
	assert.True(t, strings.HasPrefix(staff.ImageURL, "/uploads/"))

	// the new account can log in straight away
	lw := f.do(t, http.MethodPost, "/spicehub/api/staff/login",
		gin.H{"mobile": "9000000003", "password": "kitchen99"}, nil)
	assert.Equal(t, http.StatusOK, lw.Code)
}

func TestAdminStats(t *testing.T) {
	f := setup(t)
	auth := adminAuth(t, f.spice)
	seedFood(t, f.spice.ID, "Dal Fry", 120)
	seedOrder(t, f.spice.ID, 5, models.StatusCompleted, time.Now().UTC())
	seedOrder(t, f.spice.ID, 5, models.StatusPending, time.Now().UTC())

	w := f.do(t, http.MethodGet, "/spicehub/admin/stats", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["degraded"])
	assert.EqualValues(t, 1, body["foods"])
	assert.EqualValues(t, 2, body["orders"])
	assert.EqualValues(t, 120, body["revenue"])
	byStatus := body["by_status"].(map[string]interface{})
	assert.EqualValues(t, 1, byStatus["pending"])
	assert.EqualValues(t, 1, byStatus["completed"])
}

// ── Super admin ─────────────────────────────────────────────────────────────

func TestSuperAdminBlockRestaurant(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/superadmin/login",
		gin.H{"email": config.C.SuperAdminEmail, "password": config.C.SuperAdminPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)
	auth := map[string]string{"Authorization": "Bearer " + token}

	// a live kitchen subscription is dropped the moment the tenant blocks
	sub, err := livequery.Bus.Subscribe(livequery.Query{RestaurantID: f.spice.ID})
	require.NoError(t, err)
	<-sub.C

	w = f.do(t, http.MethodPut, fmt.Sprintf("/superadmin/restaurants/%d/block", f.spice.ID),
		gin.H{"is_blocked": true}, auth)
	require.Equal(t, http.StatusOK, w.Code)

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok, "subscription must close when tenant blocks")
	case <-time.After(time.Second):
		t.Fatal("subscription not dropped after block")
	}

	var got models.Restaurant
	require.NoError(t, config.DB.First(&got, f.spice.ID).Error)
	assert.True(t, got.IsBlocked)
}

func TestSuperAdminLoginRejectsBadCredentials(t *testing.T) {
	f := setup(t)
	w := f.do(t, http.MethodPost, "/api/superadmin/login",
		gin.H{"email": "nope@example.com", "password": "nope123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
