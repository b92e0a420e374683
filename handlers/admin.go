package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"

	"table-order-api/config"
	"table-order-api/livequery"
	"table-order-api/middleware"
	"table-order-api/models"
	"table-order-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ── Food Management ─────────────────────────────────────────────────────────

type FoodRequest struct {
	Title       string  `json:"title" binding:"required"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	ImageURL    string  `json:"image_url"`
	Description string  `json:"description"`
	Ingredients string  `json:"ingredients"`
	IsAvailable *bool   `json:"is_available"`
}

// GetFoods returns all menu items of the tenant, including unavailable ones
func GetFoods(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)
	var foods []models.Food
	query := config.DB.Where("restaurant_id = ?", restaurant.ID)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	query.Order("category, title").Find(&foods)
	c.JSON(http.StatusOK, gin.H{"count": len(foods), "foods": foods})
}

// CreateFood adds a menu item
func CreateFood(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var req FoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	food := models.Food{
		RestaurantID: restaurant.ID,
		Title:        req.Title,
		Category:     req.Category,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		Description:  req.Description,
		Ingredients:  req.Ingredients,
		IsAvailable:  req.IsAvailable == nil || *req.IsAvailable,
	}
	if err := config.DB.Create(&food).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add food"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Food added", "food": food})
}

// UpdateFood edits a menu item. Existing orders keep their frozen
// price and total; only future checkouts see the new price.
func UpdateFood(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var food models.Food
	if err := config.DB.Where("restaurant_id = ?", restaurant.ID).First(&food, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	allowed := map[string]bool{
		"title": true, "category": true, "price": true, "image_url": true,
		"description": true, "ingredients": true, "is_available": true,
	}
	update := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			update[k] = v
		}
	}
	config.DB.Model(&food).Updates(update)
	c.JSON(http.StatusOK, gin.H{"message": "Food updated", "food": food})
}

// DeleteFood removes a menu item
func DeleteFood(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var food models.Food
	if err := config.DB.Where("restaurant_id = ?", restaurant.ID).First(&food, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
		return
	}
	config.DB.Delete(&food)
	c.JSON(http.StatusOK, gin.H{"message": "Food deleted"})
}

// ── Order Management ────────────────────────────────────────────────────────

// AdminGetOrders returns all orders of the tenant with optional
// status/table filters
func AdminGetOrders(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	q := livequery.Query{RestaurantID: restaurant.ID}
	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		q.Status = &s
	}
	if tableNo := c.Query("table_no"); tableNo != "" {
		n, err := strconv.Atoi(tableNo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table number"})
			return
		}
		q.TableNo = &n
	}

	orders, err := LoadOrders(q)
	if err != nil {
		log.Error().Err(err).Uint("restaurant_id", restaurant.ID).Msg("admin orders load failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders. Please try again."})
		return
	}

	summary := map[string]int{}
	var revenue float64
	for _, o := range orders {
		summary[string(o.Status)]++
		if o.Status == models.StatusCompleted {
			revenue += o.Total
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"total_revenue": revenue,
		"count":         len(orders),
		"orders":        orders,
	})
}

// StreamAdminOrders is the live admin orders panel over SSE
func StreamAdminOrders(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)
	streamOrders(c, livequery.Query{RestaurantID: restaurant.ID}, func(snapshot []models.Order) interface{} {
		return gin.H{"count": len(snapshot), "orders": snapshot}
	})
}

type AdminCreateOrderRequest struct {
	TableNo       int     `json:"table_no" binding:"required"`
	Title         string  `json:"title" binding:"required"`
	Category      string  `json:"category"`
	Price         float64 `json:"price" binding:"gte=0"`
	Quantity      int     `json:"quantity" binding:"required,min=1"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
}

// AdminCreateOrder creates an order on a customer's behalf (walk-in or
// phone order taken at the counter)
func AdminCreateOrder(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var req AdminCreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := models.Order{
		RestaurantID:  restaurant.ID,
		TableNo:       req.TableNo,
		Title:         req.Title,
		Category:      req.Category,
		Price:         req.Price,
		Quantity:      req.Quantity,
		Total:         req.Price * float64(req.Quantity),
		Status:        models.StatusPending,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	}
	if err := config.DB.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	livequery.Bus.Broadcast(restaurant.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Order created", "order": order})
}

// AdminUpdateOrder is the full-record edit surface. Status changes
// still go through the transition authority; identity, tenant, total
// and creation time are never editable.
func AdminUpdateOrder(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var order models.Order
	if err := config.DB.Where("restaurant_id = ?", restaurant.ID).First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if raw, ok := req["status"]; ok {
		status, ok := raw.(string)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be a string"})
			return
		}
		requested := models.OrderStatus(status)
		if requested != order.Status {
			if err := statemachine.CanTransition(order.Status, requested); err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":             "Invalid state transition",
					"current_status":    order.Status,
					"requested":         requested,
					"reason":            err.Error(),
					"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
				})
				return
			}
		}
	}

	// total stays frozen even when price is edited here
	allowed := map[string]bool{
		"table_no": true, "title": true, "category": true, "price": true,
		"quantity": true, "status": true, "customer_name": true, "customer_phone": true,
		"image_url": true, "description": true, "ingredients": true,
	}
	update := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			update[k] = v
		}
	}
	config.DB.Model(&order).Updates(update)
	livequery.Bus.Broadcast(restaurant.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": order})
}

// AdminDeleteOrder removes an order, idempotently, same as the kitchen path
func AdminDeleteOrder(c *gin.Context) {
	RemoveOrder(c)
}

// ── Staff Management ────────────────────────────────────────────────────────

// GetStaff returns all staff of the tenant
func GetStaff(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)
	var staff []models.Staff
	config.DB.Where("restaurant_id = ?", restaurant.ID).Order("full_name").Find(&staff)
	c.JSON(http.StatusOK, gin.H{"count": len(staff), "staff": staff})
}

// AddStaff creates a staff account from a multipart form, saving the
// optional profile image under the upload directory
func AddStaff(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	fullName := c.PostForm("full_name")
	mobile := c.PostForm("mobile")
	password := c.PostForm("password")
	if fullName == "" || mobile == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "full_name, mobile and password are required"})
		return
	}

	var existing models.Staff
	if err := config.DB.Where("restaurant_id = ? AND mobile = ?", restaurant.ID, mobile).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Mobile number already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	imageURL := ""
	if file, err := c.FormFile("image"); err == nil {
		filename := uuid.NewString() + filepath.Ext(file.Filename)
		dst := filepath.Join(config.C.UploadDir, filename)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			log.Error().Err(err).Str("file", file.Filename).Msg("staff image save failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
			return
		}
		imageURL = "/uploads/" + filename
	}

	staff := models.Staff{
		RestaurantID: restaurant.ID,
		FullName:     fullName,
		Mobile:       mobile,
		PasswordHash: string(hash),
		Designation:  c.PostForm("designation"),
		Address:      c.PostForm("address"),
		Aadhaar:      c.PostForm("aadhaar"),
		ImageURL:     imageURL,
		IsActive:     true,
	}
	if err := config.DB.Create(&staff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create staff"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Staff added", "staff": staff})
}

// UpdateStaff edits a staff record; a new password is re-hashed
func UpdateStaff(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var staff models.Staff
	if err := config.DB.Where("restaurant_id = ?", restaurant.ID).First(&staff, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff not found"})
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if password, ok := req["password"].(string); ok && password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		req["password_hash"] = string(hash)
	}

	allowed := map[string]bool{
		"full_name": true, "mobile": true, "password_hash": true, "designation": true,
		"address": true, "aadhaar": true, "image_url": true, "is_active": true,
	}
	update := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			update[k] = v
		}
	}
	config.DB.Model(&staff).Updates(update)
	c.JSON(http.StatusOK, gin.H{"message": "Staff updated", "staff": staff})
}

// DeleteStaff removes a staff record
func DeleteStaff(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var staff models.Staff
	if err := config.DB.Where("restaurant_id = ?", restaurant.ID).First(&staff, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff not found"})
		return
	}
	config.DB.Delete(&staff)
	c.JSON(http.StatusOK, gin.H{"message": "Staff deleted"})
}

// ── Table Management ────────────────────────────────────────────────────────

type TableRequest struct {
	Number   int    `json:"number" binding:"required,min=1"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
}

// GetTables returns all tables of the tenant
func GetTables(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)
	var tables []models.Table
	config.DB.Where("restaurant_id = ?", restaurant.ID).Order("number").Find(&tables)
	c.JSON(http.StatusOK, gin.H{"count": len(tables), "tables": tables})
}

// CreateTable adds a table; numbers are unique within the tenant
func CreateTable(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var req TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Table
	if err := config.DB.Where("restaurant_id = ? AND number = ?", restaurant.ID, req.Number).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Table number already exists"})
		return
	}

	capacity := req.Capacity
	if capacity == 0 {
		capacity = 2
	}
	table := models.Table{
		RestaurantID: restaurant.ID,
		Number:       req.Number,
		Capacity:     capacity,
		Location:     req.Location,
		IsActive:     true,
	}
	if err := config.DB.Create(&table).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Table created", "table": table})
}

// UpdateTable edits a table
func UpdateTable(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var table models.Table
	if err := config.DB.Where("restaurant_id = ?", restaurant.ID).First(&table, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	allowed := map[string]bool{"number": true, "capacity": true, "location": true, "is_occupied": true, "is_active": true}
	update := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			update[k] = v
		}
	}
	config.DB.Model(&table).Updates(update)
	c.JSON(http.StatusOK, gin.H{"message": "Table updated", "table": table})
}

// DeleteTable removes a table. Orders are not cascaded; history for
// the table number stays queryable.
func DeleteTable(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var table models.Table
	if err := config.DB.Where("restaurant_id = ?", restaurant.ID).First(&table, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	}
	config.DB.Delete(&table)
	c.JSON(http.StatusOK, gin.H{"message": "Table deleted"})
}

// ── Dashboard ───────────────────────────────────────────────────────────────

// zeroStats is the documented fallback payload: the dashboard renders
// zeros instead of erroring the page when the store misbehaves
func zeroStats() gin.H {
	return gin.H{
		"foods":    0,
		"orders":   0,
		"staff":    0,
		"tables":   0,
		"revenue":  0.0,
		"by_status": map[string]int{
			string(models.StatusPending):   0,
			string(models.StatusCooking):   0,
			string(models.StatusServed):    0,
			string(models.StatusCompleted): 0,
		},
		"degraded": true,
	}
}

// GetStats returns the admin dashboard numbers. Any internal failure
// degrades to the zero-filled payload with HTTP 200; the page must
// always render.
func GetStats(c *gin.Context) {
	restaurant := middleware.GetRestaurant(c)

	var foods, staff, tables int64
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.Food{}, &foods},
		{&models.Staff{}, &staff},
		{&models.Table{}, &tables},
	}
	for _, cnt := range counts {
		if err := config.DB.Model(cnt.model).Where("restaurant_id = ?", restaurant.ID).Count(cnt.dst).Error; err != nil {
			log.Error().Err(err).Uint("restaurant_id", restaurant.ID).Msg("stats query failed, serving zero fallback")
			c.JSON(http.StatusOK, zeroStats())
			return
		}
	}

	orders, err := LoadOrders(livequery.Query{RestaurantID: restaurant.ID})
	if err != nil {
		log.Error().Err(err).Uint("restaurant_id", restaurant.ID).Msg("stats query failed, serving zero fallback")
		c.JSON(http.StatusOK, zeroStats())
		return
	}

	byStatus := map[string]int{
		string(models.StatusPending):   0,
		string(models.StatusCooking):   0,
		string(models.StatusServed):    0,
		string(models.StatusCompleted): 0,
	}
	var revenue float64
	for _, o := range orders {
		byStatus[string(o.Status)]++
		if o.Status == models.StatusCompleted {
			revenue += o.Total
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"foods":     foods,
		"orders":    len(orders),
		"staff":     staff,
		"tables":    tables,
		"revenue":   revenue,
		"by_status": byStatus,
		"degraded":  false,
	})
}
