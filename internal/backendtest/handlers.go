package backendtest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	cartdomain "github.com/clovermart/storefront/internal/app/domain/cart"
	"github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/internal/app/domain/order"
	"github.com/clovermart/storefront/internal/app/domain/user"
	"github.com/clovermart/storefront/internal/app/storage"
	"github.com/clovermart/storefront/internal/httputil"
)

// =============================================================================
// Auth
// =============================================================================

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || input.Email == "" || input.Password == "" {
		httputil.BadRequest(w, "name, email and password are required")
		return
	}

	_, err := s.users.CreateUser(r.Context(), storage.Account{
		User:         user.User{Name: input.Name, Email: input.Email, Role: user.RoleCustomer},
		PasswordHash: hashPassword(input.Password),
	})
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "registration successful",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	acct, err := s.users.GetUserByEmail(r.Context(), input.Email)
	if err != nil || acct.PasswordHash != hashPassword(input.Password) {
		httputil.Unauthorized(w, "Invalid email or password")
		return
	}

	token, err := s.issueToken(acct.User)
	if err != nil {
		s.log.WithError(err).Error("token issue failed")
		httputil.InternalError(w, "failed to issue token")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    acct.User,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.revokeToken(currentTokenID(r))
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, currentUser(r))
}

// =============================================================================
// Products
// =============================================================================

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.ListProducts(r.Context())
	if err != nil {
		httputil.InternalError(w, "failed to list products")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.products.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.NotFound(w, "product not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

type productInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}

func catalogProduct(in productInput) catalog.Product {
	return catalog.Product{
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Description: in.Description,
		Image:       in.Image,
		Category:    in.Category,
		Stock:       in.Stock,
	}
}

func (in productInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	if in.Price < 0 {
		return errors.New("price must be non-negative")
	}
	if in.Stock < 0 {
		return errors.New("stock must be non-negative")
	}
	return nil
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var input productInput
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}
	if err := input.validate(); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	p, err := s.products.CreateProduct(r.Context(), catalogProduct(input))
	if err != nil {
		httputil.InternalError(w, "failed to create product")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{"product": p})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input productInput
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}
	if err := input.validate(); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	p := catalogProduct(input)
	p.ID = mux.Vars(r)["id"]
	updated, err := s.products.UpdateProduct(r.Context(), p)
	if err != nil {
		httputil.NotFound(w, "product not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"product": updated})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.products.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.NotFound(w, "product not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// =============================================================================
// Cart
// =============================================================================

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}
	if input.Quantity < 1 {
		input.Quantity = 1
	}

	u := currentUser(r)
	product, err := s.products.GetProduct(r.Context(), input.ProductID)
	if err != nil {
		httputil.NotFound(w, "product not found")
		return
	}

	// Merge into an existing line item for the same product.
	items, err := s.carts.ListCartItems(r.Context(), u.ID)
	if err != nil {
		httputil.InternalError(w, "failed to read cart")
		return
	}
	var existing *cartdomain.Item
	for i := range items {
		if items[i].Product.ID == product.ID {
			existing = &items[i]
			break
		}
	}

	newQuantity := input.Quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}
	if newQuantity > product.Stock {
		httputil.BadRequest(w, "Insufficient stock")
		return
	}

	if existing != nil {
		existing.Quantity = newQuantity
		if _, err := s.carts.UpdateCartItem(r.Context(), *existing); err != nil {
			httputil.InternalError(w, "failed to update cart item")
			return
		}
	} else {
		item := cartdomain.Item{
			UserID:   u.ID,
			Product:  product,
			Quantity: input.Quantity,
		}
		if _, err := s.carts.CreateCartItem(r.Context(), item); err != nil {
			httputil.InternalError(w, "failed to create cart item")
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	items, err := s.carts.ListCartItems(r.Context(), currentUser(r).ID)
	if err != nil {
		httputil.InternalError(w, "failed to read cart")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"cartItems": items})
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemId"]
	item, err := s.carts.GetCartItem(r.Context(), itemID)
	if err != nil || item.UserID != currentUser(r).ID {
		httputil.NotFound(w, "cart item not found")
		return
	}
	if err := s.carts.DeleteCartItem(r.Context(), itemID); err != nil {
		httputil.InternalError(w, "failed to remove cart item")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// =============================================================================
// Orders
// =============================================================================

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Products []struct {
			Product  string  `json:"product"`
			Quantity int     `json:"quantity"`
			Price    float64 `json:"price"`
		} `json:"products"`
		TotalAmount     float64               `json:"totalAmount"`
		ShippingAddress order.ShippingAddress `json:"shippingAddress"`
		PaymentMethod   string                `json:"paymentMethod"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}
	if len(input.Products) == 0 {
		httputil.BadRequest(w, "order has no products")
		return
	}

	u := currentUser(r)
	lines := make([]order.Line, 0, len(input.Products))
	for _, l := range input.Products {
		product, err := s.products.GetProduct(r.Context(), l.Product)
		if err != nil {
			httputil.BadRequest(w, "unknown product "+l.Product)
			return
		}
		if l.Quantity < 1 {
			httputil.BadRequest(w, "quantity must be at least 1")
			return
		}
		if l.Quantity > product.Stock {
			httputil.BadRequest(w, "Insufficient stock")
			return
		}
		product.Stock -= l.Quantity
		if _, err := s.products.UpdateProduct(r.Context(), product); err != nil {
			httputil.InternalError(w, "failed to reserve stock")
			return
		}
		lines = append(lines, order.Line{Product: product, Quantity: l.Quantity, Price: l.Price})
	}

	placed, err := s.orders.CreateOrder(r.Context(), order.Order{
		UserID:          u.ID,
		Lines:           lines,
		TotalAmount:     input.TotalAmount,
		Status:          order.StatusPending,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
	})
	if err != nil {
		httputil.InternalError(w, "failed to create order")
		return
	}

	// The cart is consumed by the order.
	if err := s.carts.ClearCart(r.Context(), u.ID); err != nil {
		s.log.WithError(err).Warn("failed to clear cart after order")
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"order":   placed,
	})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	userID := u.ID
	if u.IsAdmin() {
		// Admin sees every order.
		userID = ""
	}

	var (
		out []order.Order
		err error
	)
	if userID == "" {
		out, err = s.orders.ListAllOrders(r.Context())
	} else {
		out, err = s.orders.ListOrders(r.Context(), userID)
	}
	if err != nil {
		httputil.InternalError(w, "failed to list orders")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"orders": out})
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status order.Status `json:"status"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	o, err := s.orders.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.NotFound(w, "order not found")
		return
	}
	if !o.Status.CanTransition(input.Status) {
		httputil.BadRequest(w, "invalid status transition")
		return
	}

	o.Status = input.Status
	updated, err := s.orders.UpdateOrder(r.Context(), o)
	if err != nil {
		httputil.InternalError(w, "failed to update order")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"order": updated})
}

// =============================================================================
// Payments
// =============================================================================

func (s *Server) handleInitPayment(w http.ResponseWriter, r *http.Request) {
	var input struct {
		OrderID       string  `json:"orderId"`
		Amount        float64 `json:"amount"`
		Currency      string  `json:"currency"`
		PaymentMethod string  `json:"paymentMethod"`
	}
	if !httputil.DecodeJSON(w, r, &input) {
		return
	}

	o, err := s.orders.GetOrder(r.Context(), input.OrderID)
	if err != nil || o.UserID != currentUser(r).ID {
		httputil.NotFound(w, "order not found")
		return
	}
	if input.Amount <= 0 {
		httputil.BadRequest(w, "amount must be positive")
		return
	}

	paymentID := uuid.NewString()
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"paymentId":   paymentID,
		"redirectUrl": "https://pay.example.com/session/" + paymentID,
	})
}
