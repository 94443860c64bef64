// Package backendtest is an in-process implementation of the backend REST
// surface the storefront client consumes. It exists so the client, the
// stores, and integration tests can run against real HTTP semantics
// without the hosted backend.
package backendtest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/internal/app/domain/user"
	"github.com/clovermart/storefront/internal/app/metrics"
	"github.com/clovermart/storefront/internal/app/storage"
	"github.com/clovermart/storefront/internal/app/storage/memory"
	"github.com/clovermart/storefront/internal/httputil"
	"github.com/clovermart/storefront/internal/middleware"
	"github.com/clovermart/storefront/pkg/logger"
)

type contextKey string

const userContextKey contextKey = "backendtest.user"

// Server implements the /api/v1 surface over in-memory storage.
type Server struct {
	users    storage.UserStore
	products storage.ProductStore
	carts    storage.CartStore
	orders   storage.OrderStore

	jwtSecret []byte
	log       *logger.Logger
	router    *mux.Router

	mu      sync.Mutex
	revoked map[string]struct{}
}

// Stores bundles the storage implementations the server runs on.
type Stores struct {
	Users    storage.UserStore
	Products storage.ProductStore
	Carts    storage.CartStore
	Orders   storage.OrderStore
}

// New creates a server backed by a fresh in-memory store.
func New(log *logger.Logger) *Server {
	store := memory.New()
	return NewWithStores(Stores{
		Users:    store,
		Products: store,
		Carts:    store,
		Orders:   store,
	}, log)
}

// NewWithStores creates a server over the given storage implementations.
func NewWithStores(st Stores, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewDefault("backendtest")
	}
	s := &Server{
		users:     st.Users,
		products:  st.Products,
		carts:     st.Carts,
		orders:    st.Orders,
		jwtSecret: []byte(uuid.NewString()),
		log:       log,
		revoked:   make(map[string]struct{}),
	}
	s.router = s.routes()
	return s
}

// Handler returns the server's HTTP handler with CORS, request logging and
// metrics instrumentation applied.
func (s *Server) Handler() http.Handler {
	h := metrics.InstrumentHandler(s.router)
	h = middleware.RequestLogging(s.log)(h)
	return middleware.NewCORS([]string{"*"}).Handler(h)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.Handle("/auth/logout", s.requireAuth(s.handleLogout)).Methods(http.MethodGet)
	api.Handle("/auth/me", s.requireAuth(s.handleMe)).Methods(http.MethodGet)

	api.HandleFunc("/product/all", s.handleListProducts).Methods(http.MethodGet)
	api.Handle("/product/add-product", s.requireAdmin(s.handleAddProduct)).Methods(http.MethodPost)
	api.HandleFunc("/product/{id}", s.handleGetProduct).Methods(http.MethodGet)
	api.Handle("/product/{id}", s.requireAdmin(s.handleUpdateProduct)).Methods(http.MethodPut)
	api.Handle("/product/{id}", s.requireAdmin(s.handleDeleteProduct)).Methods(http.MethodDelete)

	api.Handle("/cart/add", s.requireAuth(s.handleAddToCart)).Methods(http.MethodPost)
	api.Handle("/cart", s.requireAuth(s.handleGetCart)).Methods(http.MethodGet)
	api.Handle("/cart/{itemId}", s.requireAuth(s.handleRemoveCartItem)).Methods(http.MethodDelete)

	api.Handle("/order/create-order", s.requireAuth(s.handleCreateOrder)).Methods(http.MethodPost)
	api.Handle("/order/all", s.requireAuth(s.handleListOrders)).Methods(http.MethodGet)
	api.Handle("/order/{id}/status", s.requireAdmin(s.handleUpdateOrderStatus)).Methods(http.MethodPut)

	api.Handle("/payment/init", s.requireAuth(s.handleInitPayment)).Methods(http.MethodPost)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return r
}

// =============================================================================
// Seeding
// =============================================================================

// SeedUser registers an account directly in storage and returns it.
func (s *Server) SeedUser(name, email, password string, role user.Role) (user.User, error) {
	return s.users.CreateUser(context.Background(), storage.Account{
		User:         user.User{Name: name, Email: email, Role: role},
		PasswordHash: hashPassword(password),
	})
}

// SeedProduct inserts a catalog entry directly in storage and returns it.
func (s *Server) SeedProduct(p catalog.Product) (catalog.Product, error) {
	return s.products.CreateProduct(context.Background(), p)
}

// =============================================================================
// Auth plumbing
// =============================================================================

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *Server) issueToken(u user.User) (string, error) {
	claims := jwt.MapClaims{
		"sub": u.ID,
		"jti": uuid.NewString(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Server) parseToken(raw string) (userID, tokenID string, err error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)
	if sub == "" || jti == "" {
		return "", "", fmt.Errorf("incomplete claims")
	}

	s.mu.Lock()
	_, revoked := s.revoked[jti]
	s.mu.Unlock()
	if revoked {
		return "", "", fmt.Errorf("token revoked")
	}
	return sub, jti, nil
}

func (s *Server) revokeToken(tokenID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = struct{}{}
}

// authenticate resolves the bearer token to a user, or writes a 401.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (user.User, string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		httputil.Unauthorized(w, "missing bearer token")
		return user.User{}, "", false
	}
	userID, tokenID, err := s.parseToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		httputil.Unauthorized(w, "invalid or expired token")
		return user.User{}, "", false
	}
	u, err := s.users.GetUser(r.Context(), userID)
	if err != nil {
		httputil.Unauthorized(w, "unknown user")
		return user.User{}, "", false
	}
	return u, tokenID, true
}

func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, tokenID, ok := s.authenticate(w, r)
		if !ok {
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, u)
		ctx = context.WithValue(ctx, contextKey("tokenID"), tokenID)
		next(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin() {
			httputil.Forbidden(w, "admin privileges required")
			return
		}
		next(w, r)
	})
}

func currentUser(r *http.Request) user.User {
	u, _ := r.Context().Value(userContextKey).(user.User)
	return u
}

func currentTokenID(r *http.Request) string {
	id, _ := r.Context().Value(contextKey("tokenID")).(string)
	return id
}
