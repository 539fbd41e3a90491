package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/observability"
	"github.com/example/order-service/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:generate mockgen -source=httpapi.go -destination=httpapi_mock_test.go -package=httpapi

type OrderService interface {
	GetByIDWithStats(ctx context.Context, id int64) (*domain.Order, service.LookupStats, error)
	GetAll(ctx context.Context) ([]domain.Order, error)
	CreateWithStats(ctx context.Context, productID int64, email string) (*domain.Order, service.CreateStats, error)
}

type Server struct {
	service OrderService
	router  chi.Router
	logger  *zap.Logger
	metrics observability.Metrics
}

func New(svc OrderService, logger *zap.Logger, metrics observability.Metrics) *Server {
	s := &Server{
		service: svc,
		router:  chi.NewRouter(),
		logger:  logger,
		metrics: metrics,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(ServerTimingApp(s.metrics))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Get("/order", s.listOrders)
	s.router.Post("/order", s.createOrder)
	s.router.Get("/order/{id}", s.getOrder)
}

type createOrderRequest struct {
	ProductID int64  `json:"product_id"`
	Email     string `json:"email"`
}

type createOrderResponse struct {
	OrderID int64 `json:"order_id"`
}

type orderList struct {
	Orders []domain.Order `json:"orders"`
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "order id must be an integer", http.StatusBadRequest)
		return
	}

	order, st, err := s.service.GetByIDWithStats(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			http.Error(w, "no order with this id", http.StatusNotFound)
			return
		}
		http.Error(w, "service error", http.StatusInternalServerError)
		return
	}

	observability.AppendServerTiming(w, "cache", st.CacheMs, "")
	observability.AppendServerTiming(w, "db", st.DBMs, "")
	observability.AppendServerTiming(w, "source", 0, string(st.Source))
	w.Header().Set("X-Source", string(st.Source))
	observability.SetIfPos(w, "X-Cache-Time", st.CacheMs)
	observability.SetIfPos(w, "X-DB-Time", st.DBMs)

	writeJSON(w, order)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.service.GetAll(r.Context())
	if err != nil {
		http.Error(w, "service error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, orderList{Orders: orders})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var req createOrderRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		s.logger.Error("bad create order payload", zap.Error(err))
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := validateCreateRequest(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, st, err := s.service.CreateWithStats(r.Context(), req.ProductID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidOrder):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrDirectoryUnavailable):
			http.Error(w, "user directory unavailable", http.StatusBadGateway)
		default:
			http.Error(w, "service error", http.StatusInternalServerError)
		}
		return
	}

	observability.AppendServerTiming(w, "db_write", st.DBWriteMs, "")

	writeJSON(w, createOrderResponse{OrderID: order.OrderID})
}

func validateCreateRequest(req createOrderRequest) error {
	if req.ProductID <= 0 {
		return errors.New("product_id is required")
	}
	if req.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

func (s *Server) Handler() http.Handler { return s.router }
