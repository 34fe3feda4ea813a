// internal/service/inventory/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"vertex/internal/pkg/logger"
	"vertex/internal/pkg/tracing"
	"vertex/internal/service/inventory/application"
	"vertex/internal/service/inventory/domain"
)

// InventoryHandler 封装库存服务的 HTTP 处理器。
type InventoryHandler struct {
	service *application.InventoryService
}

func NewInventoryHandler(service *application.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/inventory", h.traced(h.listInventory))
	mux.HandleFunc("GET /api/inventory/{id}", h.traced(h.getInventoryByID))
	mux.HandleFunc("GET /api/inventory/product/{productId}", h.traced(h.getInventoryByProduct))
	mux.HandleFunc("GET /api/inventory/check/{productId}/{quantity}", h.traced(h.checkAvailability))
	mux.HandleFunc("GET /api/inventory/reserve/{productId}/{quantity}", h.traced(h.reserveStock))
	mux.HandleFunc("POST /api/inventory/release/{productId}/{quantity}", h.traced(h.releaseStock))
	mux.HandleFunc("POST /api/inventory/confirm/{productId}/{quantity}", h.traced(h.confirmReservation))
	mux.HandleFunc("POST /api/inventory/restock/{productId}", h.traced(h.restockInventory))
	mux.HandleFunc("POST /api/inventory", h.traced(h.createInventory))
	mux.HandleFunc("PUT /api/inventory/{id}", h.traced(h.updateInventory))
	mux.HandleFunc("DELETE /api/inventory/{id}", h.traced(h.deleteInventory))
}

// traced 提取上游追踪上下文并把 trace_id 注入请求级日志。
func (h *InventoryHandler) traced(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		if traceID := tracing.GetTraceIDFromContext(ctx); traceID != "" {
			ctx = logger.WithTraceID(ctx, traceID)
		}
		next(w, r.WithContext(ctx))
	}
}

// stockResponse 是台账记录的对外表示。
type stockResponse struct {
	ID                uint64    `json:"id"`
	ProductID         uint64    `json:"productId"`
	Quantity          int       `json:"quantity"`
	ReservedQuantity  int       `json:"reservedQuantity"`
	AvailableQuantity int       `json:"availableQuantity"`
	WarehouseLocation string    `json:"warehouseLocation,omitempty"`
	ReorderLevel      int       `json:"reorderLevel"`
	LastRestocked     time.Time `json:"lastRestocked,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toStockResponse(r *domain.StockRecord) stockResponse {
	return stockResponse{
		ID:                r.ID,
		ProductID:         r.ProductID,
		Quantity:          r.Quantity,
		ReservedQuantity:  r.Reserved,
		AvailableQuantity: r.Available(),
		WarehouseLocation: r.WarehouseLocation,
		ReorderLevel:      r.ReorderLevel,
		LastRestocked:     r.LastRestocked,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

type createStockRequest struct {
	ProductID         uint64 `json:"productId"`
	Quantity          int    `json:"quantity"`
	WarehouseLocation string `json:"warehouseLocation"`
	ReorderLevel      int    `json:"reorderLevel"`
}

type updateStockRequest struct {
	Quantity          int    `json:"quantity"`
	WarehouseLocation string `json:"warehouseLocation"`
	ReorderLevel      int    `json:"reorderLevel"`
}

func (h *InventoryHandler) listInventory(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.GetAllInventories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	responses := make([]stockResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toStockResponse(record))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *InventoryHandler) getInventoryByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	record, err := h.service.GetInventoryByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStockResponse(record))
}

func (h *InventoryHandler) getInventoryByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUint(r, "productId")
	if err != nil {
		http.Error(w, "invalid productId", http.StatusBadRequest)
		return
	}
	record, err := h.service.GetInventoryByProductID(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStockResponse(record))
}

func (h *InventoryHandler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	productID, qty, err := pathProductQty(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	available, err := h.service.CheckAvailability(r.Context(), productID, qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, available)
}

func (h *InventoryHandler) reserveStock(w http.ResponseWriter, r *http.Request) {
	productID, qty, err := pathProductQty(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reserved, err := h.service.ReserveStock(r.Context(), productID, qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reserved)
}

func (h *InventoryHandler) releaseStock(w http.ResponseWriter, r *http.Request) {
	productID, qty, err := pathProductQty(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	released, err := h.service.ReleaseStock(r.Context(), productID, qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, released)
}

func (h *InventoryHandler) confirmReservation(w http.ResponseWriter, r *http.Request) {
	productID, qty, err := pathProductQty(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	confirmed, err := h.service.ConfirmReservation(r.Context(), productID, qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmed)
}

func (h *InventoryHandler) restockInventory(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUint(r, "productId")
	if err != nil {
		http.Error(w, "invalid productId", http.StatusBadRequest)
		return
	}
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}
	record, err := h.service.RestockInventory(r.Context(), productID, qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStockResponse(record))
}

func (h *InventoryHandler) createInventory(w http.ResponseWriter, r *http.Request) {
	var req createStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	record := domain.NewStockRecord(req.ProductID, req.Quantity, req.WarehouseLocation, req.ReorderLevel)
	created, err := h.service.CreateInventory(r.Context(), record)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStockResponse(created))
}

func (h *InventoryHandler) updateInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req updateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	record, err := h.service.UpdateInventory(r.Context(), id, application.UpdateStockInput{
		Quantity:          req.Quantity,
		WarehouseLocation: req.WarehouseLocation,
		ReorderLevel:      req.ReorderLevel,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStockResponse(record))
}

func (h *InventoryHandler) deleteInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteInventory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathUint(r *http.Request, name string) (uint64, error) {
	return strconv.ParseUint(r.PathValue(name), 10, 64)
}

func pathProductQty(r *http.Request) (uint64, int, error) {
	productID, err := pathUint(r, "productId")
	if err != nil {
		return 0, 0, errors.New("invalid productId")
	}
	qty, err := strconv.Atoi(r.PathValue("quantity"))
	if err != nil {
		return 0, 0, errors.New("invalid quantity")
	}
	return productID, qty, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
