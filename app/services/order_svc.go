package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"gorm.io/gorm"
)

type TransitionInput struct {
	OrderID string
	Status  models.OrderStatus
	Actor   string
	// StoreID scopes an operator to one store. Orders of other stores are
	// reported as not found.
	StoreID string
}

type TransitionResult struct {
	OrderID   string             `json:"order_id"`
	Previous  models.OrderStatus `json:"previous"`
	Status    models.OrderStatus `json:"status"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// TotalMismatch is an order whose stored total disagrees with its items.
type TotalMismatch struct {
	OrderID  string `json:"order_id"`
	Stored   string `json:"stored"`
	Expected string `json:"expected"`
}

type OrderService struct {
	db         *gorm.DB
	orderRepo  repositories.OrderRepository
	statusRepo repositories.OrderStatusRepository
}

func NewOrderService(db *gorm.DB, orderRepo repositories.OrderRepository, statusRepo repositories.OrderStatusRepository) *OrderService {
	return &OrderService{db: db, orderRepo: orderRepo, statusRepo: statusRepo}
}

// Transition moves an order to a new status and records who did it.
// Delivered and canceled orders accept no further changes.
func (s *OrderService) Transition(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	if !in.Status.Valid() {
		return nil, newError(CodeInvalidTransition, "unknown status %q", in.Status)
	}

	var result *TransitionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.LockByID(ctx, tx, in.OrderID)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if order == nil || (in.StoreID != "" && order.StoreID != in.StoreID) {
			return newError(CodeOrderNotFound, "order %s not found", in.OrderID)
		}
		if order.Status.IsTerminal() {
			return newError(CodeOrderTerminal, "order is already %s", order.Status)
		}
		if !order.Status.CanTransitionTo(in.Status) {
			return newError(CodeInvalidTransition, "cannot move order from %s to %s", order.Status, in.Status)
		}

		now := time.Now()
		if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, in.Status, now); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		entry := &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   in.Status,
			Actor:      in.Actor,
			CreatedAt:  now,
		}
		if err := s.statusRepo.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("record transition: %w", err)
		}

		result = &TransitionResult{
			OrderID:   order.ID,
			Previous:  order.Status,
			Status:    in.Status,
			UpdatedAt: now,
		}
		return nil
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		if repositories.IsLockConflict(err) {
			return nil, conflict(CodeConflict, err, "order is being updated, please retry")
		}
		log.Printf("OrderService.Transition: order %s to %s: %v", in.OrderID, in.Status, err)
		return nil, internal(err, "failed to update order")
	}

	log.Printf("OrderService.Transition: order %s %s -> %s by %s", result.OrderID, result.Previous, result.Status, in.Actor)
	return result, nil
}

// GetOrder returns an order of the given user. An empty userID skips the
// ownership check.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, internal(err, "failed to load order")
	}
	if order == nil || (userID != "" && order.UserID != userID) {
		return nil, newError(CodeOrderNotFound, "order %s not found", orderID)
	}
	return order, nil
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orderRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, internal(err, "failed to list orders")
	}
	return orders, nil
}

func (s *OrderService) ListOrdersForStore(ctx context.Context, storeID string, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, newError(CodeInvalidInput, "unknown status %q", status)
	}
	orders, err := s.orderRepo.FindByStoreID(ctx, storeID, status)
	if err != nil {
		return nil, internal(err, "failed to list orders")
	}
	return orders, nil
}

func (s *OrderService) History(ctx context.Context, orderID, storeID string) ([]models.OrderStatusHistory, error) {
	order, err := s.GetOrder(ctx, orderID, "")
	if err != nil {
		return nil, err
	}
	if storeID != "" && order.StoreID != storeID {
		return nil, newError(CodeOrderNotFound, "order %s not found", orderID)
	}
	history, err := s.statusRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, internal(err, "failed to load order history")
	}
	return history, nil
}

// VerifyTotals scans every order and reports those whose stored total is
// not the sum of their items plus fee minus discount.
func (s *OrderService) VerifyTotals(ctx context.Context) ([]TotalMismatch, int, error) {
	var mismatches []TotalMismatch
	checked := 0
	err := s.orderRepo.FindInBatches(ctx, 200, func(orders []models.Order) error {
		for i := range orders {
			checked++
			expected := orders[i].ExpectedTotal()
			if !expected.Equal(orders[i].TotalAmount) {
				mismatches = append(mismatches, TotalMismatch{
					OrderID:  orders[i].ID,
					Stored:   orders[i].TotalAmount.StringFixed(2),
					Expected: expected.StringFixed(2),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, checked, internal(err, "failed to scan orders")
	}
	return mismatches, checked, nil
}
