package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillService records in-store sales. Bills do not move stock.
type BillService struct {
	billRepo    domain.BillRepository
	productRepo domain.ProductRepository
	cache       *cache.Cache
}

// NewBillService creates a new bill service
func NewBillService(billRepo domain.BillRepository, productRepo domain.ProductRepository, c *cache.Cache) *BillService {
	return &BillService{billRepo: billRepo, productRepo: productRepo, cache: c}
}

// Create prices every line from its variant and stores a PENDING bill
func (s *BillService) Create(ctx context.Context, actorID, workspaceID uuid.UUID, input domain.BillCreate) (*domain.Bill, error) {
	if len(input.Items) == 0 {
		return nil, domain.Validation("bill needs at least one item")
	}

	now := time.Now().UTC()
	bill := &domain.Bill{
		ID:           uuid.New(),
		WorkspaceID:  workspaceID,
		CreatedBy:    actorID,
		CustomerName: strings.TrimSpace(input.CustomerName),
		Status:       domain.BillPending,
		TotalAmount:  decimal.Zero,
		Items:        make([]domain.BillItem, 0, len(input.Items)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, in := range input.Items {
		item, err := s.priceLine(ctx, workspaceID, bill.ID, in)
		if err != nil {
			return nil, err
		}
		bill.Items = append(bill.Items, *item)
		bill.TotalAmount = bill.TotalAmount.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.WorkspaceDashboard(workspaceID))
	return bill, nil
}

// priceLine builds a bill line for a variant of workspaceID at its current price
func (s *BillService) priceLine(ctx context.Context, workspaceID, billID uuid.UUID, in domain.BillItemInput) (*domain.BillItem, error) {
	if in.Quantity < 1 {
		return nil, domain.Validation("quantity must be at least 1")
	}
	ref, err := s.productRepo.GetVariantRef(ctx, in.VariantID)
	if err != nil {
		return nil, err
	}
	if ref.WorkspaceID != workspaceID {
		return nil, domain.NotFound("variant")
	}

	variantID := ref.ID
	return &domain.BillItem{
		ID:        uuid.New(),
		BillID:    billID,
		VariantID: &variantID,
		Title:     ref.ProductName + " - " + ref.Title,
		Quantity:  in.Quantity,
		Price:     ref.Price,
	}, nil
}

// List lists the bills of a workspace
func (s *BillService) List(ctx context.Context, workspaceID uuid.UUID) ([]domain.Bill, error) {
	return s.billRepo.ListByWorkspace(ctx, workspaceID)
}

// ListByCreator lists the bills userID recorded. Staff may only list their own.
func (s *BillService) ListByCreator(ctx context.Context, actorID uuid.UUID, actorRole domain.Role, workspaceID, userID uuid.UUID) ([]domain.Bill, error) {
	if actorRole == domain.RoleStaff && actorID != userID {
		return nil, domain.Forbidden("staff can only list their own bills")
	}
	return s.billRepo.ListByCreator(ctx, workspaceID, userID)
}

// Get retrieves one bill
func (s *BillService) Get(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Bill, error) {
	return s.billRepo.GetByID(ctx, workspaceID, id)
}

// UpdateStatus settles or cancels a PENDING bill
func (s *BillService) UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, to domain.BillStatus) (*domain.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if !bill.Status.CanTransition(to) {
		return nil, domain.Conflict(fmt.Sprintf("cannot change bill status from %s to %s", bill.Status, to))
	}

	ok, err := s.billRepo.UpdateStatus(ctx, workspaceID, id, bill.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Conflict("bill was changed concurrently")
	}
	bill.Status = to
	bill.UpdatedAt = time.Now().UTC()

	s.cache.Invalidate(ctx, cache.WorkspaceDashboard(workspaceID))
	return bill, nil
}

// Delete removes a bill
func (s *BillService) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	if err := s.billRepo.Delete(ctx, workspaceID, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.WorkspaceDashboard(workspaceID))
	return nil
}

// Update changes the header of a PENDING bill
func (s *BillService) Update(ctx context.Context, workspaceID, id uuid.UUID, input domain.BillUpdate) (*domain.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if bill.Status != domain.BillPending {
		return nil, domain.Conflict("only pending bills can be edited")
	}
	if input.CustomerName == nil {
		return bill, nil
	}

	name := strings.TrimSpace(*input.CustomerName)
	ok, err := s.billRepo.UpdateCustomer(ctx, workspaceID, id, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Conflict("bill was changed concurrently")
	}
	bill.CustomerName = name
	bill.UpdatedAt = time.Now().UTC()

	s.cache.Invalidate(ctx, cache.WorkspaceDashboard(workspaceID))
	return bill, nil
}

// Items lists the lines of a bill
func (s *BillService) Items(ctx context.Context, workspaceID, id uuid.UUID) ([]domain.BillItem, error) {
	bill, err := s.billRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	return bill.Items, nil
}

// AddItem adds a variant line to a PENDING bill and returns the updated bill
func (s *BillService) AddItem(ctx context.Context, workspaceID, billID uuid.UUID, input domain.BillItemInput) (*domain.Bill, error) {
	item, err := s.priceLine(ctx, workspaceID, billID, input)
	if err != nil {
		return nil, err
	}
	if err := s.billRepo.AddItem(ctx, workspaceID, *item); err != nil {
		return nil, err
	}
	return s.reload(ctx, workspaceID, billID)
}

// UpdateItem sets the quantity of one line of a PENDING bill
func (s *BillService) UpdateItem(ctx context.Context, workspaceID, billID, itemID uuid.UUID, input domain.BillItemUpdate) (*domain.Bill, error) {
	if input.Quantity < 1 {
		return nil, domain.Validation("quantity must be at least 1")
	}
	if err := s.billRepo.UpdateItemQuantity(ctx, workspaceID, billID, itemID, input.Quantity); err != nil {
		return nil, err
	}
	return s.reload(ctx, workspaceID, billID)
}

// DeleteItem removes one line of a PENDING bill
func (s *BillService) DeleteItem(ctx context.Context, workspaceID, billID, itemID uuid.UUID) (*domain.Bill, error) {
	if err := s.billRepo.DeleteItem(ctx, workspaceID, billID, itemID); err != nil {
		return nil, err
	}
	return s.reload(ctx, workspaceID, billID)
}

func (s *BillService) reload(ctx context.Context, workspaceID, billID uuid.UUID) (*domain.Bill, error) {
	s.cache.Invalidate(ctx, cache.WorkspaceDashboard(workspaceID))
	return s.billRepo.GetByID(ctx, workspaceID, billID)
}
