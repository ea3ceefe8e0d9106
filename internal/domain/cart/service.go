// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service handles cart business logic for session and account owners
type Service struct {
	store     Store
	schedule  *PickupSchedule
	publisher CheckoutPublisher
	logger    *logrus.Logger
	now       func() time.Time
}

// NewService creates a new cart service
func NewService(store Store, schedule *PickupSchedule, publisher CheckoutPublisher, logger *logrus.Logger) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		store:     store,
		schedule:  schedule,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// UpdateQuantityRequest represents update cart item request
type UpdateQuantityRequest struct {
	VariantKey string `json:"variant_key" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// CheckoutRequest represents checkout request
type CheckoutRequest struct {
	PickupOption PickupOption `json:"pickup_option"`
	PickupSlot   string       `json:"pickup_slot"`
}

// CheckoutResult is returned once a cart has been checked out
type CheckoutResult struct {
	CheckoutID string       `json:"checkout_id"`
	Items      []LineItem   `json:"items"`
	Totals     Totals       `json:"totals"`
	Pickup     PickupChoice `json:"pickup"`
}

// GetCart retrieves the owner's cart
func (s *Service) GetCart(ctx context.Context, owner string) (*CartResponse, error) {
	snapshot, err := s.store.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return buildResponse(snapshot), nil
}

// AddItem adds a configuration to the owner's cart.
// Requests without a usable item leave the cart unchanged.
func (s *Service) AddItem(ctx context.Context, owner string, req AddItemRequest) (*CartResponse, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		if _, ok := c.AddItem(req); !ok {
			s.logger.WithField("owner", owner).Debug("Ignored add to cart without a usable item")
		}
		return nil
	})
}

// UpdateItemQuantity sets a line's quantity; zero or less removes it
func (s *Service) UpdateItemQuantity(ctx context.Context, owner, variantKey string, quantity int) (*CartResponse, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		c.UpdateItemQuantity(variantKey, quantity)
		return nil
	})
}

// RemoveItem removes a line from the owner's cart
func (s *Service) RemoveItem(ctx context.Context, owner, variantKey string) (*CartResponse, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		c.RemoveItem(variantKey)
		return nil
	})
}

// EditItem takes a line out of the cart and returns its configuration for re-customisation
func (s *Service) EditItem(ctx context.Context, owner, variantKey string) (*AddItemRequest, *CartResponse, error) {
	var edit AddItemRequest
	resp, err := s.mutate(ctx, owner, func(c *Cart) error {
		req, ok := c.EditItem(variantKey)
		if !ok {
			return ErrLineNotFound
		}
		edit = req
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &edit, resp, nil
}

// ClearCart removes all items from the owner's cart
func (s *Service) ClearCart(ctx context.Context, owner string) error {
	if err := s.store.Delete(ctx, owner); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// GetCartItemCount returns the number of units in the owner's cart
func (s *Service) GetCartItemCount(ctx context.Context, owner string) (int, error) {
	resp, err := s.GetCart(ctx, owner)
	if err != nil {
		return 0, err
	}
	return resp.Totals.TotalItems, nil
}

// MergeCarts folds the guest cart into the account cart when a user signs in
func (s *Service) MergeCarts(ctx context.Context, guest, account string) (*CartResponse, error) {
	if guest == "" || guest == account {
		return s.GetCart(ctx, account)
	}

	guestSnapshot, err := s.store.Load(ctx, guest)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve guest cart: %w", err)
	}
	if len(guestSnapshot.Items) == 0 {
		return s.GetCart(ctx, account)
	}

	resp, err := s.mutate(ctx, account, func(c *Cart) error {
		for _, line := range guestSnapshot.Items {
			c.AddItem(requestFromLine(line))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.settle(ctx, guest, guestSnapshot.Items); err != nil {
		s.logger.WithError(err).WithField("owner", guest).Warn("Failed to clear guest cart after merge")
	}

	return resp, nil
}

// PickupSlots lists today's pickup slots
func (s *Service) PickupSlots() []SlotAvailability {
	return s.schedule.Slots(s.now())
}

// Checkout validates the owner's cart and pickup choice, publishes the checked-out cart
// and empties it.
func (s *Service) Checkout(ctx context.Context, owner string, req CheckoutRequest) (*CheckoutResult, error) {
	snapshot, err := s.store.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	c := FromItems(snapshot.Items)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	now := s.now()
	pickup, err := s.schedule.Resolve(req.PickupOption, req.PickupSlot, now)
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		CheckoutID: uuid.NewString(),
		Items:      c.Items(),
		Totals:     c.Totals(),
		Pickup:     pickup,
	}

	event := CheckedOutEvent{
		CheckoutID: result.CheckoutID,
		Owner:      owner,
		Items:      result.Items,
		Totals:     result.Totals,
		Pickup:     pickup,
		OccurredAt: now.UTC(),
	}
	if err := s.publisher.PublishCartCheckedOut(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to publish checkout: %w", err)
	}

	if err := s.settle(ctx, owner, snapshot.Items); err != nil {
		s.logger.WithError(err).WithField("owner", owner).Warn("Failed to clear cart after checkout")
	}

	s.logger.WithFields(logrus.Fields{
		"owner":       owner,
		"checkout_id": result.CheckoutID,
		"total_items": result.Totals.TotalItems,
		"subtotal":    result.Totals.Subtotal.String(),
	}).Info("Cart checked out")

	return result, nil
}

func (s *Service) mutate(ctx context.Context, owner string, fn func(*Cart) error) (*CartResponse, error) {
	snapshot, err := s.store.Update(ctx, owner, func(snapshot *Snapshot) error {
		c := FromItems(snapshot.Items)
		if err := fn(c); err != nil {
			return err
		}
		snapshot.Items = c.Items()
		snapshot.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildResponse(snapshot), nil
}

// settle takes the given lines out of the owner's cart in one store update.
// Units added after the lines were read stay in the cart.
func (s *Service) settle(ctx context.Context, owner string, taken []LineItem) error {
	_, err := s.store.Update(ctx, owner, func(snapshot *Snapshot) error {
		c := FromItems(snapshot.Items)
		for _, line := range taken {
			current, ok := c.Line(line.VariantKey)
			if !ok {
				continue
			}
			c.UpdateItemQuantity(line.VariantKey, current.Quantity-line.Quantity)
		}
		snapshot.Items = c.Items()
		snapshot.UpdatedAt = s.now().UTC()
		return nil
	})
	return err
}

func buildResponse(snapshot *Snapshot) *CartResponse {
	c := FromItems(snapshot.Items)
	return &CartResponse{
		Owner:     snapshot.Owner,
		Items:     c.Items(),
		Totals:    c.Totals(),
		CreatedAt: snapshot.CreatedAt,
		UpdatedAt: snapshot.UpdatedAt,
	}
}

func requestFromLine(line LineItem) AddItemRequest {
	price := line.BasePrice
	extras := make([]ExtraInput, 0, len(line.Extras))
	for _, extra := range line.Extras {
		extraPrice := extra.Price
		extras = append(extras, ExtraInput{Key: extra.Key, Label: extra.Label, Price: &extraPrice})
	}
	return AddItemRequest{
		Item: &Item{
			ID:         line.ItemID,
			Title:      line.Title,
			Price:      &price,
			Image:      line.Image,
			Restaurant: line.Restaurant,
		},
		Extras:   extras,
		Notes:    line.Notes,
		Quantity: line.Quantity,
	}
}
