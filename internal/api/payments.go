package api

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/twillco/storefront/internal/checkout"
	"github.com/twillco/storefront/internal/events"
	"github.com/twillco/storefront/internal/payment"
	"github.com/twillco/storefront/internal/renderer"
	"github.com/twillco/storefront/pkg/catalog"
)

// ErrPriceMismatch is returned when submitted items do not match catalog prices
var ErrPriceMismatch = errors.New("order total does not match catalog prices")

// handleCreatePaymentIntent creates a payment intent and returns its client secret
func (s *Server) handleCreatePaymentIntent(c *gin.Context) {
	var req checkout.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isBodyTooLarge(err) {
			c.JSON(413, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	if int64(req.Amount) < s.opts.MinAmount {
		c.JSON(400, gin.H{"error": "Invalid amount"})
		return
	}

	if err := s.verifyItems(req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	intent, err := s.processor.CreateIntent(c.Request.Context(), payment.IntentRequest{
		Amount:       req.Amount,
		Currency:     s.opts.Currency,
		Customer:     req.Customer,
		ItemCount:    len(req.Items),
		ItemsSummary: itemsSummary(req.Items),
		Description:  payment.Description(len(req.Items)),
	})
	if err != nil {
		log.Printf("❌ Payment Intent Error: %v", err)
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	log.Printf("💳 Payment Intent created: %s", intent.ID)
	log.Printf("   Order: customer=%s email=%s items=%d total=%s",
		req.Customer.Name, req.Customer.Email, len(req.Items), catalog.FormatUSD(req.Amount))

	c.JSON(200, gin.H{
		"clientSecret": intent.ClientSecret,
	})
}

// verifyItems reprices submitted items from the catalog. Requests without
// items are accepted on the amount check alone.
func (s *Server) verifyItems(req checkout.OrderRequest) error {
	if len(req.Items) == 0 {
		return nil
	}

	var sum catalog.Cents
	for i, item := range req.Items {
		p, ok := s.cat.Product(item.Product)
		if !ok {
			return fmt.Errorf("items[%d]: unknown product '%s'", i, item.Product)
		}
		if item.Quantity < 1 || item.Quantity > catalog.MaxQuantity {
			return fmt.Errorf("items[%d]: quantity must be between 1 and %d", i, catalog.MaxQuantity)
		}
		if item.Price != p.Price || item.Total != p.Price.Times(item.Quantity) {
			return ErrPriceMismatch
		}
		sum += item.Total
	}

	if sum != req.Amount {
		return ErrPriceMismatch
	}
	return nil
}

func itemsSummary(items []checkout.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%dx %s %s %s", it.Quantity, it.Product, it.Size, it.Color))
	}
	summary := strings.Join(parts, "; ")
	// Stripe caps metadata values at 500 characters
	if len(summary) > 500 {
		summary = summary[:497] + "..."
	}
	return summary
}

// handleWebhook verifies and dispatches a processor event
func (s *Server) handleWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.String(400, "Webhook Error: %s", err.Error())
		return
	}

	ev, err := s.processor.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("⚠️  Webhook signature verification failed: %v", err)
		c.String(400, "Webhook Error: %s", err.Error())
		return
	}

	s.dispatcher.Dispatch(ev)

	c.JSON(200, gin.H{"received": true})
}

// handleOrderStatus returns the status of a payment intent
func (s *Server) handleOrderStatus(c *gin.Context) {
	intent, err := s.processor.GetIntent(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"status":   intent.Status,
		"amount":   intent.Amount,
		"customer": intent.Metadata,
	})
}

// handleOrderLabel renders a packing label for a payment intent
func (s *Server) handleOrderLabel(c *gin.Context) {
	id := c.Param("id")

	intent, err := s.processor.GetIntent(c.Request.Context(), id)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	img, err := renderer.RenderLabel(renderer.LabelData{
		OrderID:   intent.ID,
		Status:    intent.Status,
		Amount:    intent.Amount,
		Customer:  intent.Metadata[payment.MetaCustomerName],
		Email:     intent.Metadata[payment.MetaCustomerEmail],
		Address:   intent.Metadata[payment.MetaShippingAddress],
		ItemCount: intent.Metadata[payment.MetaItemCount],
		StatusURL: s.opts.PublicURL + "/order-status/" + intent.ID,
	})
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "image/png")
	c.Status(200)
	if err := renderer.EncodePNG(c.Writer, img); err != nil {
		log.Printf("❌ Failed to write label for %s: %v", id, err)
	}
}

// handleGetPayments returns the recent payment outcomes seen by webhook,
// without customer details
func (s *Server) handleGetPayments(c *gin.Context) {
	recent := events.RedactAll(s.feed.Recent())

	limit := len(recent)
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < limit {
			limit = n
		}
	}

	succeeded, failed, revenue := s.feed.Stats()
	c.JSON(200, gin.H{
		"payments":  recent[:limit],
		"succeeded": succeeded,
		"failed":    failed,
		"revenue":   revenue,
	})
}
