package checkout

import (
	"fmt"

	"github.com/cardora/giftcard-market/pkg/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateSubmission checks the whole form and collects every field error
// before rejecting, so the client can surface all problems in one pass.
// A nil return means the submission is ready to dispatch.
func validateSubmission(req SubmitRequest, product *models.Product, session models.Session, cards []models.SavedCard) *ValidationError {
	fields := make(map[string]string)
	openAddCard := false

	if req.ProductID == "" {
		fields["product_id"] = "product is required"
	} else if product != nil && !product.IsActive {
		fields["product_id"] = "product is not available"
	}

	validateAmount(req.Amount, product, fields)

	if req.Quantity < 1 {
		fields["quantity"] = "quantity must be at least 1"
	}

	if req.RecipientEmail == "" {
		fields["recipient_email"] = "recipient email is required"
	} else if err := validate.Var(req.RecipientEmail, "email"); err != nil {
		fields["recipient_email"] = "recipient email is invalid"
	}

	if session.IsMerchant() {
		if req.RecipientName == "" {
			fields["recipient_name"] = "recipient name is required"
		}

		if len(cards) > 0 && req.CardID == "" {
			fields["card_id"] = "payment method is required"
			openAddCard = true
		} else if req.CardID != "" && !cardExists(cards, req.CardID) {
			fields["card_id"] = "unknown payment method"
		}
	}

	if len(fields) == 0 {
		return nil
	}

	return &ValidationError{Fields: fields, OpenAddCard: openAddCard}
}

func validateAmount(amount float64, product *models.Product, fields map[string]string) {
	if amount <= 0 {
		fields["amount"] = "amount must be greater than zero"
		return
	}
	if product == nil {
		return
	}

	switch product.DenominationType {
	case models.DenominationRange:
		// Boundaries are inclusive.
		if amount < product.MinAmount || amount > product.MaxAmount {
			fields["amount"] = fmt.Sprintf("amount must be between %g and %g", product.MinAmount, product.MaxAmount)
		}
	case models.DenominationFixed:
		for _, denom := range product.Denominations {
			if amount == denom {
				return
			}
		}
		fields["amount"] = "amount must match one of the available denominations"
	}
}

func cardExists(cards []models.SavedCard, cardID string) bool {
	for _, card := range cards {
		if card.CardID == cardID {
			return true
		}
	}
	return false
}
