package payment

import (
	"fmt"
	"strings"

	"pizzeria-system/internal/logger"
	"pizzeria-system/internal/models"
)

// Payment method names understood by the resolver.
const (
	MethodPix  = "PIX"
	MethodCard = "CARTAO"
	MethodCash = "DINHEIRO"
)

// Processor performs the side effect of charging an order's final
// total via a specific method. Processors are stateless.
type Processor interface {
	Pay(order *models.Order)
}

// PixProcessor charges via PIX
type PixProcessor struct {
	logger *logger.Logger
}

func (p *PixProcessor) Pay(order *models.Order) {
	p.logger.Info("payment_processed",
		fmt.Sprintf("Charging %.2f via PIX", order.TotalFinal()), "",
		map[string]interface{}{
			"order_id": order.ID(),
			"method":   MethodPix,
			"amount":   order.TotalFinal(),
		})
}

// CardProcessor charges via card
type CardProcessor struct {
	logger *logger.Logger
}

func (p *CardProcessor) Pay(order *models.Order) {
	p.logger.Info("payment_processed",
		fmt.Sprintf("Charging %.2f via card", order.TotalFinal()), "",
		map[string]interface{}{
			"order_id": order.ID(),
			"method":   MethodCard,
			"amount":   order.TotalFinal(),
		})
}

// CashProcessor charges in cash
type CashProcessor struct {
	logger *logger.Logger
}

func (p *CashProcessor) Pay(order *models.Order) {
	p.logger.Info("payment_processed",
		fmt.Sprintf("Charging %.2f in cash", order.TotalFinal()), "",
		map[string]interface{}{
			"order_id": order.ID(),
			"method":   MethodCash,
			"amount":   order.TotalFinal(),
		})
}

// Resolve selects a processor by method name, case-insensitively.
// Anything other than PIX or CARTAO, including unrecognized names,
// resolves to the cash processor; unknown methods are not an error.
func Resolve(method string, log *logger.Logger) Processor {
	switch strings.ToUpper(method) {
	case MethodPix:
		return &PixProcessor{logger: log}
	case MethodCard:
		return &CardProcessor{logger: log}
	default:
		return &CashProcessor{logger: log}
	}
}
