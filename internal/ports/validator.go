package ports

import (
	"context"

	"github.com/Gunvolt24/partstore/internal/domain"
)

type OrderValidator interface {
	Validate(ctx context.Context, order *domain.OrderRequest) error
}
