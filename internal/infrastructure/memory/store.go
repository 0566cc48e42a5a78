// Package memory implementa los puertos de persistencia sobre mapas en
// memoria. Se usa en tests y en demos sin PostgreSQL. El mutex del Store es
// la unidad de serialización: cada transacción corre con el candado tomado,
// y un snapshot barato da semántica de rollback.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/minimarket-pos/internal/application/counting"
	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/application/purchasing"
	"github.com/jhoicas/minimarket-pos/internal/application/sales"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

var (
	_ ledger.TxRunner             = (*Store)(nil)
	_ sales.SaleTxRunner          = (*Store)(nil)
	_ purchasing.PurchaseTxRunner = (*Store)(nil)
	_ counting.CountTxRunner      = (*Store)(nil)
)

// Store guarda todo el estado en memoria. Los repositorios devueltos por los
// constructores New*Repository comparten el mismo Store.
type Store struct {
	mu sync.Mutex

	products   map[string]*entity.Product
	movements  []*entity.StockMovement
	sales      map[string]*entity.Sale
	saleItems  map[string][]*entity.SaleItem
	orders     map[string]*entity.PurchaseOrder
	orderItems map[string][]*entity.PurchaseOrderItem
	counts     map[string]*entity.InventoryCount
	countItems map[string]map[string]*entity.InventoryCountItem
	customers  map[string]*entity.Customer
	suppliers  map[string]*entity.Supplier
	signals    map[string]*entity.ReorderSignal
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]*entity.Product),
		sales:      make(map[string]*entity.Sale),
		saleItems:  make(map[string][]*entity.SaleItem),
		orders:     make(map[string]*entity.PurchaseOrder),
		orderItems: make(map[string][]*entity.PurchaseOrderItem),
		counts:     make(map[string]*entity.InventoryCount),
		countItems: make(map[string]map[string]*entity.InventoryCountItem),
		customers:  make(map[string]*entity.Customer),
		suppliers:  make(map[string]*entity.Supplier),
		signals:    make(map[string]*entity.ReorderSignal),
	}
}

// snapshot copia el estado a nivel de mapa. Los valores almacenados nunca se
// mutan en sitio (los repos guardan y devuelven copias), así que la copia
// superficial alcanza para restaurar.
type snapshot struct {
	products   map[string]*entity.Product
	movements  []*entity.StockMovement
	sales      map[string]*entity.Sale
	saleItems  map[string][]*entity.SaleItem
	orders     map[string]*entity.PurchaseOrder
	orderItems map[string][]*entity.PurchaseOrderItem
	counts     map[string]*entity.InventoryCount
	countItems map[string]map[string]*entity.InventoryCountItem
}

func (s *Store) take() snapshot {
	snap := snapshot{
		products:   make(map[string]*entity.Product, len(s.products)),
		movements:  append([]*entity.StockMovement(nil), s.movements...),
		sales:      make(map[string]*entity.Sale, len(s.sales)),
		saleItems:  make(map[string][]*entity.SaleItem, len(s.saleItems)),
		orders:     make(map[string]*entity.PurchaseOrder, len(s.orders)),
		orderItems: make(map[string][]*entity.PurchaseOrderItem, len(s.orderItems)),
		counts:     make(map[string]*entity.InventoryCount, len(s.counts)),
		countItems: make(map[string]map[string]*entity.InventoryCountItem, len(s.countItems)),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.sales {
		snap.sales[k] = v
	}
	for k, v := range s.saleItems {
		snap.saleItems[k] = append([]*entity.SaleItem(nil), v...)
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.orderItems {
		snap.orderItems[k] = append([]*entity.PurchaseOrderItem(nil), v...)
	}
	for k, v := range s.counts {
		snap.counts[k] = v
	}
	for k, v := range s.countItems {
		inner := make(map[string]*entity.InventoryCountItem, len(v))
		for pk, pv := range v {
			inner[pk] = pv
		}
		snap.countItems[k] = inner
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.movements = snap.movements
	s.sales = snap.sales
	s.saleItems = snap.saleItems
	s.orders = snap.orders
	s.orderItems = snap.orderItems
	s.counts = snap.counts
	s.countItems = snap.countItems
}

// inTx toma el candado, saca snapshot y ejecuta fn; si fn falla restaura.
func (s *Store) inTx(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.take()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Run implementa ledger.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.inTx(ctx, func() error {
		return fn(s.txMovements(), s.txProducts())
	})
}

// RunSale implementa sales.SaleTxRunner.
func (s *Store) RunSale(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return s.inTx(ctx, func() error {
		return fn(s.txMovements(), s.txProducts(), s.txSales())
	})
}

// RunPurchase implementa purchasing.PurchaseTxRunner.
func (s *Store) RunPurchase(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	poRepo repository.PurchaseOrderRepository,
) error) error {
	return s.inTx(ctx, func() error {
		return fn(s.txMovements(), s.txProducts(), s.txPurchaseOrders())
	})
}

// RunCount implementa counting.CountTxRunner.
func (s *Store) RunCount(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	countRepo repository.InventoryCountRepository,
) error) error {
	return s.inTx(ctx, func() error {
		return fn(s.txMovements(), s.txProducts(), s.txCounts())
	})
}

func (s *Store) txProducts() *ProductRepo             { return &ProductRepo{s: s, tx: true} }
func (s *Store) txMovements() *StockMovementRepo      { return &StockMovementRepo{s: s, tx: true} }
func (s *Store) txSales() *SaleRepo                   { return &SaleRepo{s: s, tx: true} }
func (s *Store) txPurchaseOrders() *PurchaseOrderRepo { return &PurchaseOrderRepo{s: s, tx: true} }
func (s *Store) txCounts() *InventoryCountRepo        { return &InventoryCountRepo{s: s, tx: true} }
