package memory

import (
	"sort"
	"time"

	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

var (
	_ repository.ProductRepository        = (*ProductRepo)(nil)
	_ repository.StockMovementRepository  = (*StockMovementRepo)(nil)
	_ repository.SaleRepository           = (*SaleRepo)(nil)
	_ repository.PurchaseOrderRepository  = (*PurchaseOrderRepo)(nil)
	_ repository.InventoryCountRepository = (*InventoryCountRepo)(nil)
	_ repository.CustomerRepository       = (*CustomerRepo)(nil)
	_ repository.SupplierRepository       = (*SupplierRepo)(nil)
	_ repository.ReorderSignalRepository  = (*ReorderSignalRepo)(nil)
)

// lockUnless toma el candado salvo que el caller sea una tx (que ya lo tiene).
func (s *Store) lockUnless(tx bool) func() {
	if tx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	s  *Store
	tx bool
}

func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(p *entity.Product) error {
	defer r.s.lockUnless(r.tx)()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.s.products {
		if existing.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	defer r.s.lockUnless(r.tx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetByCode(code string) (*entity.Product, error) {
	defer r.s.lockUnless(r.tx)()
	for _, p := range r.s.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// GetForUpdate en memoria equivale a GetByID: el mutex del Store ya
// serializa la transacción completa.
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *ProductRepo) Update(p *entity.Product) error {
	defer r.s.lockUnless(r.tx)()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) UpdateStock(productID string, stock int64) error {
	defer r.s.lockUnless(r.tx)()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *p
	cp.CurrentStock = stock
	cp.UpdatedAt = time.Now()
	r.s.products[productID] = &cp
	return nil
}

func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	defer r.s.lockUnless(r.tx)()
	list := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return paginate(list, limit, offset), nil
}

func (r *ProductRepo) ListBelowReorderPoint() ([]*entity.Product, error) {
	defer r.s.lockUnless(r.tx)()
	var list []*entity.Product
	for _, p := range r.s.products {
		if p.IsActive && p.CurrentStock <= p.ReorderPoint {
			cp := *p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

// StockMovementRepo implementación en memoria del libro de movimientos.
type StockMovementRepo struct {
	s  *Store
	tx bool
}

func NewStockMovementRepository(s *Store) *StockMovementRepo { return &StockMovementRepo{s: s} }

func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	defer r.s.lockUnless(r.tx)()
	for _, existing := range r.s.movements {
		if existing.ProductID == m.ProductID && existing.Sequence == m.Sequence {
			return domain.ErrConcurrencyConflict
		}
	}
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	defer r.s.lockUnless(r.tx)()
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *StockMovementRepo) LastSequence(productID string) (int64, error) {
	defer r.s.lockUnless(r.tx)()
	var last int64
	for _, m := range r.s.movements {
		if m.ProductID == productID && m.Sequence > last {
			last = m.Sequence
		}
	}
	return last, nil
}

func (r *StockMovementRepo) ListByProductAsc(productID string) ([]*entity.StockMovement, error) {
	defer r.s.lockUnless(r.tx)()
	var list []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			cp := *m
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Sequence < list[j].Sequence })
	return list, nil
}

func (r *StockMovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	defer r.s.lockUnless(r.tx)()
	var list []*entity.StockMovement
	for _, m := range r.s.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.From != nil && m.MovementDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.MovementDate.After(*filter.To) {
			continue
		}
		cp := *m
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].MovementDate.Equal(list[j].MovementDate) {
			return list[i].MovementDate.After(list[j].MovementDate)
		}
		return list[i].Sequence > list[j].Sequence
	})
	return paginate(list, filter.Limit, filter.Offset), nil
}

// SaleRepo implementación en memoria de SaleRepository.
type SaleRepo struct {
	s  *Store
	tx bool
}

func NewSaleRepository(s *Store) *SaleRepo { return &SaleRepo{s: s} }

func (r *SaleRepo) Create(sale *entity.Sale) error {
	defer r.s.lockUnless(r.tx)()
	if _, ok := r.s.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *sale
	cp.Items = nil
	r.s.sales[sale.ID] = &cp
	return nil
}

func (r *SaleRepo) CreateItem(it *entity.SaleItem) error {
	defer r.s.lockUnless(r.tx)()
	cp := *it
	r.s.saleItems[it.SaleID] = append(r.s.saleItems[it.SaleID], &cp)
	return nil
}

func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	defer r.s.lockUnless(r.tx)()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *sale
	return &cp, nil
}

func (r *SaleRepo) GetItems(saleID string) ([]*entity.SaleItem, error) {
	defer r.s.lockUnless(r.tx)()
	items := r.s.saleItems[saleID]
	list := make([]*entity.SaleItem, 0, len(items))
	for _, it := range items {
		cp := *it
		list = append(list, &cp)
	}
	return list, nil
}

func (r *SaleRepo) TransitionStatus(id, from, to string, updatedAt time.Time) error {
	defer r.s.lockUnless(r.tx)()
	sale, ok := r.s.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	if sale.Status != from {
		return domain.ErrConcurrencyConflict
	}
	cp := *sale
	cp.Status = to
	cp.UpdatedAt = updatedAt
	r.s.sales[id] = &cp
	return nil
}

func (r *SaleRepo) List(filter repository.SaleFilter) ([]*entity.Sale, error) {
	defer r.s.lockUnless(r.tx)()
	var list []*entity.Sale
	for _, sale := range r.s.sales {
		if filter.CustomerID != "" && sale.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && sale.Status != filter.Status {
			continue
		}
		if filter.From != nil && sale.SaleDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && sale.SaleDate.After(*filter.To) {
			continue
		}
		cp := *sale
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SaleDate.After(list[j].SaleDate) })
	return paginate(list, filter.Limit, filter.Offset), nil
}

// PurchaseOrderRepo implementación en memoria de PurchaseOrderRepository.
type PurchaseOrderRepo struct {
	s  *Store
	tx bool
}

func NewPurchaseOrderRepository(s *Store) *PurchaseOrderRepo { return &PurchaseOrderRepo{s: s} }

func (r *PurchaseOrderRepo) Create(po *entity.PurchaseOrder) error {
	defer r.s.lockUnless(r.tx)()
	if _, ok := r.s.orders[po.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *po
	cp.Items = nil
	r.s.orders[po.ID] = &cp
	return nil
}

func (r *PurchaseOrderRepo) CreateItem(it *entity.PurchaseOrderItem) error {
	defer r.s.lockUnless(r.tx)()
	cp := *it
	r.s.orderItems[it.PurchaseOrderID] = append(r.s.orderItems[it.PurchaseOrderID], &cp)
	return nil
}

func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	defer r.s.lockUnless(r.tx)()
	po, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *po
	return &cp, nil
}

func (r *PurchaseOrderRepo) GetItems(orderID string) ([]*entity.PurchaseOrderItem, error) {
	defer r.s.lockUnless(r.tx)()
	items := r.s.orderItems[orderID]
	list := make([]*entity.PurchaseOrderItem, 0, len(items))
	for _, it := range items {
		cp := *it
		list = append(list, &cp)
	}
	return list, nil
}

func (r *PurchaseOrderRepo) Update(po *entity.PurchaseOrder) error {
	defer r.s.lockUnless(r.tx)()
	if _, ok := r.s.orders[po.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *po
	cp.Items = nil
	r.s.orders[po.ID] = &cp
	return nil
}

func (r *PurchaseOrderRepo) TransitionStatus(id, from, to string, updatedAt time.Time) error {
	defer r.s.lockUnless(r.tx)()
	po, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if po.Status != from {
		return domain.ErrConcurrencyConflict
	}
	cp := *po
	cp.Status = to
	cp.UpdatedAt = updatedAt
	r.s.orders[id] = &cp
	return nil
}

func (r *PurchaseOrderRepo) UpdateItemReceived(itemID string, quantityReceived int64) error {
	defer r.s.lockUnless(r.tx)()
	for orderID, items := range r.s.orderItems {
		for i, it := range items {
			if it.ID == itemID {
				cp := *it
				cp.QuantityReceived = quantityReceived
				updated := append([]*entity.PurchaseOrderItem(nil), items...)
				updated[i] = &cp
				r.s.orderItems[orderID] = updated
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (r *PurchaseOrderRepo) List(status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	defer r.s.lockUnless(r.tx)()
	var list []*entity.PurchaseOrder
	for _, po := range r.s.orders {
		if status != "" && po.Status != status {
			continue
		}
		cp := *po
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].OrderDate.After(list[j].OrderDate) })
	return paginate(list, limit, offset), nil
}

// InventoryCountRepo implementación en memoria de InventoryCountRepository.
type InventoryCountRepo struct {
	s  *Store
	tx bool
}

func NewInventoryCountRepository(s *Store) *InventoryCountRepo { return &InventoryCountRepo{s: s} }

func (r *InventoryCountRepo) Create(c *entity.InventoryCount) error {
	defer r.s.lockUnless(r.tx)()
	if _, ok := r.s.counts[c.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *c
	cp.Items = nil
	r.s.counts[c.ID] = &cp
	return nil
}

func (r *InventoryCountRepo) GetByID(id string) (*entity.InventoryCount, error) {
	defer r.s.lockUnless(r.tx)()
	c, ok := r.s.counts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *InventoryCountRepo) Update(c *entity.InventoryCount) error {
	defer r.s.lockUnless(r.tx)()
	if _, ok := r.s.counts[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	cp.Items = nil
	r.s.counts[c.ID] = &cp
	return nil
}

func (r *InventoryCountRepo) TransitionStatus(id, from, to string, updatedAt time.Time) error {
	defer r.s.lockUnless(r.tx)()
	c, ok := r.s.counts[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.Status != from {
		return domain.ErrConcurrencyConflict
	}
	cp := *c
	cp.Status = to
	cp.UpdatedAt = updatedAt
	r.s.counts[id] = &cp
	return nil
}

func (r *InventoryCountRepo) UpsertItem(it *entity.InventoryCountItem) error {
	defer r.s.lockUnless(r.tx)()
	inner, ok := r.s.countItems[it.CountID]
	if !ok {
		inner = make(map[string]*entity.InventoryCountItem)
	} else {
		copied := make(map[string]*entity.InventoryCountItem, len(inner))
		for k, v := range inner {
			copied[k] = v
		}
		inner = copied
	}
	cp := *it
	inner[it.ProductID] = &cp
	r.s.countItems[it.CountID] = inner
	return nil
}

func (r *InventoryCountRepo) GetItems(countID string) ([]*entity.InventoryCountItem, error) {
	defer r.s.lockUnless(r.tx)()
	inner := r.s.countItems[countID]
	list := make([]*entity.InventoryCountItem, 0, len(inner))
	for _, it := range inner {
		cp := *it
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

func (r *InventoryCountRepo) List(status string, limit, offset int) ([]*entity.InventoryCount, error) {
	defer r.s.lockUnless(r.tx)()
	var list []*entity.InventoryCount
	for _, c := range r.s.counts {
		if status != "" && c.Status != status {
			continue
		}
		cp := *c
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ScheduledDate.After(list[j].ScheduledDate) })
	return paginate(list, limit, offset), nil
}

// CustomerRepo implementación en memoria de CustomerRepository.
type CustomerRepo struct {
	s  *Store
	tx bool
}

func NewCustomerRepository(s *Store) *CustomerRepo { return &CustomerRepo{s: s} }

func (r *CustomerRepo) Create(c *entity.Customer) error {
	defer r.s.lockUnless(r.tx)()
	if _, ok := r.s.customers[c.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.s.customers {
		if existing.DocumentNumber == c.DocumentNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	defer r.s.lockUnless(r.tx)()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CustomerRepo) GetByDocument(documentNumber string) (*entity.Customer, error) {
	defer r.s.lockUnless(r.tx)()
	for _, c := range r.s.customers {
		if c.DocumentNumber == documentNumber {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	defer r.s.lockUnless(r.tx)()
	list := make([]*entity.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		cp := *c
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].DocumentNumber < list[j].DocumentNumber })
	return paginate(list, limit, offset), nil
}

// SupplierRepo implementación en memoria de SupplierRepository.
type SupplierRepo struct {
	s  *Store
	tx bool
}

func NewSupplierRepository(s *Store) *SupplierRepo { return &SupplierRepo{s: s} }

func (r *SupplierRepo) Create(sup *entity.Supplier) error {
	defer r.s.lockUnless(r.tx)()
	if _, ok := r.s.suppliers[sup.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.s.suppliers {
		if existing.RUC == sup.RUC {
			return domain.ErrDuplicate
		}
	}
	cp := *sup
	r.s.suppliers[sup.ID] = &cp
	return nil
}

func (r *SupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	defer r.s.lockUnless(r.tx)()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	cp := *sup
	return &cp, nil
}

func (r *SupplierRepo) List(limit, offset int) ([]*entity.Supplier, error) {
	defer r.s.lockUnless(r.tx)()
	list := make([]*entity.Supplier, 0, len(r.s.suppliers))
	for _, sup := range r.s.suppliers {
		cp := *sup
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

// ReorderSignalRepo implementación en memoria de ReorderSignalRepository.
// Incluye Put para sembrar señales en tests (el puerto de dominio es solo
// lectura).
type ReorderSignalRepo struct {
	s  *Store
	tx bool
}

func NewReorderSignalRepository(s *Store) *ReorderSignalRepo { return &ReorderSignalRepo{s: s} }

// Put siembra o reemplaza la señal de un producto.
func (r *ReorderSignalRepo) Put(sig *entity.ReorderSignal) {
	defer r.s.lockUnless(r.tx)()
	cp := *sig
	r.s.signals[sig.ProductID] = &cp
}

func (r *ReorderSignalRepo) GetByProduct(productID string) (*entity.ReorderSignal, error) {
	defer r.s.lockUnless(r.tx)()
	sig, ok := r.s.signals[productID]
	if !ok {
		return nil, nil
	}
	cp := *sig
	return &cp, nil
}

func (r *ReorderSignalRepo) ListTop(limit int) ([]*entity.ReorderSignal, error) {
	defer r.s.lockUnless(r.tx)()
	list := make([]*entity.ReorderSignal, 0, len(r.s.signals))
	for _, sig := range r.s.signals {
		cp := *sig
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority < list[j].Priority
		}
		return list[i].PredictedDemand.GreaterThan(list[j].PredictedDemand)
	})
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}
