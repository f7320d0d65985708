package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indentflow/backend/internal/domain/procurement"
	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/indentflow/backend/internal/infrastructure/persistence/datascope"
	"github.com/indentflow/backend/internal/infrastructure/persistence/models"
)

// GormIndentRepository implements MaterialIndentRepository using GORM
type GormIndentRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormIndentRepository creates a new GormIndentRepository
func NewGormIndentRepository(db *gorm.DB) *GormIndentRepository {
	return &GormIndentRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormIndentRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an indent by its ID
func (r *GormIndentRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.MaterialIndent, error) {
	var model models.MaterialIndentModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Quotations").
		Preload("Items.Receipts").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an indent by ID within a tenant
func (r *GormIndentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*procurement.MaterialIndent, error) {
	var model models.MaterialIndentModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Quotations").
		Preload("Items.Receipts").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIndentNumber finds an indent by indent number for a tenant
func (r *GormIndentRepository) FindByIndentNumber(ctx context.Context, tenantID uuid.UUID, indentNumber string) (*procurement.MaterialIndent, error) {
	var model models.MaterialIndentModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Quotations").
		Preload("Items.Receipts").
		Where("tenant_id = ? AND indent_number = ?", tenantID, indentNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all indents for a tenant with filtering and data scope
func (r *GormIndentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]procurement.MaterialIndent, error) {
	var indentModels []models.MaterialIndentModel

	query := r.db.WithContext(ctx).Model(&models.MaterialIndentModel{}).Where("tenant_id = ?", tenantID)

	// Apply data scope filtering from context
	dsFilter := datascope.NewFilterFromContext(ctx)
	query = dsFilter.Apply(query, "material_indent")

	query = r.applyFilter(query, filter)

	// Preload Items so list views can show item counts and receipt progress
	if err := query.Preload("Items").Preload("Items.Receipts").Find(&indentModels).Error; err != nil {
		return nil, err
	}
	indents := make([]procurement.MaterialIndent, len(indentModels))
	for i, model := range indentModels {
		indents[i] = *model.ToDomain()
	}
	return indents, nil
}

// FindByRequester finds indents raised by a requester with data scope filtering
func (r *GormIndentRepository) FindByRequester(ctx context.Context, tenantID, requesterID uuid.UUID, filter shared.Filter) ([]procurement.MaterialIndent, error) {
	var indentModels []models.MaterialIndentModel

	query := r.db.WithContext(ctx).Model(&models.MaterialIndentModel{}).
		Where("tenant_id = ? AND requester_id = ?", tenantID, requesterID)

	dsFilter := datascope.NewFilterFromContext(ctx)
	query = dsFilter.Apply(query, "material_indent")

	query = r.applyFilter(query, filter)

	if err := query.Preload("Items").Preload("Items.Receipts").Find(&indentModels).Error; err != nil {
		return nil, err
	}
	indents := make([]procurement.MaterialIndent, len(indentModels))
	for i, model := range indentModels {
		indents[i] = *model.ToDomain()
	}
	return indents, nil
}

// FindByStatus finds indents by status for a tenant with data scope filtering
func (r *GormIndentRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status procurement.IndentStatus, filter shared.Filter) ([]procurement.MaterialIndent, error) {
	var indentModels []models.MaterialIndentModel

	query := r.db.WithContext(ctx).Model(&models.MaterialIndentModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status)

	dsFilter := datascope.NewFilterFromContext(ctx)
	query = dsFilter.Apply(query, "material_indent")

	query = r.applyFilter(query, filter)

	if err := query.Preload("Items").Preload("Items.Receipts").Find(&indentModels).Error; err != nil {
		return nil, err
	}
	indents := make([]procurement.MaterialIndent, len(indentModels))
	for i, model := range indentModels {
		indents[i] = *model.ToDomain()
	}
	return indents, nil
}

// FindPendingReceipt finds indents open for receiving with data scope filtering
func (r *GormIndentRepository) FindPendingReceipt(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]procurement.MaterialIndent, error) {
	var indentModels []models.MaterialIndentModel

	query := r.db.WithContext(ctx).Model(&models.MaterialIndentModel{}).
		Where("tenant_id = ? AND status IN ?", tenantID, []procurement.IndentStatus{
			procurement.IndentStatusOrdered,
			procurement.IndentStatusPartiallyReceived,
		})

	dsFilter := datascope.NewFilterFromContext(ctx)
	query = dsFilter.Apply(query, "material_indent")

	query = r.applyFilter(query, filter)

	if err := query.Preload("Items").Preload("Items.Receipts").Find(&indentModels).Error; err != nil {
		return nil, err
	}
	indents := make([]procurement.MaterialIndent, len(indentModels))
	for i, model := range indentModels {
		indents[i] = *model.ToDomain()
	}
	return indents, nil
}

// Save creates or updates an indent
func (r *GormIndentRepository) Save(ctx context.Context, indent *procurement.MaterialIndent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.MaterialIndentModelFromDomain(indent)

		// Save the indent without auto-saving associations
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}

		if indent.ID != uuid.Nil {
			return r.saveItems(tx, indent)
		}

		return nil
	})
}

// saveItems reconciles the item rows (and their quotations and receipts)
// with the aggregate's current in-memory item list.
func (r *GormIndentRepository) saveItems(tx *gorm.DB, indent *procurement.MaterialIndent) error {
	currentItemIDs := make([]uuid.UUID, len(indent.Items))
	for i, item := range indent.Items {
		currentItemIDs[i] = item.ID
	}

	// Delete items not in the current list (quotations and receipts first)
	removed := tx.Model(&models.IndentItemModel{}).Select("id").Where("indent_id = ?", indent.ID)
	if len(currentItemIDs) > 0 {
		removed = removed.Where("id NOT IN ?", currentItemIDs)
	}
	if err := tx.Where("item_id IN (?)", removed).
		Delete(&models.VendorQuotationModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("item_id IN (?)", removed).
		Delete(&models.MaterialReceiptModel{}).Error; err != nil {
		return err
	}
	if len(currentItemIDs) > 0 {
		if err := tx.Where("indent_id = ? AND id NOT IN ?", indent.ID, currentItemIDs).
			Delete(&models.IndentItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("indent_id = ?", indent.ID).
			Delete(&models.IndentItemModel{}).Error; err != nil {
			return err
		}
	}

	// Save/update remaining items
	for i := range indent.Items {
		indent.Items[i].IndentID = indent.ID
		item := &indent.Items[i]
		itemModel := models.IndentItemModelFromDomain(item)
		if err := tx.Omit("Quotations", "Receipts").Save(itemModel).Error; err != nil {
			return err
		}

		// Reconcile quotations (they can be added and removed before ordering)
		currentQuotationIDs := make([]uuid.UUID, len(item.Quotations))
		for j, q := range item.Quotations {
			currentQuotationIDs[j] = q.ID
		}
		if len(currentQuotationIDs) > 0 {
			if err := tx.Where("item_id = ? AND id NOT IN ?", item.ID, currentQuotationIDs).
				Delete(&models.VendorQuotationModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("item_id = ?", item.ID).
				Delete(&models.VendorQuotationModel{}).Error; err != nil {
				return err
			}
		}
		for j := range item.Quotations {
			item.Quotations[j].ItemID = item.ID
			quotationModel := models.VendorQuotationModelFromDomain(&item.Quotations[j])
			if err := tx.Save(quotationModel).Error; err != nil {
				return err
			}
		}

		// Receipts are an append-only ledger: save upserts, never delete
		for j := range item.Receipts {
			item.Receipts[j].ItemID = item.ID
			receiptModel := models.MaterialReceiptModelFromDomain(&item.Receipts[j])
			if err := tx.Save(receiptModel).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SaveNewWithEvents inserts a new indent together with its outbox events.
// The version check in the lock variants reads the stored row, so a freshly
// created aggregate has to take the INSERT path.
func (r *GormIndentRepository) SaveNewWithEvents(ctx context.Context, indent *procurement.MaterialIndent, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.MaterialIndentModelFromDomain(indent)
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return err
		}
		if err := r.saveItems(tx, indent); err != nil {
			return err
		}
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormIndentRepository) SaveWithLock(ctx context.Context, indent *procurement.MaterialIndent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateWithVersionCheck(tx, indent); err != nil {
			return err
		}
		return r.saveItems(tx, indent)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
// This implements the transactional outbox pattern - events are saved to the outbox table
// in the same transaction as the aggregate, ensuring guaranteed event delivery
func (r *GormIndentRepository) SaveWithLockAndEvents(ctx context.Context, indent *procurement.MaterialIndent, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateWithVersionCheck(tx, indent); err != nil {
			return err
		}
		if err := r.saveItems(tx, indent); err != nil {
			return err
		}

		// Save events to outbox within the same transaction
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// updateWithVersionCheck updates the indent row iff the stored version matches
// the version the aggregate was loaded at.
func (r *GormIndentRepository) updateWithVersionCheck(tx *gorm.DB, indent *procurement.MaterialIndent) error {
	// Get current version from database
	var currentVersion int
	if err := tx.Model(&models.MaterialIndentModel{}).
		Where("id = ?", indent.ID).
		Select("version").
		Scan(&currentVersion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}

	// Check version matches
	if currentVersion != indent.Version {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The indent has been modified by another user")
	}

	// Increment version
	indent.Version++
	indent.UpdatedAt = time.Now()

	result := tx.Model(&models.MaterialIndentModel{}).
		Where("id = ? AND version = ?", indent.ID, currentVersion).
		Updates(map[string]interface{}{
			"request_date":       indent.RequestDate,
			"status":             indent.Status,
			"approver_id":        indent.ApproverID,
			"approver_name":      indent.ApproverName,
			"approved_at":        indent.ApprovedAt,
			"reject_reason":      indent.RejectReason,
			"revert_reason":      indent.RevertReason,
			"resubmission_note":  indent.ResubmissionNote,
			"resubmission_count": indent.ResubmissionCount,
			"notes":              indent.Notes,
			"submitted_at":       indent.SubmittedAt,
			"ordered_at":         indent.OrderedAt,
			"closed_at":          indent.ClosedAt,
			"version":            indent.Version,
			"updated_at":         indent.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The indent has been modified by another user")
	}

	return nil
}

// Delete deletes an indent
func (r *GormIndentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.deleteChildren(tx, id); err != nil {
			return err
		}

		result := tx.Delete(&models.MaterialIndentModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// DeleteForTenant deletes an indent for a tenant
func (r *GormIndentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Find the indent first
		var model models.MaterialIndentModel
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := r.deleteChildren(tx, id); err != nil {
			return err
		}

		result := tx.Delete(&models.MaterialIndentModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// deleteChildren removes quotations, receipts and items belonging to an indent.
func (r *GormIndentRepository) deleteChildren(tx *gorm.DB, indentID uuid.UUID) error {
	itemIDs := tx.Model(&models.IndentItemModel{}).Select("id").Where("indent_id = ?", indentID)
	if err := tx.Where("item_id IN (?)", itemIDs).Delete(&models.VendorQuotationModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("item_id IN (?)", itemIDs).Delete(&models.MaterialReceiptModel{}).Error; err != nil {
		return err
	}
	return tx.Where("indent_id = ?", indentID).Delete(&models.IndentItemModel{}).Error
}

// CountForTenant counts indents for a tenant with optional filters and data scope
func (r *GormIndentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.MaterialIndentModel{}).Where("tenant_id = ?", tenantID)

	dsFilter := datascope.NewFilterFromContext(ctx)
	query = dsFilter.Apply(query, "material_indent")

	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts indents by status for a tenant with data scope
func (r *GormIndentRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status procurement.IndentStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.MaterialIndentModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status)

	dsFilter := datascope.NewFilterFromContext(ctx)
	query = dsFilter.Apply(query, "material_indent")

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByIndentNumber checks if an indent number exists for a tenant
func (r *GormIndentRepository) ExistsByIndentNumber(ctx context.Context, tenantID uuid.UUID, indentNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MaterialIndentModel{}).
		Where("tenant_id = ? AND indent_number = ?", tenantID, indentNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateIndentNumber generates a unique indent number for a tenant
// Format: IND-YYYY-NNNNN (e.g., IND-2026-00001)
func (r *GormIndentRepository) GenerateIndentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("IND-%d-", year)

	// Get the highest indent number for this year
	var lastIndent models.MaterialIndentModel
	err := r.db.WithContext(ctx).
		Model(&models.MaterialIndentModel{}).
		Where("tenant_id = ? AND indent_number LIKE ?", tenantID, prefix+"%").
		Order("indent_number DESC").
		First(&lastIndent).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastIndent.IndentNumber != "" {
		parts := strings.Split(lastIndent.IndentNumber, "-")
		if len(parts) == 3 {
			var num int64
			_, parseErr := fmt.Sscanf(parts[2], "%d", &num)
			if parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	indentNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness
	exists, err := r.ExistsByIndentNumber(ctx, tenantID, indentNumber)
	if err != nil {
		return "", err
	}
	if exists {
		// If exists, try incrementing until we find a unique one
		for i := 0; i < 100; i++ {
			nextNum++
			indentNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByIndentNumber(ctx, tenantID, indentNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return indentNumber, nil
}

// applyFilter applies filter options to the query
func (r *GormIndentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering with whitelist validation to prevent SQL injection
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, MaterialIndentSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("created_at DESC")
		}
	} else {
		// Default ordering
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormIndentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("indent_number ILIKE ? OR requester_name ILIKE ?",
			searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "requester_id":
			query = query.Where("requester_id = ?", value)
		case "approver_id":
			query = query.Where("approver_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("request_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("request_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormIndentRepository implements MaterialIndentRepository
var _ procurement.MaterialIndentRepository = (*GormIndentRepository)(nil)
