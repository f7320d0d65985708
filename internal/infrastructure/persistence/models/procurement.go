package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/indentflow/backend/internal/domain/procurement"
	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/indentflow/backend/internal/domain/shared/valueobject"
)

// MaterialIndentModel is the persistence model for the MaterialIndent aggregate root.
type MaterialIndentModel struct {
	TenantAggregateModel
	IndentNumber      string                     `gorm:"type:varchar(50);not null;uniqueIndex:idx_indent_tenant_number,priority:2"`
	RequestDate       time.Time                  `gorm:"not null;index"`
	Status            procurement.IndentStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	RequesterID       uuid.UUID                  `gorm:"type:uuid;not null;index"`
	RequesterName     string                     `gorm:"type:varchar(200);not null"`
	ApproverID        *uuid.UUID                 `gorm:"type:uuid;index"`
	ApproverName      string                     `gorm:"type:varchar(200)"`
	ApprovedAt        *time.Time
	RejectReason      string                     `gorm:"type:varchar(500)"`
	RevertReason      string                     `gorm:"type:varchar(500)"`
	ResubmissionNote  string                     `gorm:"type:varchar(500)"`
	ResubmissionCount int                        `gorm:"not null;default:0"`
	Notes             string                     `gorm:"type:text"`
	Items             []IndentItemModel          `gorm:"foreignKey:IndentID;references:ID"`
	SubmittedAt       *time.Time
	OrderedAt         *time.Time
	ClosedAt          *time.Time
}

// TableName returns the table name for GORM
func (MaterialIndentModel) TableName() string {
	return "material_indents"
}

// ToDomain converts the persistence model to a domain MaterialIndent entity.
func (m *MaterialIndentModel) ToDomain() *procurement.MaterialIndent {
	indent := &procurement.MaterialIndent{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		IndentNumber:      m.IndentNumber,
		RequestDate:       m.RequestDate,
		Status:            m.Status,
		RequesterID:       m.RequesterID,
		RequesterName:     m.RequesterName,
		ApproverID:        m.ApproverID,
		ApproverName:      m.ApproverName,
		ApprovedAt:        m.ApprovedAt,
		RejectReason:      m.RejectReason,
		RevertReason:      m.RevertReason,
		ResubmissionNote:  m.ResubmissionNote,
		ResubmissionCount: m.ResubmissionCount,
		Notes:             m.Notes,
		SubmittedAt:       m.SubmittedAt,
		OrderedAt:         m.OrderedAt,
		ClosedAt:          m.ClosedAt,
		Items:             make([]procurement.IndentItem, len(m.Items)),
	}
	for i, item := range m.Items {
		indent.Items[i] = *item.ToDomain()
	}
	return indent
}

// FromDomain populates the persistence model from a domain MaterialIndent entity.
func (m *MaterialIndentModel) FromDomain(indent *procurement.MaterialIndent) {
	m.FromDomainTenantAggregateRoot(indent.TenantAggregateRoot)
	m.IndentNumber = indent.IndentNumber
	m.RequestDate = indent.RequestDate
	m.Status = indent.Status
	m.RequesterID = indent.RequesterID
	m.RequesterName = indent.RequesterName
	m.ApproverID = indent.ApproverID
	m.ApproverName = indent.ApproverName
	m.ApprovedAt = indent.ApprovedAt
	m.RejectReason = indent.RejectReason
	m.RevertReason = indent.RevertReason
	m.ResubmissionNote = indent.ResubmissionNote
	m.ResubmissionCount = indent.ResubmissionCount
	m.Notes = indent.Notes
	m.SubmittedAt = indent.SubmittedAt
	m.OrderedAt = indent.OrderedAt
	m.ClosedAt = indent.ClosedAt
	m.Items = make([]IndentItemModel, len(indent.Items))
	for i := range indent.Items {
		m.Items[i] = *IndentItemModelFromDomain(&indent.Items[i])
	}
}

// MaterialIndentModelFromDomain creates a new persistence model from a domain MaterialIndent entity.
func MaterialIndentModelFromDomain(indent *procurement.MaterialIndent) *MaterialIndentModel {
	m := &MaterialIndentModel{}
	m.FromDomain(indent)
	return m
}

// IndentItemModel is the persistence model for the IndentItem entity.
type IndentItemModel struct {
	ID                uuid.UUID                 `gorm:"type:uuid;primary_key"`
	IndentID          uuid.UUID                 `gorm:"type:uuid;not null;index"`
	MaterialID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	MaterialName      string                    `gorm:"type:varchar(200);not null"`
	Unit              string                    `gorm:"type:varchar(20);not null"`
	Specifications    string                    `gorm:"type:varchar(30)"`
	RequestedQuantity int64                     `gorm:"not null"`
	StockAtRequest    int64                     `gorm:"not null;default:0"`
	Purpose           procurement.IndentPurpose `gorm:"type:varchar(10);not null"`
	MachineID         *uuid.UUID                `gorm:"type:uuid;index"`
	MachineName       string                    `gorm:"type:varchar(200)"`
	Notes             string                    `gorm:"type:varchar(500)"`
	ImageKeys         []string                  `gorm:"serializer:json;type:jsonb"`
	Quotations        []VendorQuotationModel    `gorm:"foreignKey:ItemID;references:ID"`
	Receipts          []MaterialReceiptModel    `gorm:"foreignKey:ItemID;references:ID"`
	CreatedAt         time.Time                 `gorm:"not null"`
	UpdatedAt         time.Time                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IndentItemModel) TableName() string {
	return "indent_items"
}

// ToDomain converts the persistence model to a domain IndentItem entity.
func (m *IndentItemModel) ToDomain() *procurement.IndentItem {
	item := &procurement.IndentItem{
		ID:                m.ID,
		IndentID:          m.IndentID,
		MaterialID:        m.MaterialID,
		MaterialName:      m.MaterialName,
		Unit:              m.Unit,
		Specifications:    m.Specifications,
		RequestedQuantity: m.RequestedQuantity,
		StockAtRequest:    m.StockAtRequest,
		Purpose:           m.Purpose,
		MachineID:         m.MachineID,
		MachineName:       m.MachineName,
		Notes:             m.Notes,
		ImageKeys:         m.ImageKeys,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Quotations:        make([]procurement.VendorQuotation, len(m.Quotations)),
		Receipts:          make([]procurement.MaterialReceipt, len(m.Receipts)),
	}
	for i, q := range m.Quotations {
		item.Quotations[i] = *q.ToDomain()
	}
	for i, r := range m.Receipts {
		item.Receipts[i] = *r.ToDomain()
	}
	return item
}

// FromDomain populates the persistence model from a domain IndentItem entity.
func (m *IndentItemModel) FromDomain(item *procurement.IndentItem) {
	m.ID = item.ID
	m.IndentID = item.IndentID
	m.MaterialID = item.MaterialID
	m.MaterialName = item.MaterialName
	m.Unit = item.Unit
	m.Specifications = item.Specifications
	m.RequestedQuantity = item.RequestedQuantity
	m.StockAtRequest = item.StockAtRequest
	m.Purpose = item.Purpose
	m.MachineID = item.MachineID
	m.MachineName = item.MachineName
	m.Notes = item.Notes
	m.ImageKeys = item.ImageKeys
	m.CreatedAt = item.CreatedAt
	m.UpdatedAt = item.UpdatedAt
	m.Quotations = make([]VendorQuotationModel, len(item.Quotations))
	for i := range item.Quotations {
		m.Quotations[i] = *VendorQuotationModelFromDomain(&item.Quotations[i])
	}
	m.Receipts = make([]MaterialReceiptModel, len(item.Receipts))
	for i := range item.Receipts {
		m.Receipts[i] = *MaterialReceiptModelFromDomain(&item.Receipts[i])
	}
}

// IndentItemModelFromDomain creates a new persistence model from a domain IndentItem entity.
func IndentItemModelFromDomain(item *procurement.IndentItem) *IndentItemModel {
	m := &IndentItemModel{}
	m.FromDomain(item)
	return m
}

// VendorQuotationModel is the persistence model for the VendorQuotation entity.
type VendorQuotationModel struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key"`
	ItemID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	VendorName     string           `gorm:"type:varchar(200);not null"`
	ContactPerson  string           `gorm:"type:varchar(100)"`
	ContactPhone   string           `gorm:"type:varchar(30)"`
	QuotedAmount   decimal.Decimal  `gorm:"type:decimal(20,2);not null;default:0"`
	UnitPrice      *decimal.Decimal `gorm:"type:decimal(20,2)"`
	Notes          string           `gorm:"type:varchar(500)"`
	AttachmentKeys []string         `gorm:"serializer:json;type:jsonb"`
	IsSelected     bool             `gorm:"not null;default:false"`
	CreatedAt      time.Time        `gorm:"not null"`
	UpdatedAt      time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VendorQuotationModel) TableName() string {
	return "vendor_quotations"
}

// ToDomain converts the persistence model to a domain VendorQuotation entity.
func (m *VendorQuotationModel) ToDomain() *procurement.VendorQuotation {
	var unitPrice *valueobject.Money
	if m.UnitPrice != nil {
		p := valueobject.NewMoneyINR(*m.UnitPrice)
		unitPrice = &p
	}
	return &procurement.VendorQuotation{
		ID:             m.ID,
		ItemID:         m.ItemID,
		VendorName:     m.VendorName,
		ContactPerson:  m.ContactPerson,
		ContactPhone:   m.ContactPhone,
		QuotedAmount:   valueobject.NewMoneyINR(m.QuotedAmount),
		UnitPrice:      unitPrice,
		Notes:          m.Notes,
		AttachmentKeys: m.AttachmentKeys,
		IsSelected:     m.IsSelected,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// VendorQuotationModelFromDomain creates a new persistence model from a domain VendorQuotation entity.
func VendorQuotationModelFromDomain(q *procurement.VendorQuotation) *VendorQuotationModel {
	var unitPrice *decimal.Decimal
	if q.UnitPrice != nil {
		p := q.UnitPrice.Amount()
		unitPrice = &p
	}
	return &VendorQuotationModel{
		ID:             q.ID,
		ItemID:         q.ItemID,
		VendorName:     q.VendorName,
		ContactPerson:  q.ContactPerson,
		ContactPhone:   q.ContactPhone,
		QuotedAmount:   q.QuotedAmount.Amount(),
		UnitPrice:      unitPrice,
		Notes:          q.Notes,
		AttachmentKeys: q.AttachmentKeys,
		IsSelected:     q.IsSelected,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

// MaterialReceiptModel is the persistence model for the MaterialReceipt ledger entry.
type MaterialReceiptModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	ItemID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity     int64     `gorm:"not null"`
	ReceivedDate time.Time `gorm:"not null;index"`
	Notes        string    `gorm:"type:varchar(500)"`
	ReceiverID   uuid.UUID `gorm:"type:uuid;not null"`
	ReceiverName string    `gorm:"type:varchar(200);not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MaterialReceiptModel) TableName() string {
	return "material_receipts"
}

// ToDomain converts the persistence model to a domain MaterialReceipt entity.
func (m *MaterialReceiptModel) ToDomain() *procurement.MaterialReceipt {
	return &procurement.MaterialReceipt{
		ID:           m.ID,
		ItemID:       m.ItemID,
		Quantity:     m.Quantity,
		ReceivedDate: m.ReceivedDate,
		Notes:        m.Notes,
		ReceiverID:   m.ReceiverID,
		ReceiverName: m.ReceiverName,
		CreatedAt:    m.CreatedAt,
	}
}

// MaterialReceiptModelFromDomain creates a new persistence model from a domain MaterialReceipt entity.
func MaterialReceiptModelFromDomain(r *procurement.MaterialReceipt) *MaterialReceiptModel {
	return &MaterialReceiptModel{
		ID:           r.ID,
		ItemID:       r.ItemID,
		Quantity:     r.Quantity,
		ReceivedDate: r.ReceivedDate,
		Notes:        r.Notes,
		ReceiverID:   r.ReceiverID,
		ReceiverName: r.ReceiverName,
		CreatedAt:    r.CreatedAt,
	}
}
