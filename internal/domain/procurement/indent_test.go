package procurement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/indentflow/backend/internal/domain/shared/valueobject"
)

// Test helpers for MaterialIndent
func createTestIndent(t *testing.T) *MaterialIndent {
	tenantID := uuid.New()
	requesterID := uuid.New()
	indent, err := NewMaterialIndent(tenantID, "IND-2026-00001", requesterID, "Test Requester", "")
	require.NoError(t, err)
	return indent
}

func addTestItem(t *testing.T, indent *MaterialIndent, materialName string, quantity int64) *IndentItem {
	machineID := uuid.New()
	item, err := indent.AddItem(NewItemInput{
		MaterialID:        uuid.New(),
		MaterialName:      materialName,
		Unit:              "pcs",
		RequestedQuantity: quantity,
		Purpose:           PurposeMachine,
		MachineID:         &machineID,
		MachineName:       "CNC-01",
	})
	require.NoError(t, err)
	return item
}

func addTestQuotation(t *testing.T, item *IndentItem, vendorName string, amount float64) *VendorQuotation {
	q, err := NewVendorQuotation(vendorName, "Contact", "9876543210", valueobject.NewMoneyINRFromFloat(amount), "", nil)
	require.NoError(t, err)
	require.NoError(t, item.AddQuotation(q))
	return q
}

func submitTestIndent(t *testing.T, indent *MaterialIndent) {
	require.NoError(t, indent.SubmitForApproval())
}

func approveTestIndent(t *testing.T, indent *MaterialIndent) {
	require.NoError(t, indent.Approve(uuid.New(), "Approver", nil, ""))
}

// orderedTestIndent builds an indent in ordered status with one item of the
// given quantity, ready for receipt recording.
func orderedTestIndent(t *testing.T, quantity int64) (*MaterialIndent, *IndentItem) {
	indent := createTestIndent(t)
	item := addTestItem(t, indent, "Bearing 6204", quantity)
	submitTestIndent(t, indent)
	approveTestIndent(t, indent)
	require.NoError(t, indent.MarkOrdered())
	return indent, indent.GetItem(item.ID)
}

// ============================================
// IndentStatus Tests
// ============================================

func TestIndentStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  IndentStatus
		isValid bool
	}{
		{IndentStatusDraft, true},
		{IndentStatusPendingApproval, true},
		{IndentStatusApproved, true},
		{IndentStatusRejected, true},
		{IndentStatusReverted, true},
		{IndentStatusOrdered, true},
		{IndentStatusPartiallyReceived, true},
		{IndentStatusFullyReceived, true},
		{IndentStatusClosed, true},
		{IndentStatus("INVALID"), false},
		{IndentStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestIndentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     IndentStatus
		to       IndentStatus
		canTrans bool
	}{
		// From draft
		{IndentStatusDraft, IndentStatusPendingApproval, true},
		{IndentStatusDraft, IndentStatusApproved, false},
		{IndentStatusDraft, IndentStatusRejected, false},
		// From pending_approval
		{IndentStatusPendingApproval, IndentStatusApproved, true},
		{IndentStatusPendingApproval, IndentStatusRejected, true},
		{IndentStatusPendingApproval, IndentStatusReverted, true},
		{IndentStatusPendingApproval, IndentStatusOrdered, false},
		{IndentStatusPendingApproval, IndentStatusDraft, false},
		// From approved
		{IndentStatusApproved, IndentStatusOrdered, true},
		{IndentStatusApproved, IndentStatusPendingApproval, false},
		{IndentStatusApproved, IndentStatusClosed, false},
		// From reverted
		{IndentStatusReverted, IndentStatusPendingApproval, true},
		{IndentStatusReverted, IndentStatusApproved, false},
		{IndentStatusReverted, IndentStatusRejected, false},
		// From ordered
		{IndentStatusOrdered, IndentStatusPartiallyReceived, true},
		{IndentStatusOrdered, IndentStatusFullyReceived, true},
		{IndentStatusOrdered, IndentStatusClosed, false},
		// From partially_received
		{IndentStatusPartiallyReceived, IndentStatusPartiallyReceived, true},
		{IndentStatusPartiallyReceived, IndentStatusFullyReceived, true},
		{IndentStatusPartiallyReceived, IndentStatusClosed, false},
		// From fully_received
		{IndentStatusFullyReceived, IndentStatusClosed, true},
		{IndentStatusFullyReceived, IndentStatusPartiallyReceived, false},
		// Terminal states
		{IndentStatusRejected, IndentStatusPendingApproval, false},
		{IndentStatusRejected, IndentStatusDraft, false},
		{IndentStatusClosed, IndentStatusFullyReceived, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestIndentStatus_IsTerminal(t *testing.T) {
	assert.True(t, IndentStatusRejected.IsTerminal())
	assert.True(t, IndentStatusClosed.IsTerminal())
	assert.False(t, IndentStatusDraft.IsTerminal())
	assert.False(t, IndentStatusFullyReceived.IsTerminal())
}

// ============================================
// MaterialIndent Creation Tests
// ============================================

func TestNewMaterialIndent(t *testing.T) {
	tenantID := uuid.New()
	requesterID := uuid.New()

	indent, err := NewMaterialIndent(tenantID, "IND-2026-00001", requesterID, "Asha Patel", "urgent")

	require.NoError(t, err)
	assert.Equal(t, IndentStatusDraft, indent.Status)
	assert.Equal(t, "IND-2026-00001", indent.IndentNumber)
	assert.Equal(t, requesterID, indent.RequesterID)
	assert.Equal(t, tenantID, indent.TenantID)
	assert.Equal(t, 0, indent.ResubmissionCount)
	assert.Empty(t, indent.Items)
	assert.Len(t, indent.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeIndentCreated, indent.GetDomainEvents()[0].EventType())
}

func TestNewMaterialIndent_Validation(t *testing.T) {
	tenantID := uuid.New()
	requesterID := uuid.New()

	tests := []struct {
		name         string
		indentNumber string
		requesterID  uuid.UUID
		requester    string
		wantCode     string
	}{
		{"empty indent number", "", requesterID, "R", "INVALID_INDENT_NUMBER"},
		{"nil requester", "IND-2026-00001", uuid.Nil, "R", "INVALID_REQUESTER"},
		{"empty requester name", "IND-2026-00001", requesterID, "", "INVALID_REQUESTER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMaterialIndent(tenantID, tt.indentNumber, tt.requesterID, tt.requester, "")
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

// ============================================
// Item Management Tests
// ============================================

func TestMaterialIndent_AddItem(t *testing.T) {
	indent := createTestIndent(t)

	item := addTestItem(t, indent, "Hydraulic Oil 68", 20)

	assert.Equal(t, 1, indent.ItemCount())
	assert.Equal(t, int64(20), item.RequestedQuantity)
	assert.Equal(t, indent.ID, item.IndentID)
}

func TestMaterialIndent_AddItem_NotEditable(t *testing.T) {
	indent := createTestIndent(t)
	addTestItem(t, indent, "Hydraulic Oil 68", 20)
	submitTestIndent(t, indent)

	_, err := indent.AddItem(NewItemInput{
		MaterialID:        uuid.New(),
		MaterialName:      "Grease",
		RequestedQuantity: 5,
		Purpose:           PurposeOther,
		Notes:             "general maintenance",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestMaterialIndent_RemoveItem_KeepsAtLeastOne(t *testing.T) {
	indent := createTestIndent(t)
	item := addTestItem(t, indent, "Hydraulic Oil 68", 20)

	err := indent.RemoveItem(item.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NO_ITEMS", domainErr.Code)

	addTestItem(t, indent, "Grease", 5)
	require.NoError(t, indent.RemoveItem(item.ID))
	assert.Equal(t, 1, indent.ItemCount())
}

func TestMaterialIndent_UpdateItem_AfterRevert(t *testing.T) {
	indent := createTestIndent(t)
	item := addTestItem(t, indent, "Hydraulic Oil 68", 200)
	submitTestIndent(t, indent)
	require.NoError(t, indent.Revert(uuid.New(), "Approver", "quantity looks wrong"))

	machineID := uuid.New()
	err := indent.UpdateItem(item.ID, NewItemInput{
		MaterialID:        item.MaterialID,
		MaterialName:      item.MaterialName,
		Unit:              "ltr",
		RequestedQuantity: 20,
		Purpose:           PurposeMachine,
		MachineID:         &machineID,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(20), indent.GetItem(item.ID).RequestedQuantity)
}

// ============================================
// Submission Tests
// ============================================

func TestMaterialIndent_SubmitForApproval(t *testing.T) {
	indent := createTestIndent(t)
	addTestItem(t, indent, "Hydraulic Oil 68", 20)

	err := indent.SubmitForApproval()

	require.NoError(t, err)
	assert.Equal(t, IndentStatusPendingApproval, indent.Status)
	assert.NotNil(t, indent.SubmittedAt)
}

func TestMaterialIndent_SubmitForApproval_NoItems(t *testing.T) {
	indent := createTestIndent(t)

	err := indent.SubmitForApproval()

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NO_ITEMS", domainErr.Code)
	assert.Equal(t, IndentStatusDraft, indent.Status)
}

func TestMaterialIndent_SubmitForApproval_WrongStatus(t *testing.T) {
	indent := createTestIndent(t)
	addTestItem(t, indent, "Hydraulic Oil 68", 20)
	submitTestIndent(t, indent)

	err := indent.SubmitForApproval()

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

// ============================================
// Approval Tests
// ============================================

func TestMaterialIndent_Approve_WithoutQuotations(t *testing.T) {
	indent := createTestIndent(t)
	addTestItem(t, indent, "Hydraulic Oil 68", 20)
	submitTestIndent(t, indent)

	approverID := uuid.New()
	err := indent.Approve(approverID, "Approver", nil, "go ahead")

	require.NoError(t, err)
	assert.Equal(t, IndentStatusApproved, indent.Status)
	require.NotNil(t, indent.ApproverID)
	assert.Equal(t, approverID, *indent.ApproverID)
	assert.NotNil(t, indent.ApprovedAt)
}

func TestMaterialIndent_Approve_TransmitsAllSelections(t *testing.T) {
	indent := createTestIndent(t)
	itemA := addTestItem(t, indent, "Bearing 6204", 10)
	itemB := addTestItem(t, indent, "V-Belt B42", 4)
	qA1 := addTestQuotation(t, indent.GetItem(itemA.ID), "Vendor A1", 1200)
	addTestQuotation(t, indent.GetItem(itemA.ID), "Vendor A2", 1350)
	addTestQuotation(t, indent.GetItem(itemB.ID), "Vendor B1", 800)
	qB2 := addTestQuotation(t, indent.GetItem(itemB.ID), "Vendor B2", 760)
	submitTestIndent(t, indent)

	err := indent.Approve(uuid.New(), "Approver", []QuotationSelection{
		{ItemID: itemA.ID, QuotationID: qA1.ID},
		{ItemID: itemB.ID, QuotationID: qB2.ID},
	}, "")

	require.NoError(t, err)
	assert.Equal(t, IndentStatusApproved, indent.Status)

	// Both items keep their own winning quotation
	selA := indent.GetItem(itemA.ID).SelectedQuotation()
	selB := indent.GetItem(itemB.ID).SelectedQuotation()
	require.NotNil(t, selA)
	require.NotNil(t, selB)
	assert.Equal(t, "Vendor A1", selA.VendorName)
	assert.Equal(t, "Vendor B2", selB.VendorName)

	// The approval event carries the full selection set
	var approved *IndentApprovedEvent
	for _, evt := range indent.GetDomainEvents() {
		if e, ok := evt.(*IndentApprovedEvent); ok {
			approved = e
		}
	}
	require.NotNil(t, approved)
	assert.Len(t, approved.Selections, 2)
}

func TestMaterialIndent_Approve_MissingSelection(t *testing.T) {
	indent := createTestIndent(t)
	itemA := addTestItem(t, indent, "Bearing 6204", 10)
	addTestQuotation(t, indent.GetItem(itemA.ID), "Vendor A1", 1200)
	submitTestIndent(t, indent)

	err := indent.Approve(uuid.New(), "Approver", nil, "")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NO_QUOTATION_SELECTED", domainErr.Code)
	assert.Equal(t, IndentStatusPendingApproval, indent.Status)
}

func TestMaterialIndent_Approve_UnknownQuotation(t *testing.T) {
	indent := createTestIndent(t)
	itemA := addTestItem(t, indent, "Bearing 6204", 10)
	addTestQuotation(t, indent.GetItem(itemA.ID), "Vendor A1", 1200)
	submitTestIndent(t, indent)

	err := indent.Approve(uuid.New(), "Approver", []QuotationSelection{
		{ItemID: itemA.ID, QuotationID: uuid.New()},
	}, "")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "QUOTATION_NOT_FOUND", domainErr.Code)
}

func TestMaterialIndent_CanApprove(t *testing.T) {
	indent := createTestIndent(t)
	itemA := addTestItem(t, indent, "Bearing 6204", 10)
	addTestItem(t, indent, "V-Belt B42", 4) // no quotations, always ready
	q := addTestQuotation(t, indent.GetItem(itemA.ID), "Vendor A1", 1200)

	assert.False(t, indent.CanApprove())

	require.NoError(t, indent.GetItem(itemA.ID).SelectQuotation(q.ID))
	assert.True(t, indent.CanApprove())

	// The predicate reflects current state: removing the selected quotation
	// flips it back only while a second one remains unselected.
	q2 := addTestQuotation(t, indent.GetItem(itemA.ID), "Vendor A2", 1100)
	require.NoError(t, indent.GetItem(itemA.ID).SelectQuotation(q2.ID))
	assert.True(t, indent.CanApprove())
}

// ============================================
// Rejection / Revert / Resubmission Tests
// ============================================

func TestMaterialIndent_Reject(t *testing.T) {
	indent := createTestIndent(t)
	addTestItem(t, indent, "Hydraulic Oil 68", 20)
	submitTestIndent(t, indent)

	err := indent.Reject(uuid.New(), "Approver", "budget freeze")

	require.NoError(t, err)
	assert.Equal(t, IndentStatusRejected, indent.Status)
	assert.Equal(t, "budget freeze", indent.RejectReason)

	// Rejection is terminal
	assert.Error(t, indent.Resubmit("fixed"))
	assert.Error(t, indent.SubmitForApproval())
}

func TestMaterialIndent_Reject_RequiresReason(t *testing.T) {
	indent := createTestIndent(t)
	addTestItem(t, indent, "Hydraulic Oil 68", 20)
	submitTestIndent(t, indent)

	err := indent.Reject(uuid.New(), "Approver", "")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_REASON", domainErr.Code)
}

func TestMaterialIndent_RevertAndResubmit(t *testing.T) {
	indent := createTestIndent(t)
	addTestItem(t, indent, "Hydraulic Oil 68", 200)
	submitTestIndent(t, indent)

	require.NoError(t, indent.Revert(uuid.New(), "Approver", "quantity looks wrong"))
	assert.Equal(t, IndentStatusReverted, indent.Status)
	assert.Equal(t, "quantity looks wrong", indent.RevertReason)

	err := indent.Resubmit("corrected quantity to 20")

	require.NoError(t, err)
	assert.Equal(t, IndentStatusPendingApproval, indent.Status)
	assert.Equal(t, 1, indent.ResubmissionCount)
	assert.Equal(t, "corrected quantity to 20", indent.ResubmissionNote)
	// The original revert reason is retained for audit
	assert.Equal(t, "quantity looks wrong", indent.RevertReason)
}

func TestMaterialIndent_Resubmit_RequiresExplanation(t *testing.T) {
	indent := createTestIndent(t)
	addTestItem(t, indent, "Hydraulic Oil 68", 20)
	submitTestIndent(t, indent)
	require.NoError(t, indent.Revert(uuid.New(), "Approver", "fix specs"))

	err := indent.Resubmit("")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_EXPLANATION", domainErr.Code)
}

func TestMaterialIndent_Resubmit_CountsEveryCycle(t *testing.T) {
	indent := createTestIndent(t)
	addTestItem(t, indent, "Hydraulic Oil 68", 20)
	submitTestIndent(t, indent)

	for i := 1; i <= 3; i++ {
		require.NoError(t, indent.Revert(uuid.New(), "Approver", "again"))
		require.NoError(t, indent.Resubmit("fixed again"))
		assert.Equal(t, i, indent.ResubmissionCount)
	}
}

// ============================================
// Ordering / Receipt / Close Tests
// ============================================

func TestMaterialIndent_MarkOrdered(t *testing.T) {
	indent := createTestIndent(t)
	addTestItem(t, indent, "Hydraulic Oil 68", 20)
	submitTestIndent(t, indent)
	approveTestIndent(t, indent)

	err := indent.MarkOrdered()

	require.NoError(t, err)
	assert.Equal(t, IndentStatusOrdered, indent.Status)
	assert.NotNil(t, indent.OrderedAt)
}

func TestMaterialIndent_RecordReceipt_Partial(t *testing.T) {
	indent, item := orderedTestIndent(t, 10)

	receipt, err := indent.RecordReceipt(item.ID, 4, time.Now(), "first delivery", uuid.New(), "Storekeeper")

	require.NoError(t, err)
	assert.Equal(t, int64(4), receipt.Quantity)
	assert.Equal(t, IndentStatusPartiallyReceived, indent.Status)
	assert.Equal(t, int64(6), item.RemainingQuantity())
	assert.Equal(t, 40, indent.ReceiveProgress())
}

func TestMaterialIndent_RecordReceipt_CompletesExactly(t *testing.T) {
	indent, item := orderedTestIndent(t, 10)

	_, err := indent.RecordReceipt(item.ID, 4, time.Now(), "", uuid.New(), "Storekeeper")
	require.NoError(t, err)
	_, err = indent.RecordReceipt(item.ID, 6, time.Now(), "", uuid.New(), "Storekeeper")
	require.NoError(t, err)

	assert.Equal(t, IndentStatusFullyReceived, indent.Status)
	assert.True(t, item.IsFullyReceived())
	assert.Equal(t, 100, indent.ReceiveProgress())

	var sawFullyReceived bool
	for _, evt := range indent.GetDomainEvents() {
		if evt.EventType() == EventTypeIndentFullyReceived {
			sawFullyReceived = true
		}
	}
	assert.True(t, sawFullyReceived)
}

func TestMaterialIndent_RecordReceipt_OverReceiptRejected(t *testing.T) {
	indent, item := orderedTestIndent(t, 10)
	_, err := indent.RecordReceipt(item.ID, 8, time.Now(), "", uuid.New(), "Storekeeper")
	require.NoError(t, err)

	_, err = indent.RecordReceipt(item.ID, 3, time.Now(), "", uuid.New(), "Storekeeper")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OVER_RECEIPT", domainErr.Code)
	assert.Equal(t, int64(2), domainErr.Details["remaining_quantity"])

	// The rejected write leaves the ledger untouched
	assert.Equal(t, int64(8), item.TotalReceived())
	assert.Len(t, item.Receipts, 1)
	assert.Equal(t, IndentStatusPartiallyReceived, indent.Status)
}

func TestMaterialIndent_RecordReceipt_ZeroQuantityRejected(t *testing.T) {
	indent, item := orderedTestIndent(t, 10)

	_, err := indent.RecordReceipt(item.ID, 0, time.Now(), "", uuid.New(), "Storekeeper")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
}

func TestMaterialIndent_RecordReceipt_WrongStatus(t *testing.T) {
	indent := createTestIndent(t)
	item := addTestItem(t, indent, "Bearing 6204", 10)

	_, err := indent.RecordReceipt(item.ID, 5, time.Now(), "", uuid.New(), "Storekeeper")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestMaterialIndent_MultiItem_FullyReceivedOnlyWhenAllComplete(t *testing.T) {
	indent := createTestIndent(t)
	itemA := addTestItem(t, indent, "Bearing 6204", 10)
	itemB := addTestItem(t, indent, "V-Belt B42", 4)
	submitTestIndent(t, indent)
	approveTestIndent(t, indent)
	require.NoError(t, indent.MarkOrdered())

	_, err := indent.RecordReceipt(itemA.ID, 10, time.Now(), "", uuid.New(), "Storekeeper")
	require.NoError(t, err)
	assert.Equal(t, IndentStatusPartiallyReceived, indent.Status)

	_, err = indent.RecordReceipt(itemB.ID, 4, time.Now(), "", uuid.New(), "Storekeeper")
	require.NoError(t, err)
	assert.Equal(t, IndentStatusFullyReceived, indent.Status)
}

func TestMaterialIndent_Close(t *testing.T) {
	indent, item := orderedTestIndent(t, 10)
	_, err := indent.RecordReceipt(item.ID, 10, time.Now(), "", uuid.New(), "Storekeeper")
	require.NoError(t, err)

	require.NoError(t, indent.Close())
	assert.Equal(t, IndentStatusClosed, indent.Status)
	assert.NotNil(t, indent.ClosedAt)

	// Closed is terminal
	_, err = indent.RecordReceipt(item.ID, 1, time.Now(), "", uuid.New(), "Storekeeper")
	assert.Error(t, err)
}

func TestMaterialIndent_Close_RequiresFullyReceived(t *testing.T) {
	indent, _ := orderedTestIndent(t, 10)

	err := indent.Close()

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

// ============================================
// Deletion / Progress Tests
// ============================================

func TestMaterialIndent_CanDelete(t *testing.T) {
	indent := createTestIndent(t)
	addTestItem(t, indent, "Hydraulic Oil 68", 20)
	assert.True(t, indent.CanDelete())

	submitTestIndent(t, indent)
	assert.True(t, indent.CanDelete())

	approveTestIndent(t, indent)
	assert.False(t, indent.CanDelete())
}

func TestMaterialIndent_ReceiveProgress_Rounding(t *testing.T) {
	indent, item := orderedTestIndent(t, 3)

	_, err := indent.RecordReceipt(item.ID, 1, time.Now(), "", uuid.New(), "Storekeeper")
	require.NoError(t, err)

	// 1/3 rounds to 33
	assert.Equal(t, 33, indent.ReceiveProgress())
	assert.Equal(t, 33, item.ReceiveProgress())

	_, err = indent.RecordReceipt(item.ID, 1, time.Now(), "", uuid.New(), "Storekeeper")
	require.NoError(t, err)

	// 2/3 rounds half-up to 67, not down to 66
	assert.Equal(t, 67, indent.ReceiveProgress())
	assert.Equal(t, 67, item.ReceiveProgress())
}

func TestMaterialIndent_VersionIncrementsOnMutation(t *testing.T) {
	indent := createTestIndent(t)
	initial := indent.Version
	addTestItem(t, indent, "Hydraulic Oil 68", 20)
	submitTestIndent(t, indent)

	assert.Greater(t, indent.Version, initial)
}
