package identity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlantTenant(t *testing.T) *Tenant {
	t.Helper()
	tenant, err := NewTenant("PLANT-A", "Plant A Fabrication")
	require.NoError(t, err)
	return tenant
}

func TestNewTenant(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		coName   string
		wantErr  string
		wantCode string
	}{
		{"valid", "PLANT-A", "Plant A Fabrication", "", "PLANT-A"},
		{"uppercases code", "plant-b", "Plant B Assembly", "", "PLANT-B"},
		{"empty code", "", "Plant A Fabrication", "code cannot be empty", ""},
		{"code with bad characters", "PLANT@A", "Plant A Fabrication", "can only contain", ""},
		{"code too long", strings.Repeat("A", 51), "Plant A Fabrication", "cannot exceed 50 characters", ""},
		{"empty name", "PLANT-A", "", "name cannot be empty", ""},
		{"name too long", "PLANT-A", strings.Repeat("n", 201), "cannot exceed 200 characters", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant, err := NewTenant(tt.code, tt.coName)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, tenant)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, tenant.Code)
			assert.Equal(t, tt.coName, tenant.Name)
			assert.Equal(t, TenantStatusActive, tenant.Status)
			assert.Equal(t, TenantPlanFree, tenant.Plan)
			assert.Len(t, tenant.GetDomainEvents(), 1)
		})
	}
}

func TestNewTenant_StartsOnFreeLimits(t *testing.T) {
	tenant := newPlantTenant(t)

	assert.Equal(t, 5, tenant.Config.MaxUsers)
	assert.Equal(t, 3, tenant.Config.MaxMachines)
	assert.Equal(t, 1000, tenant.Config.MaxMaterials)
	assert.Equal(t, "INR", tenant.Config.Currency)
	assert.Equal(t, "Asia/Kolkata", tenant.Config.Timezone)
	assert.Equal(t, "en-IN", tenant.Config.Locale)
}

func TestNewTrialTenant(t *testing.T) {
	t.Run("sets trial status and end date", func(t *testing.T) {
		tenant, err := NewTrialTenant("PLANT-T", "Trial Plant", 14)

		require.NoError(t, err)
		assert.Equal(t, TenantStatusTrial, tenant.Status)
		assert.NotNil(t, tenant.TrialEndsAt)
		assert.True(t, tenant.IsTrial())
	})

	t.Run("rejects non-positive trial days", func(t *testing.T) {
		for _, days := range []int{0, -5} {
			tenant, err := NewTrialTenant("PLANT-T", "Trial Plant", days)
			require.Error(t, err)
			assert.Nil(t, tenant)
			assert.Contains(t, err.Error(), "Trial days must be positive")
		}
	})
}

func TestTenant_Update(t *testing.T) {
	t.Run("updates name and bumps version", func(t *testing.T) {
		tenant := newPlantTenant(t)
		tenant.ClearDomainEvents()
		before := tenant.Version

		require.NoError(t, tenant.Update("Plant A Machining", "PAM"))
		assert.Equal(t, "Plant A Machining", tenant.Name)
		assert.Equal(t, "PAM", tenant.ShortName)
		assert.Equal(t, before+1, tenant.Version)
		assert.Len(t, tenant.GetDomainEvents(), 1)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		err := newPlantTenant(t).Update("", "PAM")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("rejects oversized short name", func(t *testing.T) {
		err := newPlantTenant(t).Update("Plant A Machining", strings.Repeat("A", 101))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Short name cannot exceed 100 characters")
	})
}

func TestTenant_SetContact(t *testing.T) {
	t.Run("sets all contact fields", func(t *testing.T) {
		tenant := newPlantTenant(t)

		require.NoError(t, tenant.SetContact("Plant Manager", "+91 98765 43210", "manager@plant-a.example.com"))
		assert.Equal(t, "Plant Manager", tenant.ContactName)
		assert.Equal(t, "+91 98765 43210", tenant.ContactPhone)
		assert.Equal(t, "manager@plant-a.example.com", tenant.ContactEmail)
	})

	t.Run("rejects oversized fields", func(t *testing.T) {
		tenant := newPlantTenant(t)

		assert.ErrorContains(t, tenant.SetContact(strings.Repeat("A", 101), "", ""), "Contact name cannot exceed 100 characters")
		assert.ErrorContains(t, tenant.SetContact("", strings.Repeat("9", 51), ""), "Phone cannot exceed 50 characters")
		assert.ErrorContains(t, tenant.SetContact("", "", strings.Repeat("e", 201)), "Email cannot exceed 200 characters")
	})
}

func TestTenant_SetPlan(t *testing.T) {
	t.Run("plan change resizes limits", func(t *testing.T) {
		tenant := newPlantTenant(t)
		tenant.ClearDomainEvents()

		require.NoError(t, tenant.SetPlan(TenantPlanPro))
		assert.Equal(t, TenantPlanPro, tenant.Plan)
		assert.Equal(t, 50, tenant.Config.MaxUsers)
		assert.Equal(t, 20, tenant.Config.MaxMachines)
		assert.Equal(t, 50000, tenant.Config.MaxMaterials)
		assert.Len(t, tenant.GetDomainEvents(), 1)
	})

	t.Run("paid upgrade ends a running trial", func(t *testing.T) {
		tenant, err := NewTrialTenant("PLANT-T", "Trial Plant", 14)
		require.NoError(t, err)

		require.NoError(t, tenant.SetPlan(TenantPlanBasic))
		assert.Equal(t, TenantStatusActive, tenant.Status)
		assert.Nil(t, tenant.TrialEndsAt)
	})

	t.Run("rejects unknown plans", func(t *testing.T) {
		err := newPlantTenant(t).SetPlan(TenantPlan("gold"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid tenant plan")
	})

	t.Run("enterprise limits", func(t *testing.T) {
		tenant := newPlantTenant(t)

		require.NoError(t, tenant.SetPlan(TenantPlanEnterprise))
		assert.Equal(t, 9999, tenant.Config.MaxUsers)
		assert.Equal(t, 9999, tenant.Config.MaxMachines)
		assert.Equal(t, 999999, tenant.Config.MaxMaterials)
	})
}

func TestTenant_StatusTransitions(t *testing.T) {
	t.Run("activate", func(t *testing.T) {
		tenant := newPlantTenant(t)
		tenant.Status = TenantStatusInactive
		tenant.ClearDomainEvents()

		require.NoError(t, tenant.Activate())
		assert.True(t, tenant.IsActive())
		assert.Len(t, tenant.GetDomainEvents(), 1)
	})

	t.Run("deactivate", func(t *testing.T) {
		tenant := newPlantTenant(t)
		tenant.ClearDomainEvents()

		require.NoError(t, tenant.Deactivate())
		assert.True(t, tenant.IsInactive())
		assert.Len(t, tenant.GetDomainEvents(), 1)
	})

	t.Run("suspend", func(t *testing.T) {
		tenant := newPlantTenant(t)
		tenant.ClearDomainEvents()

		require.NoError(t, tenant.Suspend())
		assert.True(t, tenant.IsSuspended())
		assert.Len(t, tenant.GetDomainEvents(), 1)
	})

	t.Run("transitions are not idempotent", func(t *testing.T) {
		tenant := newPlantTenant(t)
		assert.ErrorContains(t, tenant.Activate(), "already active")

		tenant.Status = TenantStatusInactive
		assert.ErrorContains(t, tenant.Deactivate(), "already inactive")

		tenant.Status = TenantStatusSuspended
		assert.ErrorContains(t, tenant.Suspend(), "already suspended")
	})
}

func TestTenant_ConvertFromTrial(t *testing.T) {
	t.Run("moves trial to a paid plan", func(t *testing.T) {
		tenant, err := NewTrialTenant("PLANT-T", "Trial Plant", 14)
		require.NoError(t, err)

		require.NoError(t, tenant.ConvertFromTrial(TenantPlanPro))
		assert.Equal(t, TenantPlanPro, tenant.Plan)
		assert.Equal(t, TenantStatusActive, tenant.Status)
		assert.Nil(t, tenant.TrialEndsAt)
	})

	t.Run("requires trial status", func(t *testing.T) {
		err := newPlantTenant(t).ConvertFromTrial(TenantPlanPro)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not in trial status")
	})

	t.Run("cannot convert to free", func(t *testing.T) {
		tenant, err := NewTrialTenant("PLANT-T", "Trial Plant", 14)
		require.NoError(t, err)

		err = tenant.ConvertFromTrial(TenantPlanFree)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot convert to free plan")
	})
}

func TestTenant_ExpirationChecks(t *testing.T) {
	past := time.Now().AddDate(0, 0, -1)
	future := time.Now().AddDate(0, 1, 0)

	t.Run("trial past its end date", func(t *testing.T) {
		tenant, err := NewTrialTenant("PLANT-T", "Trial Plant", 1)
		require.NoError(t, err)
		tenant.TrialEndsAt = &past

		assert.True(t, tenant.IsTrialExpired())
	})

	t.Run("trial still running", func(t *testing.T) {
		tenant, err := NewTrialTenant("PLANT-T", "Trial Plant", 14)
		require.NoError(t, err)

		assert.False(t, tenant.IsTrialExpired())
	})

	t.Run("non-trial tenant never trial-expires", func(t *testing.T) {
		assert.False(t, newPlantTenant(t).IsTrialExpired())
	})

	t.Run("subscription expiry", func(t *testing.T) {
		tenant := newPlantTenant(t)
		assert.False(t, tenant.IsSubscriptionExpired())

		tenant.ExpiresAt = &future
		assert.False(t, tenant.IsSubscriptionExpired())

		tenant.ExpiresAt = &past
		assert.True(t, tenant.IsSubscriptionExpired())
	})
}

func TestTenant_ResourceLimits(t *testing.T) {
	tenant := newPlantTenant(t)

	assert.True(t, tenant.CanAddUser(4))
	assert.False(t, tenant.CanAddUser(5))

	assert.True(t, tenant.CanAddMachine(2))
	assert.False(t, tenant.CanAddMachine(3))

	assert.True(t, tenant.CanAddMaterial(999))
	assert.False(t, tenant.CanAddMaterial(1000))
}

func TestTenant_SetExpiration(t *testing.T) {
	tenant := newPlantTenant(t)
	future := time.Now().AddDate(1, 0, 0)

	tenant.SetExpiration(future)
	require.NotNil(t, tenant.ExpiresAt)
	assert.Equal(t, future.Unix(), tenant.ExpiresAt.Unix())

	tenant.ClearExpiration()
	assert.Nil(t, tenant.ExpiresAt)
}

func TestTenant_UpdateConfig(t *testing.T) {
	t.Run("replaces the config", func(t *testing.T) {
		tenant := newPlantTenant(t)

		err := tenant.UpdateConfig(TenantConfig{
			MaxUsers:     100,
			MaxMachines:  50,
			MaxMaterials: 10000,
			Currency:     "USD",
			Timezone:     "America/New_York",
			Locale:       "en-US",
		})

		require.NoError(t, err)
		assert.Equal(t, 100, tenant.Config.MaxUsers)
		assert.Equal(t, "USD", tenant.Config.Currency)
		assert.Equal(t, "en-US", tenant.Config.Locale)
	})

	t.Run("rejects negative limits", func(t *testing.T) {
		tenant := newPlantTenant(t)

		assert.ErrorContains(t, tenant.UpdateConfig(TenantConfig{MaxUsers: -1}), "Max users cannot be negative")
		assert.ErrorContains(t, tenant.UpdateConfig(TenantConfig{MaxMachines: -1}), "Max machines cannot be negative")
		assert.ErrorContains(t, tenant.UpdateConfig(TenantConfig{MaxMaterials: -1}), "Max materials cannot be negative")
	})
}

func TestTenant_ProfileSetters(t *testing.T) {
	tenant := newPlantTenant(t)

	require.NoError(t, tenant.SetAddress("Plot 14, Industrial Estate, Pune"))
	assert.Equal(t, "Plot 14, Industrial Estate, Pune", tenant.Address)
	assert.ErrorContains(t, tenant.SetAddress(strings.Repeat("A", 501)), "Address cannot exceed 500 characters")

	require.NoError(t, tenant.SetLogoURL("https://plant-a.example.com/logo.png"))
	assert.Equal(t, "https://plant-a.example.com/logo.png", tenant.LogoURL)
	assert.ErrorContains(t, tenant.SetLogoURL(strings.Repeat("u", 501)), "Logo URL cannot exceed 500 characters")

	tenant.SetNotes("onboarded during the Pune rollout")
	assert.Equal(t, "onboarded during the Pune rollout", tenant.Notes)
}

func TestTenant_SetDomain(t *testing.T) {
	tenant := newPlantTenant(t)

	require.NoError(t, tenant.SetDomain("Plant-A.IndentFlow.Example.Com"))
	assert.Equal(t, "plant-a.indentflow.example.com", tenant.Domain)

	assert.ErrorContains(t, tenant.SetDomain(strings.Repeat("a", 201)), "Domain cannot exceed 200 characters")

	require.NoError(t, tenant.SetDomain(""))
	assert.Empty(t, tenant.Domain)
}

func TestDefaultTenantConfig(t *testing.T) {
	config := DefaultTenantConfig()

	assert.Equal(t, 5, config.MaxUsers)
	assert.Equal(t, 3, config.MaxMachines)
	assert.Equal(t, 1000, config.MaxMaterials)
	assert.Equal(t, "{}", config.Features)
	assert.Equal(t, "{}", config.Settings)
	assert.Equal(t, "INR", config.Currency)
	assert.Equal(t, "Asia/Kolkata", config.Timezone)
	assert.Equal(t, "en-IN", config.Locale)
}

func TestTenant_GetTenantID(t *testing.T) {
	tenant := newPlantTenant(t)

	assert.Equal(t, tenant.ID, tenant.GetTenantID())
}
