package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/storage"
)

func TestSaveLeadRejectsDuplicateEmail(t *testing.T) {
	store := NewStore()

	err := store.SaveLead(&domain.Lead{ID: "1", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)

	err = store.SaveLead(&domain.Lead{ID: "2", Email: "a@example.com", Name: "A2"})
	assert.ErrorIs(t, err, storage.ErrLeadExists)

	count, err := store.CountLeads()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListLeadsReturnsCopies(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.SaveLead(&domain.Lead{ID: "1", Email: "a@example.com", Name: "A"}))

	leads, err := store.ListLeads()
	require.NoError(t, err)
	require.Len(t, leads, 1)

	// 修改快照不应影响存储内部状态
	leads[0].Name = "mutated"

	again, err := store.GetLeadByEmail("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
}

func TestDeleteLeadByEmail(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.SaveLead(&domain.Lead{ID: "1", Email: "a@example.com"}))
	require.NoError(t, store.SaveLead(&domain.Lead{ID: "2", Email: "b@example.com"}))

	require.NoError(t, store.DeleteLeadByEmail("a@example.com"))

	_, err := store.GetLeadByEmail("a@example.com")
	assert.ErrorIs(t, err, storage.ErrLeadNotFound)

	assert.ErrorIs(t, store.DeleteLeadByEmail("a@example.com"), storage.ErrLeadNotFound)

	leads, err := store.ListLeads()
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "b@example.com", leads[0].Email)
}

func TestInsertAutomationKeepsNewestFirst(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.InsertAutomation(&domain.Automation{ID: "first", Name: "Primeira"}))
	require.NoError(t, store.InsertAutomation(&domain.Automation{ID: "second", Name: "Segunda"}))

	automations, err := store.ListAutomations()
	require.NoError(t, err)
	require.Len(t, automations, 2)
	assert.Equal(t, "second", automations[0].ID)
	assert.Equal(t, "first", automations[1].ID)
}

func TestUpdateAutomation(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.InsertAutomation(&domain.Automation{
		ID:      "welcome-email",
		Name:    "Boas-vindas",
		Trigger: domain.TriggerNewLead,
		Active:  true,
	}))

	updated := &domain.Automation{
		ID:      "welcome-email",
		Name:    "Boas-vindas v2",
		Trigger: domain.TriggerNewLead,
		Active:  false,
	}
	require.NoError(t, store.UpdateAutomation(updated))

	got, err := store.GetAutomation("welcome-email")
	require.NoError(t, err)
	assert.Equal(t, "Boas-vindas v2", got.Name)
	assert.False(t, got.Active)

	err = store.UpdateAutomation(&domain.Automation{ID: "missing"})
	assert.ErrorIs(t, err, storage.ErrAutomationNotFound)
}

func TestSaveCampaignUpsertsByID(t *testing.T) {
	store := NewStore()

	campaign := &domain.Campaign{ID: "c1", Name: "Lançamento", Status: domain.CampaignDraft}
	require.NoError(t, store.SaveCampaign(campaign))

	campaign.Status = domain.CampaignSent
	now := time.Now().UTC()
	campaign.SentAt = &now
	require.NoError(t, store.SaveCampaign(campaign))

	got, err := store.GetCampaign("c1")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignSent, got.Status)
	require.NotNil(t, got.SentAt)

	campaigns, err := store.ListCampaigns()
	require.NoError(t, err)
	assert.Len(t, campaigns, 1)
}

func TestAdminAndSMTPSingletons(t *testing.T) {
	store := NewStore()

	_, err := store.GetAdminAccount()
	assert.ErrorIs(t, err, storage.ErrAdminNotFound)

	_, err = store.GetSMTPSettings()
	assert.ErrorIs(t, err, storage.ErrSettingsNotFound)

	require.NoError(t, store.SaveAdminAccount(&domain.AdminAccount{Email: "admin@seudominio.com.br", PasswordHash: "x"}))
	admin, err := store.GetAdminAccount()
	require.NoError(t, err)
	assert.Equal(t, "admin@seudominio.com.br", admin.Email)

	require.NoError(t, store.SaveSMTPSettings(&domain.SMTPSettings{Host: "smtp.example.com", Port: "587"}))
	settings, err := store.GetSMTPSettings()
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", settings.Host)
}

func TestSeedDemoData(t *testing.T) {
	store := NewStore()
	store.SeedDemoData()
	store.SeedDemoData() // 幂等

	count, err := store.CountLeads()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	leads, err := store.ListLeads()
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", leads[0].Name)

	automations, err := store.ListAutomations()
	require.NoError(t, err)
	require.Len(t, automations, 1)
	assert.Equal(t, "welcome-email", automations[0].ID)
	assert.True(t, automations[0].Active)
}
