package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Initialize(storage.CollectionLeads, []domain.Lead{}))
	require.NoError(t, store.Initialize(storage.CollectionCampaigns, []domain.Campaign{}))
	require.NoError(t, store.Initialize(storage.CollectionTemplates, []domain.EmailTemplate{}))
	require.NoError(t, store.Initialize(storage.CollectionAutomations, domain.DefaultAutomations()))
	return store
}

func TestInitializeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Initialize(storage.CollectionLeads, []domain.Lead{{ID: "seed", Email: "seed@example.com"}}))

	// 文件已存在时不得覆盖现有内容
	require.NoError(t, store.Initialize(storage.CollectionLeads, []domain.Lead{}))

	leads, err := store.ListLeads()
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "seed@example.com", leads[0].Email)
}

func TestLeadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveLead(&domain.Lead{ID: "1", Email: "a@example.com", Name: "A"}))
	require.NoError(t, store.SaveLead(&domain.Lead{ID: "2", Email: "b@example.com", Name: "B"}))

	err := store.SaveLead(&domain.Lead{ID: "3", Email: "a@example.com"})
	assert.ErrorIs(t, err, storage.ErrLeadExists)

	lead, err := store.GetLeadByEmail("b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "B", lead.Name)

	count, err := store.CountLeads()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, store.DeleteLeadByEmail("a@example.com"))
	_, err = store.GetLeadByEmail("a@example.com")
	assert.ErrorIs(t, err, storage.ErrLeadNotFound)
}

func TestMissingFileReportsUnavailable(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.ListLeads()
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
}

func TestCorruptedFileReportsUnavailable(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "leads.json"), []byte("{not json"), 0644))

	_, err = store.ListLeads()
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
	assert.ErrorIs(t, store.Health(), storage.ErrStorageUnavailable)
}

func TestAutomationInsertAndUpdate(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.InsertAutomation(&domain.Automation{
		ID:      "followup",
		Name:    "Acompanhamento",
		Trigger: domain.TriggerAfter7Days,
	}))

	automations, err := store.ListAutomations()
	require.NoError(t, err)
	require.Len(t, automations, 2)
	assert.Equal(t, "followup", automations[0].ID)
	assert.Equal(t, "welcome-email", automations[1].ID)

	updated := automations[1]
	updated.Active = false
	require.NoError(t, store.UpdateAutomation(&updated))

	got, err := store.GetAutomation("welcome-email")
	require.NoError(t, err)
	assert.False(t, got.Active)

	err = store.UpdateAutomation(&domain.Automation{ID: "missing"})
	assert.ErrorIs(t, err, storage.ErrAutomationNotFound)
}

func TestCampaignUpsert(t *testing.T) {
	store := newTestStore(t)

	campaign := &domain.Campaign{ID: "c1", Name: "Promo", Subject: "Oferta", Content: "Olá", Status: domain.CampaignDraft}
	require.NoError(t, store.SaveCampaign(campaign))

	campaign.Status = domain.CampaignSent
	require.NoError(t, store.SaveCampaign(campaign))

	got, err := store.GetCampaign("c1")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignSent, got.Status)

	campaigns, err := store.ListCampaigns()
	require.NoError(t, err)
	assert.Len(t, campaigns, 1)

	_, err = store.GetCampaign("missing")
	assert.ErrorIs(t, err, storage.ErrCampaignNotFound)
}

func TestAdminAccountPersistsHash(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, err = store.GetAdminAccount()
	assert.Error(t, err)

	require.NoError(t, store.SaveAdminAccount(&domain.AdminAccount{
		Email:        "admin@seudominio.com.br",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	}))

	// 重新打开存储，验证哈希确实写入磁盘
	reopened, err := NewStore(dir)
	require.NoError(t, err)

	account, err := reopened.GetAdminAccount()
	require.NoError(t, err)
	assert.Equal(t, "admin@seudominio.com.br", account.Email)
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuv", account.PasswordHash)
}

func TestSMTPSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveSMTPSettings(&domain.SMTPSettings{
		Host:     "smtp.example.com",
		Port:     "587",
		User:     "mailer",
		Password: "secret",
	}))

	settings, err := store.GetSMTPSettings()
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", settings.Host)
	assert.Equal(t, "secret", settings.Password)
}
